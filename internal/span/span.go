// Package span provides a half-open byte range used to anchor every AST
// node and diagnostic to the source text it was parsed from.
package span

// Span is a half-open byte range [Lo, Hi) into a source buffer.
type Span struct {
	Lo uint32
	Hi uint32
}

// New builds a Span from the given [lo, hi) bounds.
func New(lo, hi uint32) Span { return Span{Lo: lo, Hi: hi} }

// FromLen builds a Span starting at base and spanning length bytes.
func FromLen(base uint32, length int) Span { return Span{Lo: base, Hi: base + uint32(length)} }

// WithLo returns a copy of the span with its lower bound replaced.
func (s Span) WithLo(lo uint32) Span { return Span{Lo: lo, Hi: s.Hi} }

// WithHi returns a copy of the span with its upper bound replaced.
func (s Span) WithHi(hi uint32) Span { return Span{Lo: s.Lo, Hi: hi} }

// End returns the exclusive upper bound of the span.
func (s Span) End() uint32 { return s.Hi }

// Len reports the byte length covered by the span.
func (s Span) Len() int { return int(s.Hi - s.Lo) }

// Slice extracts the span's bytes from src. Panics if the span is out of
// bounds for src, which would indicate a span/source lifetime violation.
func (s Span) Slice(src string) string { return src[s.Lo:s.Hi] }

// To returns the union span covering both s and other, assuming s precedes
// other in source order.
func (s Span) To(other Span) Span { return Span{Lo: s.Lo, Hi: other.Hi} }
