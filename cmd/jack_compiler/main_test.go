package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeJack(t *testing.T, dir, name, src string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", p, err)
	}
	return p
}

func TestHandlerCompilesSingleClass(t *testing.T) {
	dir := t.TempDir()
	writeJack(t, dir, "Main.jack", `class Main {
		function int run() {
			return 7;
		}
	}`)

	if status := Handler([]string{dir}, map[string]string{}); status != 0 {
		t.Fatalf("unexpected exit status: %d", status)
	}

	out, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	if err != nil {
		t.Fatalf("expected Main.vm to be emitted: %v", err)
	}
	want := "function Main.run 0\npush constant 7\nreturn\n"
	if string(out) != want {
		t.Fatalf("want %q, got %q", want, string(out))
	}
}

func TestHandlerRegistersFunctionsAcrossClassesBeforeCodegen(t *testing.T) {
	dir := t.TempDir()
	writeJack(t, dir, "Main.jack", `class Main {
		function int run() {
			return Helper.value();
		}
	}`)
	writeJack(t, dir, "Helper.jack", `class Helper {
		function int value() {
			return 42;
		}
	}`)

	if status := Handler([]string{dir}, map[string]string{}); status != 0 {
		t.Fatalf("unexpected exit status: %d", status)
	}

	out, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	if err != nil {
		t.Fatalf("expected Main.vm to be emitted: %v", err)
	}
	if !strings.Contains(string(out), "call Helper.value 0") {
		t.Fatalf("expected a call to Helper.value, got %q", string(out))
	}
}

func TestHandlerTypecheckCatchesUndefinedVariable(t *testing.T) {
	dir := t.TempDir()
	writeJack(t, dir, "Main.jack", `class Main {
		function int run() {
			let missing = 1;
			return 0;
		}
	}`)

	status := Handler([]string{dir}, map[string]string{"typecheck": "true"})
	if status != 1 {
		t.Fatalf("expected typecheck failure to exit 1, got %d", status)
	}
	if _, err := os.Stat(filepath.Join(dir, "Main.vm")); err == nil {
		t.Fatalf("expected no .vm output to be written when typechecking fails")
	}
}

func TestHandlerWithoutTypecheckIgnoresMismatch(t *testing.T) {
	dir := t.TempDir()
	writeJack(t, dir, "Main.jack", `class Main {
		function int run() {
			var int x;
			let x = "hi";
			return x;
		}
	}`)

	if status := Handler([]string{dir}, map[string]string{}); status != 0 {
		t.Fatalf("unexpected exit status: %d", status)
	}
}

func TestHandlerWarnSurfacesUnusedVariableButStillEmits(t *testing.T) {
	dir := t.TempDir()
	writeJack(t, dir, "Main.jack", `class Main {
		function int run() {
			var int unused;
			return 7;
		}
	}`)

	if status := Handler([]string{dir}, map[string]string{"warn": "true"}); status != 0 {
		t.Fatalf("unexpected exit status: %d", status)
	}
	if _, err := os.Stat(filepath.Join(dir, "Main.vm")); err != nil {
		t.Fatalf("expected Main.vm to still be emitted despite warnings: %v", err)
	}
}

func TestHandlerMissingArgumentReturnsZero(t *testing.T) {
	if status := Handler(nil, map[string]string{}); status != 0 {
		t.Fatalf("expected missing-argument exit code 0, got %d", status)
	}
}
