package service

import (
	"strings"
	"testing"
)

// TestShortCode проверяет длину и алфавит short code.
func TestShortCode(t *testing.T) {
	gen := NewCodeGenerator()

	for i := 0; i < 100; i++ {
		code, err := gen.ShortCode()
		if err != nil {
			t.Fatalf("ShortCode вернул ошибку: %v", err)
		}
		if len(code) != shortCodeLength {
			t.Fatalf("длина short code = %d, ожидалась %d", len(code), shortCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(shortCodeAlphabet, r) {
				t.Fatalf("short code %q содержит символ вне алфавита: %q", code, r)
			}
		}
	}
}

// TestVisitCode проверяет длину, алфавит и uppercase visit code.
func TestVisitCode(t *testing.T) {
	gen := NewCodeGenerator()

	for i := 0; i < 100; i++ {
		code, err := gen.VisitCode()
		if err != nil {
			t.Fatalf("VisitCode вернул ошибку: %v", err)
		}
		if len(code) != visitCodeLength {
			t.Fatalf("длина visit code = %d, ожидалась %d", len(code), visitCodeLength)
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("visit code %q не в верхнем регистре", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(visitCodeAlphabet, r) {
				t.Fatalf("visit code %q содержит символ вне алфавита: %q", code, r)
			}
		}
	}
}

// TestCodesIndependent проверяет, что последовательные вызовы дают разные значения.
func TestCodesIndependent(t *testing.T) {
	gen := NewCodeGenerator()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := gen.ShortCode()
		if err != nil {
			t.Fatalf("ShortCode вернул ошибку: %v", err)
		}
		if seen[code] {
			t.Fatalf("повтор short code %q на %d вызове", code, i)
		}
		seen[code] = true
	}
}
