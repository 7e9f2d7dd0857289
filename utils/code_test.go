package utils

import (
	"errors"
	"regexp"
	"testing"
)

var codePattern = regexp.MustCompile(`^[A-Z]{2}\d{7}$`)

func TestGenerateTrackingCodeFormat(t *testing.T) {
	code, err := GenerateTrackingCode("Ali", "Toyota", func(string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !codePattern.MatchString(code) {
		t.Fatalf("code %q does not match pattern", code)
	}
	if code[:2] != "AT" {
		t.Fatalf("expected AT prefix, got %q", code[:2])
	}
}

func TestGenerateTrackingCodeRetriesOnCollision(t *testing.T) {
	calls := 0
	code, err := GenerateTrackingCode("Ali", "Toyota", func(string) (bool, error) {
		calls++
		return calls <= 3, nil // first three candidates taken
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls)
	}
	if !codePattern.MatchString(code) {
		t.Fatalf("code %q does not match pattern", code)
	}
}

func TestGenerateTrackingCodeNonLetterFallback(t *testing.T) {
	code, err := GenerateTrackingCode("123", "", func(string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if code[:2] != "XX" {
		t.Fatalf("expected XX fallback prefix, got %q", code[:2])
	}
}

func TestGenerateTrackingCodeLowercaseInput(t *testing.T) {
	code, err := GenerateTrackingCode("ali", "toyota", func(string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if code[:2] != "AT" {
		t.Fatalf("expected uppercased AT prefix, got %q", code[:2])
	}
}

func TestGenerateTrackingCodePropagatesLookupError(t *testing.T) {
	wantErr := errors.New("db down")
	_, err := GenerateTrackingCode("Ali", "Toyota", func(string) (bool, error) {
		return false, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}
