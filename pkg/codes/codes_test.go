package codes

import (
	"testing"
)

func TestGenerateSessionToken(t *testing.T) {
	a, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}
	b, _ := GenerateSessionToken()
	if a == b {
		t.Error("two session tokens should differ")
	}
	if len(a) != 43 {
		t.Errorf("len = %d, want 43", len(a))
	}
}

func TestGenerateSecureToken(t *testing.T) {
	tok, err := GenerateSecureToken(16)
	if err != nil {
		t.Fatalf("GenerateSecureToken() error = %v", err)
	}
	if len(tok) != 32 {
		t.Errorf("len = %d, want 32", len(tok))
	}
}

func TestInvalidLength(t *testing.T) {
	if _, err := GenerateSecureToken(0); err != ErrInvalidLength {
		t.Errorf("GenerateSecureToken(0) error = %v, want ErrInvalidLength", err)
	}
	if _, err := GenerateURLSafeToken(-1); err != ErrInvalidLength {
		t.Errorf("GenerateURLSafeToken(-1) error = %v, want ErrInvalidLength", err)
	}
}
