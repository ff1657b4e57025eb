package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret123" {
		t.Fatalf("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "secret123") {
		t.Fatalf("expected correct password to verify")
	}
	if VerifyPassword(hash, "secret124") {
		t.Fatalf("expected wrong password to fail")
	}
	if VerifyPassword("not-a-hash", "secret123") {
		t.Fatalf("expected garbage hash to fail")
	}
}

func TestRandomHex(t *testing.T) {
	t.Parallel()

	a, err := RandomHex(32)
	if err != nil {
		t.Fatalf("RandomHex error: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("length mismatch: got %d want 64", len(a))
	}
	b, err := RandomHex(32)
	if err != nil {
		t.Fatalf("RandomHex error: %v", err)
	}
	if a == b {
		t.Fatalf("two random values must differ")
	}
}
