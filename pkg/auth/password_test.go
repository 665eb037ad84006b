package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("garden-secret-1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "garden-secret-1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword("garden-secret-1", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("wrong-password", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordRejectsShortInput(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestCheckPasswordEmptyHash(t *testing.T) {
	if CheckPassword("anything", "  ") {
		t.Fatal("empty stored hash must never match")
	}
}
