package usertoken

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m, err := NewManager(Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "user-1" {
		t.Fatalf("expected subject user-1, got %q", sub)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewManager(Config{Secret: testSecret})
	verifier, _ := NewManager(Config{Secret: strings.Repeat("x", 32)})
	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("token signed with a different secret must not verify")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, _ := NewManager(Config{
		Secret: testSecret,
		TTL:    time.Nanosecond,
		Leeway: time.Nanosecond,
	})
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := m.Verify(token); err == nil {
		t.Fatal("expired token must not verify")
	}
}

func TestNewManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewManager(Config{Secret: "too-short"}); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	m, _ := NewManager(Config{Secret: testSecret})
	if _, err := m.Issue("  "); err == nil {
		t.Fatal("expected error for blank user id")
	}
}
