package token

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	signed, err := m.Issue(42, "admin", time.Now())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	userID, role, err := m.Verify(signed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != 42 || role != "admin" {
		t.Fatalf("unexpected claims: %d %s", userID, role)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	signed, err := m.Issue(42, "admin", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, _, err := m.Verify(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	signed, err := m.Issue(42, "admin", time.Now())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, _, err := other.Verify(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	if _, _, err := m.Verify("not.a.token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
