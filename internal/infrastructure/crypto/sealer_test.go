package crypto

import (
	"errors"
	"testing"
)

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer("master-secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	sealed, err := s.Seal("bearer-token")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if string(sealed) == "bearer-token" {
		t.Fatalf("token stored in clear")
	}

	got, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got != "bearer-token" {
		t.Fatalf("Open = %q", got)
	}
}

func TestSealer_WrongKey(t *testing.T) {
	a, _ := NewSealer("key-a")
	b, _ := NewSealer("key-b")

	sealed, _ := a.Seal("bearer-token")
	if _, err := b.Open(sealed); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if _, err := a.Open(sealed[:10]); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen for truncated input, got %v", err)
	}
}

func TestSealer_Fingerprint(t *testing.T) {
	a, _ := NewSealer("key-a")
	b, _ := NewSealer("key-b")

	if a.Fingerprint("t1") != a.Fingerprint("t1") {
		t.Fatalf("fingerprint must be deterministic")
	}
	if a.Fingerprint("t1") == a.Fingerprint("t2") {
		t.Fatalf("different tokens share a fingerprint")
	}
	if a.Fingerprint("t1") == b.Fingerprint("t1") {
		t.Fatalf("fingerprint must depend on the key")
	}

	s1, _ := a.Seal("t1")
	s2, _ := a.Seal("t1")
	if string(s1) == string(s2) {
		t.Fatalf("seal must use a fresh nonce")
	}
}

func TestNewSealer_EmptySecret(t *testing.T) {
	if _, err := NewSealer(""); err == nil {
		t.Fatalf("expected error")
	}
}
