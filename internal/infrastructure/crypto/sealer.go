// Package crypto seals bearer tokens before they reach the database.
package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrOpen = errors.New("sealed token could not be opened")

// Sealer encrypts tokens with secretbox and derives stable fingerprints for
// equality lookups. Both keys are derived from one master secret.
type Sealer struct {
	boxKey [32]byte
	macKey []byte
}

// NewSealer derives the sealing and fingerprint keys from secret.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("sealer: empty secret")
	}
	s := &Sealer{macKey: make([]byte, 32)}
	if err := derive([]byte(secret), "token-seal", s.boxKey[:]); err != nil {
		return nil, err
	}
	if err := derive([]byte(secret), "token-fingerprint", s.macKey); err != nil {
		return nil, err
	}
	return s, nil
}

func derive(secret []byte, info string, out []byte) error {
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return fmt.Errorf("sealer: derive %s: %w", info, err)
	}
	return nil
}

// Seal returns nonce || secretbox(plaintext).
func (s *Sealer) Seal(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("sealer: nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.boxKey), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.boxKey)
	if !ok {
		return "", ErrOpen
	}
	return string(out), nil
}

// Fingerprint is a keyed, deterministic digest of token.
func (s *Sealer) Fingerprint(token string) string {
	mac := hmac.New(sha256.New, s.macKey)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
