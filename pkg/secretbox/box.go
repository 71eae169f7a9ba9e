// Package secretbox seals short secrets (such as cached access tokens) with
// NaCl secretbox under a key derived from a configured passphrase.
package secretbox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

// ErrDecrypt is returned when a sealed value cannot be opened.
var ErrDecrypt = errors.New("secretbox: decryption failed")

// ErrEmptySecret is returned when no passphrase is configured.
var ErrEmptySecret = errors.New("secretbox: empty secret")

// Box seals and opens values. It is safe for concurrent use.
type Box struct {
	key [keySize]byte
}

// New derives a box key from secret. The info string separates keys derived
// from the same secret for different purposes.
func New(secret, info string) (*Box, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	b := &Box{}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, b.key[:]); err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return b, nil
}

// Seal encrypts plaintext and returns it base64 encoded with the nonce
// prepended.
func (b *Box) Seal(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &b.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (b *Box) Open(sealed string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, ErrDecrypt
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
