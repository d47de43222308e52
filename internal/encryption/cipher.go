// Package encryption implements the PII boundary: deterministic symmetric encryption
// so that equality filters ("find by email") work on ciphertext.
package encryption

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tink-crypto/tink-go/v2/daead/subtle"
	"golang.org/x/crypto/hkdf"
)

const (
	keyLength = 32 // master key
	sivLength = 16
)

var (
	ErrInvalidKey     = errors.New("encryption key must decode to 32 bytes")
	ErrMalformed      = errors.New("ciphertext is malformed")
	ErrAuthentication = errors.New("ciphertext failed authentication")
	hkdfInfoSIV       = []byte("e-commerce-service/pii/aes-siv")
	associatedData    = []byte("pii")
)

// Cipher encrypts and decrypts PII fields with AES-SIV. Same plaintext and key always yield the
// same ciphertext, and tampered values are rejected on decrypt.
type Cipher struct {
	siv *subtle.AESSIV
}

// NewCipher derives the AES-SIV key from a 32-byte master key.
func NewCipher(masterKey []byte) (*Cipher, error) {
	if len(masterKey) != keyLength {
		return nil, ErrInvalidKey
	}

	sivKey := make([]byte, subtle.AESSIVKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, hkdfInfoSIV), sivKey); err != nil {
		return nil, fmt.Errorf("derive siv key: %w", err)
	}

	siv, err := subtle.NewAESSIV(sivKey)
	if err != nil {
		return nil, fmt.Errorf("subtle.NewAESSIV: %w", err)
	}
	return &Cipher{siv: siv}, nil
}

// NewCipherFromString accepts the key as base64 (padded or raw) or 64 hex characters.
func NewCipherFromString(key string) (*Cipher, error) {
	k, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	return NewCipher(k)
}

// ParseKey decodes a configured master key.
func ParseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == keyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == keyLength {
		return b, nil
	}
	if len(key) == 2*keyLength {
		if b, err := hex.DecodeString(key); err == nil {
			return b, nil
		}
	}
	return nil, ErrInvalidKey
}

// Encrypt returns base64(siv || ciphertext).
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if c == nil || c.siv == nil {
		return "", errors.New("cipher is not configured")
	}
	out, err := c.siv.EncryptDeterministically([]byte(plaintext), associatedData)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if c == nil || c.siv == nil {
		return "", errors.New("cipher is not configured")
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) < sivLength {
		return "", ErrMalformed
	}

	plain, err := c.siv.DecryptDeterministically(raw, associatedData)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return string(plain), nil
}

// Matches reports whether candidate encrypts to stored. Passwords are only ever checked this way.
func (c *Cipher) Matches(candidate, stored string) (bool, error) {
	enc, err := c.Encrypt(candidate)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(enc), []byte(stored)), nil
}
