package service

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a submitted password into the form that gets persisted.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches a value produced by Hash.
	Verify(password, stored string) bool
}

// NewPasswordHasher returns the hasher for mode: "plain" or "bcrypt".
func NewPasswordHasher(mode string) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "plain":
		return PlainHasher{}, nil
	case "bcrypt":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", mode)
}

// PlainHasher stores passwords verbatim.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlainHasher) Verify(password, stored string) bool {
	return password == stored
}

// BcryptHasher stores salted bcrypt hashes. Passwords are digested with
// SHA-256 first since bcrypt rejects input longer than 72 bytes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Verify(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), prehash(password)) == nil
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
