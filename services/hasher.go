package services

import (
	"errors"
	"fmt"

	"food-rescue-api/apperr"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns apperr.ErrInvalidCredential when password does not
	// match hash.
	Verify(hash, password string) error
}

// BcryptHasher uses bcrypt.DefaultCost when Cost is zero.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// max=72 counts runes; bcrypt's limit is in bytes.
		return "", fmt.Errorf("password longer than 72 bytes: %w", apperr.ErrInvalidFormat)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (BcryptHasher) Verify(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperr.ErrInvalidCredential
	}
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}
