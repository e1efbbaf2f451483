// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidFormToken = errors.New("invalid form token")
	ErrInvalidToken     = errors.New("invalid token")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewRegistrationToken returns a fresh invite token value.
// Values are random UUIDs in their 36 character string form.
func NewRegistrationToken() string {
	return uuid.NewString()
}

// GenerateFormToken creates an HMAC-based form token bound to a session
// This is deterministic and verifiable without server-side storage
func GenerateFormToken(sessionID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte("form:"))
	h.Write([]byte(sessionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateFormToken checks if the submitted form token belongs to the session
func ValidateFormToken(sessionID, formToken, secret string) error {
	if sessionID == "" || formToken == "" {
		return ErrInvalidFormToken
	}
	expected := GenerateFormToken(sessionID, secret)
	if !hmac.Equal([]byte(formToken), []byte(expected)) {
		return ErrInvalidFormToken
	}
	return nil
}
