// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrInvalidCoordinatorKey = errors.New("invalid coordinator key")
	ErrMissingCoordinatorKey = errors.New("coordinator key required")
)

// GenerateCoordinatorKey creates an HMAC-based key proving the coordinator
// identity for one election. This is deterministic and verifiable
func GenerateCoordinatorKey(electionID, coordinatorID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(electionID))
	h.Write([]byte{0})
	h.Write([]byte(coordinatorID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateCoordinatorKey checks if the provided key is valid for the election
func ValidateCoordinatorKey(electionID, coordinatorID, key, salt string) error {
	if key == "" {
		return ErrMissingCoordinatorKey
	}
	expected := GenerateCoordinatorKey(electionID, coordinatorID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidCoordinatorKey
	}
	return nil
}
