// Package apperr defines the structural error kinds raised at the facade and
// client boundaries, and the validators that raise them.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingValue marks a required argument or credential that was not supplied at all.
	ErrMissingValue = errors.New("missing required value")
	// ErrInvalidValue marks an argument or credential that was supplied but is empty, blank or malformed.
	ErrInvalidValue = errors.New("invalid value")
)

// RequireCredential returns creds[key] or an error. A key absent from the map is
// a missing value; a present key holding an empty or blank string is invalid.
func RequireCredential(creds map[string]string, key string) (string, error) {
	val, ok := creds[key]
	if !ok {
		return "", fmt.Errorf("credential '%s': %w", key, ErrMissingValue)
	}
	if strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("credential '%s' is empty: %w", key, ErrInvalidValue)
	}
	return val, nil
}

// RequireName rejects empty and all-whitespace lookup names.
func RequireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name must not be blank: %w", ErrInvalidValue)
	}
	return nil
}
