package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidAddress marks malformed token mint addresses. Callers reject
// these before any provider fan-out happens.
var ErrInvalidAddress = errors.New("invalid token address")

// Solana addresses are base58 encoded, 32-44 characters.
var mintPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// ValidateTokenAddress checks mint address shape and returns the trimmed
// address on success.
func ValidateTokenAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if len(addr) < 32 {
		return "", fmt.Errorf("%w: too short (%d chars, minimum 32)", ErrInvalidAddress, len(addr))
	}
	if len(addr) > 44 {
		return "", fmt.Errorf("%w: too long (%d chars, maximum 44)", ErrInvalidAddress, len(addr))
	}
	if !mintPattern.MatchString(addr) {
		return "", fmt.Errorf("%w: not base58", ErrInvalidAddress)
	}
	return addr, nil
}
