package otp

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"time"
)

// OTP purposes.
const (
	PurposeSignup = "signup"
	PurposeReset  = "reset"
	PurposeChange = "change"
)

// OTP policy constants.
const (
	// CodeLength is the number of digits in a generated code.
	CodeLength = 6
	// Expiry is how long an issued code stays valid.
	Expiry = 10 * time.Minute
	// RateLimitWindow is the minimum gap between issue requests per address.
	RateLimitWindow = 60 * time.Second
	// MaxAttempts is the number of verify attempts before lockout.
	MaxAttempts = 5
)

// ErrRateLimited indicates an issue request inside the rate limit window.
var ErrRateLimited = errors.New("otp: request rate limited")

// Record is the stored state for one address. The plaintext code is never
// stored; only the address-salted hash.
type Record struct {
	CodeHash      string
	Purpose       string
	Verified      bool
	Attempts      int
	ExpiresAt     time.Time
	LastRequestAt time.Time
}

// Store holds one live OTP record per destination address.
type Store interface {
	// Issue generates, stores, and returns a new code for the address.
	// Returns ErrRateLimited when a prior record is newer than the window.
	Issue(ctx context.Context, address, purpose string) (string, error)
	// Verify checks a submitted code, enforcing expiry and attempt lockout.
	// A match marks the record verified but does not clear it.
	Verify(ctx context.Context, address, code string) (bool, error)
	// IsVerified reports whether a live verified record exists for the
	// address, and matches the purpose when one is given.
	IsVerified(ctx context.Context, address, purpose string) (bool, error)
	// Clear deletes the record for the address. Idempotent.
	Clear(ctx context.Context, address string) error
}

// GenerateCode draws a numeric code of the given length from a uniform
// digit distribution.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = CodeLength
	}
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		digit, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		builder.WriteByte(byte('0' + digit.Int64()))
	}
	return builder.String(), nil
}

// HashCode hashes a code salted with its destination address.
func HashCode(code, address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(address)) + ":" + code))
	return hex.EncodeToString(sum[:])
}

// hashEqual compares two code hashes in constant time.
func hashEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
