package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides fixed-window rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error)
}

// LoginKey builds a limiter key for login attempts scoped to the credential
// identifier and client address. The identifier is hashed so raw usernames
// never appear in limiter backends.
func LoginKey(identifier, clientIP string) string {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	clientIP = strings.TrimSpace(clientIP)
	if identifier == "" && clientIP == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(identifier + "|" + clientIP))
	return "login:" + hex.EncodeToString(sum[:16])
}

// OTPKey builds a limiter key for OTP issuance per destination address.
func OTPKey(address string) string {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(address))
	return "otp:" + hex.EncodeToString(sum[:16])
}
