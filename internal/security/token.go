package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClass distinguishes what an issued token may be used for.
type TokenClass string

const (
	// ClassSession authorizes admin panel operations.
	ClassSession TokenClass = "session"
	// ClassAccess authorizes user-facing business operations.
	ClassAccess TokenClass = "access"
	// ClassRefresh may only be exchanged for a new access token.
	ClassRefresh TokenClass = "refresh"
)

// Default lifetimes per token class.
const (
	AccessTokenTTL = time.Hour
	// TemporaryTokenTTL restricts the token handed out to unverified signups.
	TemporaryTokenTTL = 15 * time.Minute
	RefreshTokenTTL   = 30 * 24 * time.Hour
)

// Token verification failures.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongClass     = errors.New("wrong token class")
)

// Claims carries the account binding and class of an issued token.
type Claims struct {
	Class TokenClass `json:"cls"`
	jwt.RegisteredClaims
}

// AccountID returns the numeric account id bound to the token.
func (c *Claims) AccountID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrTokenMalformed
	}
	return id, nil
}

// IssueToken signs a token for the account with the given class and lifetime.
func IssueToken(secret string, accountID uint64, class TokenClass, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty jwt secret")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("invalid token ttl: %s", ttl)
	}
	now := time.Now().UTC()
	claims := Claims{
		Class: class,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature and expiry and returns the claims.
// Failures map to ErrTokenExpired or ErrTokenMalformed.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// ParseClassToken verifies the token and requires the given class.
func ParseClassToken(secret, tokenString string, class TokenClass) (*Claims, error) {
	claims, err := ParseToken(secret, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Class != class {
		return nil, ErrWrongClass
	}
	return claims, nil
}
