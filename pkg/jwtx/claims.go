package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims wrap the opaque session token handed to a browser. The JWT only
// proves the cookie came from us; whether the session is still alive is
// decided by the server-side session row keyed on SID.
type Claims struct {
	jwt.RegisteredClaims

	// Session token, looked up by fingerprint on every request.
	SID string `json:"sid"`
}

// NewSessionClaims builds claims for sid valid from now until now+ttl.
func NewSessionClaims(sid, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SID: sid,
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}
