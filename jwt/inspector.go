package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is an exported constant or variable used by the API client.
var ErrMalformedToken = errors.New("malformed access token")

// AccessClaims defines a public type used by goClient APIs.
//
// AccessClaims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccessClaims struct {
	UID      string `json:"uid,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// Inspect decodes the claims of an access token without verifying its
// signature. Returns [ErrMalformedToken] when the token is not a JWT at all;
// opaque tokens are a supported configuration server-side, so callers must
// treat that error as "no introspection available", not as invalid credentials.
func Inspect(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}
	return claims, nil
}

// ExpiresAt returns the token's expiry, or the zero time when the token is
// opaque or carries no exp claim.
func ExpiresAt(tokenStr string) time.Time {
	claims, err := Inspect(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// ExpiresWithin reports whether the token expires within d. Opaque tokens and
// tokens without an exp claim report false: absence of expiry information is
// not expiry.
func ExpiresWithin(tokenStr string, d time.Duration) bool {
	exp := ExpiresAt(tokenStr)
	if exp.IsZero() {
		return false
	}
	return time.Until(exp) <= d
}
