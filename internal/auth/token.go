package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo holds the registered claims of a token, read without verifying its signature.
type TokenInfo struct {
	Subject   string
	Issuer    string
	ExpiresAt *time.Time
}

// Inspect decodes the claims of a JWT without verifying it.
// The login endpoint is trusted; this is only used to report what was stored.
func Inspect(token string) (*TokenInfo, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	info := &TokenInfo{Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}

	return info, nil
}
