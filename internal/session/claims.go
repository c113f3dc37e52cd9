package session

import (
	"codeclash/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeClaims reads the claims of a bearer token without checking its signature
func DecodeClaims(token string) (*model.TokenClaims, error) {
	claims := &model.TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expired reports whether token carries an exp claim at or before now.
// Opaque tokens never expire on the client.
func Expired(token string, now time.Time) bool {
	claims, err := DecodeClaims(token)
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
