package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	TenantID  string
	UPN       string
	ExpiresAt time.Time
}

// ParseClaims reads claims from an access token without verifying its
// signature. Only use it on tokens received directly from the identity provider.
func ParseClaims(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	tid, ok := claims["tid"].(string)
	if !ok || tid == "" {
		return nil, errors.New("could not find 'tid' claim in token")
	}

	parsed := &Claims{TenantID: tid}
	if upn, ok := claims["upn"].(string); ok {
		parsed.UPN = upn
	} else if name, ok := claims["preferred_username"].(string); ok {
		parsed.UPN = name
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		parsed.ExpiresAt = exp.Time
	}
	return parsed, nil
}
