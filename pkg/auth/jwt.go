// Package auth validates the bearer tokens that identify catalog users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cosmetia/cosmetia/pkg/observability/logger"
)

// Validator validates a bearer token and extracts its claims.
type Validator interface {
	Validate(ctx context.Context, token string) (*Claims, error)
}

// Claims are the token claims the service cares about. Subject carries
// the user id used for personalized search and rating mutations.
type Claims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// HMACValidator validates HS256-signed tokens against a shared secret.
type HMACValidator struct {
	secret []byte
	issuer string
	logger logger.Logger
}

// NewHMACValidator creates a validator. issuer may be empty to skip
// issuer validation.
func NewHMACValidator(secret, issuer string, log logger.Logger) (*HMACValidator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &HMACValidator{secret: []byte(secret), issuer: issuer, logger: log}, nil
}

// Validate checks the signature, expiration and issuer of tokenString
// and extracts its claims. The subject claim is required because every
// authenticated operation is keyed by user id.
func (v *HMACValidator) Validate(_ context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("failed to parse claims")
	}

	claims := &Claims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = strings.TrimSpace(sub)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if iss, ok := mapClaims["iss"].(string); ok {
		claims.Issuer = iss
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", v.issuer, claims.Issuer)
	}

	v.logger.Debug("token validated", "subject", claims.Subject)
	return claims, nil
}

// claimsContextKey is the context key for storing claims.
type claimsContextKey struct{}

// WithClaims stores claims in the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// GetClaims retrieves claims from the context. Returns nil if no claims
// are found.
func GetClaims(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(claimsContextKey{}).(*Claims); ok {
		return claims
	}
	return nil
}

// CurrentUserID returns the authenticated user id carried by ctx, empty
// for anonymous requests.
func CurrentUserID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
