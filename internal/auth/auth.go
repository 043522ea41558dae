// Package auth verifies bearer tokens and carries the authenticated user id
// through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier. The secret must not be empty.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth.NewVerifier: secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify validates raw and returns its subject, the user id.
func (v *Verifier) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("auth.Verifier.Verify: %w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("auth.Verifier.Verify: %w", ErrInvalidToken)
	}
	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return "", fmt.Errorf("auth.Verifier.Verify: %w: missing sub claim", ErrInvalidToken)
	}
	return sub, nil
}

// Issue signs a token for subject valid for ttl. It is used by tests and
// local tooling; production tokens come from the identity provider.
func (v *Verifier) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Verifier.Issue: %w", err)
	}
	return signed, nil
}

type userKey struct{}

// WithUser returns a copy of ctx carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the user id stored by WithUser.
func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}

// RequireUser is UserFromContext for callers that need a user.
// Returns domain.ErrUnauthenticated when none is present.
func RequireUser(ctx context.Context) (string, error) {
	id, ok := UserFromContext(ctx)
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return id, nil
}
