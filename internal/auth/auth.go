// Package auth verifies HS256 bearer tokens and carries the caller identity
// through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// User is the authenticated caller. ID is the token subject and owns trips.
type User struct {
	ID   string
	Name string
}

// Claims are the registered claims plus the display name used in export
// metadata.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	leeway time.Duration
}

// NewVerifier returns a Verifier for secret, allowing 30s of clock skew.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), leeway: 30 * time.Second}
}

// Verify parses tok and returns the caller it names. Every failure wraps
// domain.ErrUnauthenticated.
func (v *Verifier) Verify(tok string) (User, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, jwt.WithLeeway(v.leeway))
	if err != nil || !parsed.Valid {
		return User{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	val := jwt.NewValidator(jwt.WithLeeway(v.leeway), jwt.WithExpirationRequired())
	if err := val.Validate(&claims); err != nil {
		return User{}, fmt.Errorf("%w: token expired or not valid yet", domain.ErrUnauthenticated)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return User{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}
	return User{ID: claims.Subject, Name: claims.Name}, nil
}

// Issue signs a token for u valid for ttl. Used by tripctl and tests.
func (v *Verifier) Issue(u User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Verifier.Issue: %w", err)
	}
	return s, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the caller stored in ctx, if any.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok && u.ID != ""
}

// RequireUser is UserFrom returning domain.ErrUnauthenticated when absent.
func RequireUser(ctx context.Context) (User, error) {
	u, ok := UserFrom(ctx)
	if !ok {
		return User{}, domain.ErrUnauthenticated
	}
	return u, nil
}
