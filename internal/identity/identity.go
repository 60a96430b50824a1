// Package identity adapts bearer tokens issued by the external identity
// provider into a domain.Actor carried on the request context.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

type ctxKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// FromContext returns the Actor stored by Middleware, or the anonymous Actor
// when the request carried no token.
func FromContext(ctx context.Context) domain.Actor {
	if actor, ok := ctx.Value(ctxKey{}).(domain.Actor); ok {
		return actor
	}
	return domain.Anonymous()
}

// Middleware resolves an optional "Authorization: Bearer <jwt>" header.
// The token must be HS256-signed with secret and carry the account id in its
// sub claim. A request without the header proceeds anonymously; a request
// with an unusable token is rejected with 401.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			accountID, err := verify(secret, bearerFromHeader(header))
			if err != nil {
				writeUnauthorized(w, "invalid bearer token")
				return
			}
			ctx := WithActor(r.Context(), domain.AccountActor(accountID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var errNoSubject = errors.New("token has no subject")

func verify(secret []byte, token string) (string, error) {
	if token == "" {
		return "", jwt.ErrTokenMalformed
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return "", errNoSubject
	}
	return sub, nil
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}

// IssueToken signs an HS256 token for accountID. The identity provider owns
// token issuance in production; this exists for local development and tests.
func IssueToken(secret []byte, accountID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
