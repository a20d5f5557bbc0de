// Package adminauth guards administrative endpoints with a bearer token
// checked against a bcrypt hash.
package adminauth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingToken  = errors.New("missing admin token")
	ErrNotConfigured = errors.New("admin token is not configured")
)

type Guard struct {
	hash []byte
}

// NewGuard returns a guard for the given bcrypt hash. An empty hash yields a
// guard that rejects every request.
func NewGuard(hash string) (*Guard, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return &Guard{}, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &Guard{hash: []byte(hash)}, nil
}

// HashToken produces the value to put in ADMIN_TOKEN_HASH.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Check verifies the request's bearer token.
func (g *Guard) Check(r *http.Request) error {
	if g == nil || len(g.hash) == 0 {
		return ErrNotConfigured
	}
	token := bearerToken(r)
	if token == "" {
		return ErrMissingToken
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(token))
}

// Require wraps next so only requests with a valid admin token reach it.
func (g *Guard) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())
		if err := g.Check(r); err != nil {
			switch {
			case errors.Is(err, ErrNotConfigured):
				logger.Warn().Msg("Admin access denied: no token configured")
				http.Error(w, "Forbidden", http.StatusForbidden)
			case errors.Is(err, ErrMissingToken):
				logger.Warn().Msg("Admin access denied: unauthenticated")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
			default:
				logger.Warn().Msg("Admin access denied: invalid token")
				http.Error(w, "Forbidden", http.StatusForbidden)
			}
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
