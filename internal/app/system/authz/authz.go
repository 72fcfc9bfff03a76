// internal/app/system/authz/authz.go
package authz

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/network"
)

// BcryptCost is the work factor used by HashKey.
const BcryptCost = 12

// Gate decides whether the caller of a request is an administrator.
// The catalog core only ever asks this yes/no question.
type Gate interface {
	IsCallerAdmin(r *http.Request) bool
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(r *http.Request) bool

// IsCallerAdmin calls f(r).
func (f GateFunc) IsCallerAdmin(r *http.Request) bool { return f(r) }

// APIKeyGate admits callers presenting the admin key as a bearer token:
// "Authorization: Bearer <admin-key>".
//
// When a bcrypt hash is configured the presented key is checked against it;
// otherwise it is compared with the plain key in constant time. With neither
// configured, every caller is refused.
type APIKeyGate struct {
	key  string
	hash []byte
}

// NewAPIKeyGate creates a gate from the configured plain key and/or bcrypt hash.
func NewAPIKeyGate(key, keyHash string) *APIKeyGate {
	g := &APIKeyGate{key: key}
	if keyHash != "" {
		g.hash = []byte(keyHash)
	}
	return g
}

// Configured reports whether any admin credential is set.
func (g *APIKeyGate) Configured() bool {
	return g.key != "" || len(g.hash) > 0
}

// IsCallerAdmin reports whether r carries a valid admin bearer key.
func (g *APIKeyGate) IsCallerAdmin(r *http.Request) bool {
	provided, ok := BearerToken(r)
	if !ok {
		return false
	}
	if len(g.hash) > 0 {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(provided)) == nil
	}
	if g.key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(g.key)) == 1
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

// RequireAdmin returns middleware that rejects non-admin callers with 401.
//
// Usage in routes.go:
//
//	r.Route("/api/admin", func(r chi.Router) {
//	    r.Use(authz.RequireAdmin(gate, logger))
//	    r.Mount("/tools", admintools.Routes(h))
//	})
func RequireAdmin(g Gate, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.IsCallerAdmin(r) {
				logger.Warn("admin request rejected",
					zap.String("path", r.URL.Path),
					zap.String("ip", network.GetClientIP(r)),
				)
				jsonutil.Unauthorized(w, "admin credentials required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HashKey hashes an admin key with bcrypt for the admin_key_hash setting.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
