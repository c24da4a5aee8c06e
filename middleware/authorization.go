package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// AuthConfig holds authorization configuration
type AuthConfig struct {
	Permission     string
	AnyPermissions []string
}

// AuthOption is a functional option for Authorize middleware
type AuthOption func(*AuthConfig)

// WithPermission requires a specific permission
func WithPermission(permission string) AuthOption {
	return func(c *AuthConfig) {
		c.Permission = permission
	}
}

// WithAnyPermission requires any of the specified permissions
func WithAnyPermission(permissions ...string) AuthOption {
	return func(c *AuthConfig) {
		c.AnyPermissions = permissions
	}
}

// Authorize loads the caller and checks the configured grants. Without
// options it only requires an active account.
func (s *AuthService) Authorize(opts ...AuthOption) func(http.Handler) http.Handler {
	cfg := &AuthConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uc, err := s.LoadUserContext(r)
			if err != nil {
				var ae *AuthError
				if !errors.As(err, &ae) {
					s.log.Error("failed to load user context", zap.Error(err))
				}
				handleAuthError(w, err)
				return
			}

			if cfg.Permission != "" && !s.HasPermission(uc, cfg.Permission) {
				s.log.Info("permission denied",
					zap.Uint("user_id", uc.User.ID),
					zap.String("permission", cfg.Permission),
					zap.String("path", r.URL.Path),
					zap.String("request_id", GetRequestID(r)))
				handleAuthError(w, ErrForbidden)
				return
			}
			if len(cfg.AnyPermissions) > 0 && !s.HasAnyPermission(uc, cfg.AnyPermissions) {
				handleAuthError(w, ErrForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, uc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission is a convenience wrapper for a single permission check.
func (s *AuthService) RequirePermission(permission string) func(http.Handler) http.Handler {
	return s.Authorize(WithPermission(permission))
}

// RequireAnyPermission passes when the caller holds at least one permission.
func (s *AuthService) RequireAnyPermission(permissions []string) func(http.Handler) http.Handler {
	return s.Authorize(WithAnyPermission(permissions...))
}

func handleAuthError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"
	var ae *AuthError
	if errors.As(err, &ae) {
		code, msg = ae.Code, ae.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
