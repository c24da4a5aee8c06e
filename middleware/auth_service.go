package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
)

// AuthService issues tokens and resolves the caller's role and grants.
type AuthService struct {
	secret []byte
	users  crud.Store[models.User]
	roles  crud.Store[models.Role]
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService signing with secret.
func NewAuthService(secret string, users crud.Store[models.User], roles crud.Store[models.Role], log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		secret: []byte(secret),
		users:  users,
		roles:  roles,
		log:    log,
		now:    time.Now,
	}
}

// UserContext contains all user authorization information.
type UserContext struct {
	User        models.User
	Role        *models.Role
	Claims      *Claims
	Permissions []string
}

// Load resolves a user id to its active account and role.
func (s *AuthService) Load(ctx context.Context, userID uint) (*UserContext, error) {
	user, err := s.users.Get(ctx, userID)
	if errors.Is(err, crud.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	uc := &UserContext{User: *user, Permissions: []string{}}
	if user.RoleID != 0 {
		role, err := s.roles.Get(ctx, user.RoleID)
		switch {
		case err == nil:
			uc.Role = role
			if role.IsActive {
				uc.Permissions = append(uc.Permissions, role.Permissions...)
			}
		case !errors.Is(err, crud.ErrNotFound):
			return nil, err
		}
	}
	return uc, nil
}

// LoadUserContext loads the complete user context from request.
func (s *AuthService) LoadUserContext(r *http.Request) (*UserContext, error) {
	if uc, ok := r.Context().Value(userContextKey).(*UserContext); ok {
		return uc, nil
	}
	claims := GetClaims(r)
	if claims == nil {
		return nil, ErrUnauthorized
	}
	uc, err := s.Load(r.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}
	uc.Claims = claims
	return uc, nil
}

func (s *AuthService) HasPermission(uc *UserContext, permission string) bool {
	return uc.Role.HasPermission(permission)
}

func (s *AuthService) HasAnyPermission(uc *UserContext, permissions []string) bool {
	for _, p := range permissions {
		if s.HasPermission(uc, p) {
			return true
		}
	}
	return false
}

// CurrentUser returns the context stored by Authorize, or nil.
func CurrentUser(r *http.Request) *UserContext {
	if uc, ok := r.Context().Value(userContextKey).(*UserContext); ok {
		return uc
	}
	return nil
}

// Common errors
var (
	ErrUnauthorized = &AuthError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &AuthError{Code: http.StatusForbidden, Message: "insufficient permissions"}
	ErrUserNotFound = &AuthError{Code: http.StatusUnauthorized, Message: "user not found"}
	ErrUserInactive = &AuthError{Code: http.StatusUnauthorized, Message: "user is deactivated"}
	ErrInvalidToken = &AuthError{Code: http.StatusUnauthorized, Message: "invalid or expired token"}
)

// AuthError represents an authorization error
type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
