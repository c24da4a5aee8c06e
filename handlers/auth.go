// handlers/auth.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"p9e.in/gemstock/middleware"
	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
)

type loginReq struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	RoleID uint   `json:"roleId"`
	Role   string `json:"role"`
}

// AuthHandler serves login and the caller's profile.
type AuthHandler struct {
	auth  *middleware.AuthService
	users crud.Store[models.User]
	log   *zap.Logger
}

func NewAuthHandler(auth *middleware.AuthService, users crud.Store[models.User], log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, log: log.Named("auth")}
}

// Login accepts an email or a phone number with the password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if (req.Email == "" && req.Phone == "") || req.Password == "" {
		httpError(w, http.StatusBadRequest, "email or phone and password are required")
		return
	}
	u, err := findLogin(r.Context(), h.users, req.Email, req.Phone)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if u == nil || !u.IsActive {
		httpError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		httpError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	uc, err := h.auth.Load(r.Context(), u.ID)
	if err != nil {
		httpError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	role := ""
	if uc.Role != nil {
		role = uc.Role.Name
	}
	token, err := h.auth.GenerateToken(u.ID, role, u.Name, u.Email)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Info("login", zap.Uint("user_id", u.ID), zap.String("role", role))
	writeJSON(w, http.StatusOK, loginResp{Token: token, User: toPayload(*u, role)})
}

// Profile answers GET /profile for the authenticated caller.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uc, err := h.auth.LoadUserContext(r)
	if err != nil {
		httpError(w, http.StatusUnauthorized, err.Error())
		return
	}
	role := ""
	if uc.Role != nil {
		role = uc.Role.Name
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":        toPayload(uc.User, role),
		"role":        uc.Role,
		"permissions": uc.Permissions,
	})
}

func toPayload(u models.User, role string) userPayload {
	return userPayload{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, RoleID: u.RoleID, Role: role}
}

// findLogin looks a user up by email (case-insensitive) or phone. It
// returns nil when nobody matches.
func findLogin(ctx context.Context, users crud.Store[models.User], email, phone string) (*models.User, error) {
	all, err := users.List(ctx, crud.Query{})
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	for i := range all {
		u := &all[i]
		if email != "" && strings.EqualFold(u.Email, email) {
			return u, nil
		}
		if phone != "" && u.Phone == phone {
			return u, nil
		}
	}
	return nil, nil
}
