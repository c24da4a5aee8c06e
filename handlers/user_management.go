package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"p9e.in/gemstock/config"
	"p9e.in/gemstock/middleware"
	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
)

const minPasswordLen = 6

// UserHandler is the user administration screen.
type UserHandler struct {
	users crud.Store[models.User]
	roles crud.Store[models.Role]
	log   *zap.Logger
}

func NewUserHandler(users crud.Store[models.User], roles crud.Store[models.Role], log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, roles: roles, log: log.Named("users")}
}

type userReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	RoleID   *uint   `json:"roleId"`
	IsActive *bool   `json:"isActive"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	users, err := h.users.List(r.Context(), q)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Total: len(users), Data: users})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	u := models.User{IsActive: true}
	if req.Password == nil {
		writeError(w, h.log, invalidf("password is required"))
		return
	}
	if err := h.apply(r.Context(), 0, &u, req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.users.Create(r.Context(), &u); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Info("user created", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
	writeJSON(w, http.StatusCreated, u)
}

// Update changes only the fields present in the body.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req userReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.apply(r.Context(), id, u, req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.users.Update(r.Context(), id, u); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Delete deactivates the account. Callers cannot delete themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if id == middleware.GetUserID(r) {
		writeError(w, h.log, invalidf("you cannot delete your own account"))
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	u.IsActive = false
	if err := h.users.Update(r.Context(), id, u); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Info("user deactivated", zap.Uint("user_id", id), zap.Uint("by", middleware.GetUserID(r)))
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) apply(ctx context.Context, id uint, u *models.User, req userReq) error {
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if u.Name == "" || u.Email == "" {
		return invalidf("name and email are required")
	}
	if req.RoleID != nil {
		if _, err := h.roles.Get(ctx, *req.RoleID); err != nil {
			if errors.Is(err, crud.ErrNotFound) {
				return invalidf("role %d does not exist", *req.RoleID)
			}
			return err
		}
		u.RoleID = *req.RoleID
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			return invalidf("password must be at least %d characters", minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.PasswordHash = string(hash)
	}

	all, err := h.users.List(ctx, crud.Query{})
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID != id && strings.EqualFold(all[i].Email, u.Email) {
			return conflictf("email %s is already registered", u.Email)
		}
	}
	return nil
}

// RoleNotInUse refuses to delete a role that is assigned to a user.
func RoleNotInUse(users crud.Store[models.User]) func(ctx context.Context, id uint) error {
	return func(ctx context.Context, id uint) error {
		all, err := users.List(ctx, crud.Query{})
		if err != nil {
			return err
		}
		for _, u := range all {
			if u.RoleID == id {
				return conflictf("role is assigned to %s", u.Email)
			}
		}
		return nil
	}
}

type permissionsResp struct {
	Total  int                            `json:"total"`
	Data   []models.Permission            `json:"data"`
	Groups map[string][]models.Permission `json:"groups"`
}

// Permissions answers GET /admin/permissions with the catalog, also grouped
// by resource.
func Permissions(w http.ResponseWriter, r *http.Request) {
	catalog := config.PermissionCatalog()
	groups := make(map[string][]models.Permission)
	for _, p := range catalog {
		groups[p.Resource] = append(groups[p.Resource], p)
	}
	writeJSON(w, http.StatusOK, permissionsResp{Total: len(catalog), Data: catalog, Groups: groups})
}
