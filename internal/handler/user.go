package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/esidoc/hr-document-service/internal/audit"
	"github.com/esidoc/hr-document-service/internal/config"
	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/notify"
	"github.com/esidoc/hr-document-service/internal/repository"
	"github.com/esidoc/hr-document-service/internal/utils"
)

// UserHandler covers staff account administration.  Account creation and
// modification are admin-only; reading is scoped so non-admins only see
// their own record.
type UserHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Notify   *notify.Dispatcher
	Recorder *audit.Recorder
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, n *notify.Dispatcher, rec *audit.Recorder) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Notify: n, Recorder: rec}
}

type createUserReq struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type updateUserReq struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"is_active"`
}

type userResp struct {
	ID          uint64     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        model.Role `json:"role"`
	IsActive    bool       `json:"is_active"`
	MustChange  bool       `json:"must_change_password"`
	DateJoined  time.Time  `json:"date_joined"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		MustChange: u.TempPassword != nil,
		DateJoined: u.CreatedAt,
	}
}

// Create provisions an account with a generated temporary password.  The
// password travels by email only; the API response never includes it.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, first_name and last_name are required"})
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN, RH or SG"})
	}

	temp, err := utils.TempPassword(10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate password failed"})
	}
	hash, err := utils.HashPassword(temp, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.FirstName, req.LastName, role, hash, temp)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	h.Notify.SendCredentials(u, temp)

	h.Recorder.Record(newEvent(c, model.ActionCreate, model.TargetUser, id,
		"Création du compte "+u.Email))
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// List returns every account for admins; other roles get a single-element
// list holding their own account.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, _ := getRole(c)
	if role != model.RoleAdmin {
		uid, err := getUserID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		u, err := h.Users.GetByID(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, []userResp{toUserResp(u)})
	}

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one account.  Non-admins may only fetch themselves.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	role, _ := getRole(c)
	if role != model.RoleAdmin {
		uid, uerr := getUserID(c)
		if uerr != nil || uid != id {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Update rewrites an account's profile fields.  Omitted is_active keeps
// the current value.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	current, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	email := current.Email
	if v := strings.ToLower(strings.TrimSpace(req.Email)); v != "" {
		email = v
	}
	firstName := current.FirstName
	if v := strings.TrimSpace(req.FirstName); v != "" {
		firstName = v
	}
	lastName := current.LastName
	if v := strings.TrimSpace(req.LastName); v != "" {
		lastName = v
	}
	role := current.Role
	if req.Role != "" {
		parsed, ok := model.ParseRole(req.Role)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN, RH or SG"})
		}
		role = parsed
	}
	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	if err := h.Users.Update(ctx, id, email, firstName, lastName, role, isActive); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	h.Recorder.Record(newEvent(c, model.ActionUpdate, model.TargetUser, id,
		"Mise à jour du compte "+u.Email))
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Deactivate disables an account instead of deleting the row, preserving
// history that references it.  Admins cannot deactivate themselves.
func (h *UserHandler) Deactivate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if actor, aerr := getUserID(c); aerr == nil && actor == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot deactivate own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Users.Update(ctx, id, u.Email, u.FirstName, u.LastName, u.Role, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionDelete, model.TargetUser, id,
		"Désactivation du compte "+u.Email))
	return c.NoContent(http.StatusNoContent)
}
