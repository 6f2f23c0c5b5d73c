package handler

import (
    "context"      // context with cancellation for DB calls
    "database/sql" // sentinel errors from the persistence layer
    "fmt"          // reset-token wire format
    "net/http"     // HTTP status codes
    "strconv"      // string-to-int conversion
    "strings"      // trimming and case helpers
    "time"         // timeouts for DB calls

    "github.com/golang-jwt/jwt/v5" // parsing access tokens on logout
    "github.com/labstack/echo/v4"  // HTTP routing

    "github.com/esidoc/hr-document-service/internal/audit"
    "github.com/esidoc/hr-document-service/internal/config"
    "github.com/esidoc/hr-document-service/internal/model"
    "github.com/esidoc/hr-document-service/internal/notify"
    "github.com/esidoc/hr-document-service/internal/repository"
    "github.com/esidoc/hr-document-service/internal/utils"
)

// AuthHandler bundles dependencies for session and credential endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Notify   *notify.Dispatcher
	Recorder *audit.Recorder
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, n *notify.Dispatcher, rec *audit.Recorder) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Notify: n, Recorder: rec}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
type resetRequestReq struct {
	Email string `json:"email"`
}
type resetConfirmReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      model.Role `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role}
}

func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), u.Email, u.FullName(), h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Login verifies credentials and returns a fresh token pair.  Inactive
// accounts and wrong passwords collapse into the same 401 so the endpoint
// does not leak which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	ev := audit.Event{
		ActorID:     &u.ID,
		Action:      model.ActionLogin,
		Target:      model.TargetSystem,
		Description: "Connexion de " + u.Email,
		IP:          c.RealIP(),
		UserAgent:   c.Request().UserAgent(),
	}
	h.Recorder.Record(ev)

	return c.JSON(http.StatusOK, resp)
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes a specific refresh token, or every token of the bearer
// when only an access token is supplied.  Either way the client ends up
// without a usable session.
func (h *AuthHandler) Logout(c echo.Context) error {
	// Inspect the Authorization header ourselves so this endpoint works
	// without the JWT middleware.
	var uid uint64
	hasBearer := false
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		rawToken := strings.TrimPrefix(authHeader, "Bearer ")
		tok, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, echo.ErrUnauthorized
			}
			return []byte(h.Cfg.JWTSecret), nil
		})
		if err == nil && tok.Valid {
			if claims, ok := tok.Claims.(jwt.MapClaims); ok {
				switch subVal := claims["sub"].(type) {
				case float64:
					uid = uint64(subVal)
					hasBearer = true
				case string:
					if parsed, err := strconv.ParseUint(subVal, 10, 64); err == nil {
						uid = parsed
						hasBearer = true
					}
				}
			}
		}
	}

	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	logoutEvent := func(actor uint64) {
		ev := audit.Event{
			ActorID:     &actor,
			Action:      model.ActionLogout,
			Target:      model.TargetSystem,
			Description: "Déconnexion",
			IP:          c.RealIP(),
			UserAgent:   c.Request().UserAgent(),
		}
		h.Recorder.Record(ev)
	}

	// Bearer without refresh token: revoke every session of the user.
	if hasBearer && refreshToken == "" {
		if uid == 0 {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		logoutEvent(uid)
		return c.NoContent(http.StatusNoContent)
	}
	// Refresh token supplied: validate and revoke that one session.
	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		owner, err := h.Tokens.ValidateRefresh(ctx, hash)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		logoutEvent(owner)
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me returns the authenticated session's claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
		"email":   c.Get("email"),
		"name":    c.Get("name"),
	})
}

// ChangePassword lets a user change their own password (old password
// required) and an admin change anyone's (no old password).  Setting a
// password clears the account's temporary password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := getRole(c)
	isAdmin := role == model.RoleAdmin
	if actorID != targetID && !isAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req changePasswordReq
	if err := c.Bind(&req); err != nil || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_password required"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// Self-service change requires the current password; an admin acting
	// on another account does not.
	if actorID == targetID {
		if !utils.VerifyPassword(u.PasswordHash, req.OldPassword) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "old password incorrect"})
		}
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	if err := h.Users.SetPassword(ctx, targetID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionUpdate, model.TargetUser, targetID, "Changement de mot de passe"))
	return c.JSON(http.StatusOK, echo.Map{"detail": "password changed"})
}

// PasswordResetRequest mails a reset token when the account exists.  The
// response is the same 200 either way so the endpoint cannot be used to
// enumerate accounts.
func (h *AuthHandler) PasswordResetRequest(c echo.Context) error {
	var req resetRequestReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err == nil {
		token, terr := utils.NewResetToken(h.Cfg.JWTSecret, u.ID, u.PasswordHash, h.Cfg.ResetTTLMin)
		if terr == nil {
			// Wire format <uid>-<token>: confirm needs the user ID to
			// derive the verification key before parsing the token.
			h.Notify.SendPasswordReset(u, fmt.Sprintf("%d-%s", u.ID, token))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "if the address exists, reset instructions have been sent"})
}

// PasswordResetConfirm validates a reset token and sets the new password.
// Tampered, expired or replayed tokens all produce the same rejection and
// leave the password unchanged.
func (h *AuthHandler) PasswordResetConfirm(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and new_password required"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	parts := strings.SplitN(req.Token, "-", 2)
	if len(parts) != 2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	uid, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		// Same response as a bad token: no account enumeration.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	subject, err := utils.ParseResetToken(h.Cfg.JWTSecret, u.PasswordHash, parts[1])
	if err != nil || subject != u.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	if err := h.Users.SetPassword(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	// Changing the hash invalidated the token; also drop open sessions.
	_ = h.Tokens.RevokeAllForUser(ctx, u.ID)

	ev := audit.Event{
		ActorID:     &u.ID,
		Action:      model.ActionUpdate,
		Target:      model.TargetUser,
		TargetID:    &u.ID,
		Description: "Réinitialisation du mot de passe",
		IP:          c.RealIP(),
		UserAgent:   c.Request().UserAgent(),
	}
	h.Recorder.Record(ev)
	return c.JSON(http.StatusOK, echo.Map{"detail": "password reset successful"})
}
