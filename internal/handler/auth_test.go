package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/esidoc/hr-document-service/internal/audit"
	"github.com/esidoc/hr-document-service/internal/config"
	"github.com/esidoc/hr-document-service/internal/notify"
	"github.com/esidoc/hr-document-service/internal/repository"
	"github.com/esidoc/hr-document-service/internal/utils"
)

// nullMailer swallows everything.
type nullMailer struct{}

func (nullMailer) Send(subject, body, from string, to []string) error { return nil }

func testAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		ResetTTLMin:    30,
		BcryptCost:     4,
	}
	h := NewAuthHandler(cfg,
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		notify.NewDispatcher(repository.NewNotificationRepo(db), nullMailer{}, "noreply@esi.dz"),
		audit.NewRecorder(nil, nil, 16))
	return h, mock, func() { db.Close() }
}

func userRow(t *testing.T, email, password string, active bool) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now()
	cols := []string{"id", "email", "first_name", "last_name", "password_hash", "role", "temp_password", "is_active", "created_at", "updated_at"}
	return sqlmock.NewRows(cols).
		AddRow(6, email, "Amina", "BENALI", hash, "RH", nil, active, now, now)
}

func postJSON(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLoginIssuesTokenPair(t *testing.T) {
	h, mock, closeDB := testAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("a.benali@esi.dz").
		WillReturnRows(userRow(t, "a.benali@esi.dz", "s3cretPass", true))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := postJSON("/v1/auth/login", `{"email":"A.Benali@ESI.dz","password":"s3cretPass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp authResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Email != "a.benali@esi.dz" || resp.User.Role != "RH" {
		t.Fatalf("unexpected user part: %+v", resp.User)
	}
	if resp.Access.Token == "" || resp.Refresh.Token == "" {
		t.Fatal("token pair incomplete")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock, closeDB := testAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WillReturnRows(userRow(t, "a.benali@esi.dz", "s3cretPass", true))

	c, rec := postJSON("/v1/auth/login", `{"email":"a.benali@esi.dz","password":"wrong"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginInactiveAccountLooksLikeBadCredentials(t *testing.T) {
	h, mock, closeDB := testAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WillReturnRows(userRow(t, "a.benali@esi.dz", "s3cretPass", false))

	c, rec := postJSON("/v1/auth/login", `{"email":"a.benali@esi.dz","password":"s3cretPass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestPasswordResetRequestAlwaysAnswers200(t *testing.T) {
	h, mock, closeDB := testAuthHandler(t)
	defer closeDB()

	// Unknown address: same response, no token issued.
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := postJSON("/v1/auth/password-reset", `{"email":"nobody@esi.dz"}`)
	if err := h.PasswordResetRequest(c); err != nil {
		t.Fatalf("PasswordResetRequest: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestPasswordResetConfirmRejectsMalformedToken(t *testing.T) {
	h, _, closeDB := testAuthHandler(t)
	defer closeDB()

	c, rec := postJSON("/v1/auth/password-reset/confirm",
		`{"token":"garbage","new_password":"longEnough1"}`)
	if err := h.PasswordResetConfirm(c); err != nil {
		t.Fatalf("PasswordResetConfirm: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPasswordResetConfirmSetsPassword(t *testing.T) {
	h, mock, closeDB := testAuthHandler(t)
	defer closeDB()

	// The token key derives from the stored hash, so the mocked row must
	// carry the same hash the token was built against.
	hash, err := utils.HashPassword("oldPassword1", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now()
	cols := []string{"id", "email", "first_name", "last_name", "password_hash", "role", "temp_password", "is_active", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(6)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(6, "a.benali@esi.dz", "Amina", "BENALI", hash, "RH", nil, true, now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=?")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	token, err := utils.NewResetToken("test-secret", 6, hash, 30)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	c, rec := postJSON("/v1/auth/password-reset/confirm",
		`{"token":"6-`+token+`","new_password":"newPassword1"}`)
	if err := h.PasswordResetConfirm(c); err != nil {
		t.Fatalf("PasswordResetConfirm: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
