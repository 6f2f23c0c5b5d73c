package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/esidoc/hr-document-service/internal/model"
)

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("a.benali@esi.dz", "Amina", "BENALI", "$2a$hash", "RH", "tmpPass").
		WillReturnResult(sqlmock.NewResult(6, 1))

	id, err := repo.Create(context.Background(), "  A.Benali@ESI.dz ", "Amina", "BENALI", model.RoleRH, "$2a$hash", "tmpPass")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 6 {
		t.Fatalf("Create = %d, want 6", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062: Duplicate entry 'a.benali@esi.dz' for key 'users.email'"))

	_, err = repo.Create(context.Background(), "a.benali@esi.dz", "Amina", "BENALI", model.RoleRH, "$2a$hash", "tmpPass")
	if err != ErrEmailExists {
		t.Fatalf("Create: got %v, want ErrEmailExists", err)
	}
}

func TestSetPasswordClearsTemporaryPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE users SET password_hash=?, temp_password=NULL WHERE id=?")).
		WithArgs("$2a$newhash", uint64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetPassword(context.Background(), 6, "$2a$newhash"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserUpdateDistinguishesNoopFromMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	// Zero rows affected but the row exists: a no-op update succeeds.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE id=?")).
		WithArgs(uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	if err := repo.Update(context.Background(), 6, "a@esi.dz", "A", "B", model.RoleSG, true); err != nil {
		t.Fatalf("Update no-op: %v", err)
	}

	// Zero rows affected and no row: not found.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	if err := repo.Update(context.Background(), 99, "a@esi.dz", "A", "B", model.RoleSG, true); err != ErrNotFound {
		t.Fatalf("Update missing: got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByEmailPopulatesTempPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	now := time.Now()
	cols := []string{"id", "email", "first_name", "last_name", "password_hash", "role", "temp_password", "is_active", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("a.benali@esi.dz").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(6, "a.benali@esi.dz", "Amina", "BENALI", "$2a$hash", "RH", "tmpPass", true, now, now))

	u, err := repo.GetByEmail(context.Background(), "A.Benali@ESI.dz")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.TempPassword == nil || *u.TempPassword != "tmpPass" {
		t.Fatalf("TempPassword = %v, want tmpPass", u.TempPassword)
	}
	if u.Role != model.RoleRH {
		t.Fatalf("Role = %q, want RH", u.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
