package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/reference"
)

func TestCertificateCreateAllocatesReferenceInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCertificateRepo(db, reference.NewAllocator())

	now := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM employees WHERE id=?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reference_counters")).
		WithArgs("ATTESTATION", 2026).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT seq FROM reference_counters")).
		WithArgs("ATTESTATION", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attestations")).
		WithArgs("AT-2026-0012", uint64(7), now.Truncate(24*time.Hour), model.DefaultIssuer).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	cert, err := repo.Create(context.Background(), 7, model.DefaultIssuer, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cert.Reference != "AT-2026-0012" {
		t.Fatalf("Reference = %q, want AT-2026-0012", cert.Reference)
	}
	if cert.ID != 4 || cert.EmployeeID != 7 {
		t.Fatalf("unexpected certificate: %+v", cert)
	}
	if !cert.IssueDate.Equal(now.Truncate(24 * time.Hour)) {
		t.Fatalf("IssueDate = %v, want midnight of issuance day", cert.IssueDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCertificateCreateUnknownEmployee(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCertificateRepo(db, reference.NewAllocator())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM employees WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	if _, err := repo.Create(context.Background(), 99, model.DefaultIssuer, time.Now()); err != ErrNotFound {
		t.Fatalf("Create: got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCertificateCreateRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCertificateRepo(db, reference.NewAllocator())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM employees WHERE id=?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reference_counters")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT seq FROM reference_counters")).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(13))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attestations")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	if _, err := repo.Create(context.Background(), 7, model.DefaultIssuer, time.Now()); err == nil {
		t.Fatal("Create: expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
