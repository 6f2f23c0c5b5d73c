package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestEmployeeDeleteWithDocumentsConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewEmployeeRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id=?")).
		WithArgs(uint64(7)).
		WillReturnError(errors.New("Error 1451: Cannot delete or update a parent row: a foreign key constraint fails"))

	if err := repo.Delete(context.Background(), 7); err != ErrConflict {
		t.Fatalf("Delete: got %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEmployeeDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewEmployeeRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 99); err != ErrNotFound {
		t.Fatalf("Delete: got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
