package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/esidoc/hr-document-service/internal/model"
)

func TestMarkAllReadReportsAffectedRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewNotificationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0")).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	// Nothing left unread on the second pass.
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0")).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.MarkAllRead(context.Background(), 5)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n != 3 {
		t.Fatalf("MarkAllRead = %d, want 3", n)
	}
	n, err = repo.MarkAllRead(context.Background(), 5)
	if err != nil {
		t.Fatalf("MarkAllRead second call: %v", err)
	}
	if n != 0 {
		t.Fatalf("MarkAllRead second call = %d, want 0", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNotificationOperationsAreOwnerScoped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewNotificationRepo(db)

	// Deleting a row that belongs to someone else affects nothing and
	// surfaces as not found.
	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM notifications WHERE id=? AND user_id=?")).
		WithArgs(uint64(9), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 9, 5); err != ErrNotFound {
		t.Fatalf("Delete: got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNotificationCreatePopulatesID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewNotificationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO notifications (user_id, message) VALUES (?,?)")).
		WithArgs(uint64(5), "Bienvenue").
		WillReturnResult(sqlmock.NewResult(17, 1))

	n := model.Notification{UserID: 5, Message: "Bienvenue"}
	if err := repo.Create(context.Background(), &n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.ID != 17 {
		t.Fatalf("Create ID = %d, want 17", n.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
