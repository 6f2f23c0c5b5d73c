package repository

import (
	"context"
	"database/sql"

	"github.com/esidoc/hr-document-service/internal/model"
)

// NotificationRepo persists per-user notifications.  All reads are scoped
// by recipient: a user can never see or mutate another user's rows.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create inserts a notification row and populates its ID.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, message) VALUES (?,?)",
		n.UserID, n.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, message, created_at, is_read FROM notifications WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.CreatedAt, &n.IsRead); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetForUser fetches one notification owned by the given user;
// ErrNotFound otherwise.
func (r *NotificationRepo) GetForUser(ctx context.Context, id, userID uint64) (model.Notification, error) {
	var n model.Notification
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, message, created_at, is_read FROM notifications WHERE id=? AND user_id=? LIMIT 1",
		id, userID).Scan(&n.ID, &n.UserID, &n.Message, &n.CreatedAt, &n.IsRead)
	if err == sql.ErrNoRows {
		return n, ErrNotFound
	}
	return n, err
}

// MarkRead flips one notification of the user to read.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM notifications WHERE id=? AND user_id=?", id, userID).Scan(&one); err == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return nil
}

// MarkAllRead flips every unread notification of the user to read and
// returns how many rows changed.  A second immediate call reports zero.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes one notification owned by the user.
func (r *NotificationRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM notifications WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
