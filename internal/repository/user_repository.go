package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/esidoc/hr-document-service/internal/model"
)

// UserRepo persists user accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,first_name,last_name,password_hash,role,temp_password,is_active,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var temp sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.Role, &temp, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if temp.Valid {
		t := temp.String
		u.TempPassword = &t
	}
	return u, err
}

// Create inserts a user with a hashed temporary password and returns its ID.
// The plain temporary password is stored alongside the hash so it can be
// mailed to the user; it is cleared the first time a real password is set.
func (r *UserRepo) Create(ctx context.Context, email, firstName, lastName string, role model.Role, passwordHash, tempPassword string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, first_name, last_name, password_hash, role, temp_password) VALUES (?,?,?,?,?,?)",
		email, firstName, lastName, passwordHash, string(role), tempPassword)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all users ordered by creation time, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		var temp sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
			&u.Role, &temp, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if temp.Valid {
			t := temp.String
			u.TempPassword = &t
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update changes a user's profile fields.  Email is normalized; a duplicate
// email maps to ErrEmailExists, a missing row to ErrNotFound.
func (r *UserRepo) Update(ctx context.Context, id uint64, email, firstName, lastName string, role model.Role, isActive bool) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, first_name=?, last_name=?, role=?, is_active=? WHERE id=?",
		email, firstName, lastName, string(role), isActive, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and a no-op update;
		// confirm existence before reporting not found.
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", id).Scan(&one); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}

// SetPassword stores a new password hash and clears the temporary password.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, temp_password=NULL WHERE id=?",
		passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", id).Scan(&one); err == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return nil
}

// UserCounts aggregates identity-store figures for the dashboard.
type UserCounts struct {
	Total  int64
	Active int64
	ByRole map[model.Role]int64
}

// Counts returns total/active user counts and a per-role breakdown.
func (r *UserRepo) Counts(ctx context.Context) (UserCounts, error) {
	out := UserCounts{ByRole: map[model.Role]int64{}}
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&out.Total); err != nil {
		return out, err
	}
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE is_active=1").Scan(&out.Active); err != nil {
		return out, err
	}
	rows, err := r.DB.QueryContext(ctx, "SELECT role, COUNT(*) FROM users GROUP BY role")
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return out, err
		}
		out.ByRole[model.Role(role)] = n
	}
	return out, rows.Err()
}

// RecentSince returns up to limit users created at or after the cutoff,
// newest first.  Used by the statistics aggregator.
func (r *UserRepo) RecentSince(ctx context.Context, cutoff time.Time, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE created_at>=? ORDER BY created_at DESC LIMIT ?",
		cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		var temp sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
			&u.Role, &temp, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
