package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/reference"
)

// CertificateRepo persists work certificates (attestations de travail).
// Creation allocates the year-scoped reference and inserts the row in one
// transaction; the issuance date is set at creation and never updated.
type CertificateRepo struct {
	db   *sql.DB
	refs *reference.Allocator
}

func NewCertificateRepo(db *sql.DB, refs *reference.Allocator) *CertificateRepo {
	return &CertificateRepo{db: db, refs: refs}
}

const certColumns = "a.id, a.reference, a.employee_id, a.issue_date, a.issuer"
const certJoin = " FROM attestations a JOIN employees e ON e.id = a.employee_id"
const certSelect = "SELECT " + certColumns + ", CONCAT(e.last_name,' ',e.first_name)" + certJoin

// Create allocates a reference for the current year, stamps the issuance
// date and inserts the certificate.  A missing employee surfaces as
// ErrNotFound.  The populated record is returned.
func (r *CertificateRepo) Create(ctx context.Context, employeeID uint64, issuer string, now time.Time) (model.WorkCertificate, error) {
	var cert model.WorkCertificate
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM employees WHERE id=?", employeeID).Scan(&one)
	if err == sql.ErrNoRows {
		return cert, ErrNotFound
	}
	if err != nil {
		return cert, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return cert, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ref, err := r.refs.NextTx(ctx, tx, model.KindAttestation, now.Year())
	if err != nil {
		return cert, err
	}
	issueDate := now.UTC().Truncate(24 * time.Hour)
	res, err := tx.ExecContext(ctx,
		"INSERT INTO attestations (reference, employee_id, issue_date, issuer) VALUES (?,?,?,?)",
		ref, employeeID, issueDate, issuer)
	if err != nil {
		return cert, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return cert, err
	}
	if err = tx.Commit(); err != nil {
		return cert, err
	}

	cert = model.WorkCertificate{
		ID:         uint64(id),
		Reference:  ref,
		EmployeeID: employeeID,
		IssueDate:  issueDate,
		Issuer:     issuer,
	}
	return cert, nil
}

// GetByID fetches one certificate with the employee display name joined in.
func (r *CertificateRepo) GetByID(ctx context.Context, id uint64) (model.WorkCertificate, error) {
	var c model.WorkCertificate
	err := r.db.QueryRowContext(ctx, certSelect+" WHERE a.id=? LIMIT 1", id).
		Scan(&c.ID, &c.Reference, &c.EmployeeID, &c.IssueDate, &c.Issuer, &c.EmployeeName)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// List returns certificates newest first, optionally filtered by a search
// term over reference and employee name.
func (r *CertificateRepo) List(ctx context.Context, search string) ([]model.WorkCertificate, error) {
	q := certSelect
	var args []any
	if search != "" {
		q += " WHERE a.reference LIKE ? OR e.first_name LIKE ? OR e.last_name LIKE ?"
		like := "%" + search + "%"
		args = append(args, like, like, like)
	}
	q += " ORDER BY a.issue_date DESC, a.id DESC"
	return r.query(ctx, q, args...)
}

// ListByEmployee returns all certificates issued to one employee.
func (r *CertificateRepo) ListByEmployee(ctx context.Context, employeeID uint64) ([]model.WorkCertificate, error) {
	return r.query(ctx, certSelect+" WHERE a.employee_id=? ORDER BY a.issue_date DESC, a.id DESC", employeeID)
}

// UpdateIssuer changes the issuer line.  Reference and issuance date are
// immutable, so they are deliberately not part of the statement.
func (r *CertificateRepo) UpdateIssuer(ctx context.Context, id uint64, issuer string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE attestations SET issuer=? WHERE id=?", issuer, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM attestations WHERE id=?", id).Scan(&one); err == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes a certificate.
func (r *CertificateRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM attestations WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of certificates.
func (r *CertificateRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attestations").Scan(&n)
	return n, err
}

// RecentSince returns up to limit certificates issued at or after cutoff,
// newest first, for the statistics aggregator.
func (r *CertificateRepo) RecentSince(ctx context.Context, cutoff time.Time, limit int) ([]model.WorkCertificate, error) {
	return r.query(ctx,
		certSelect+" WHERE a.issue_date>=? ORDER BY a.issue_date DESC, a.id DESC LIMIT ?",
		cutoff, limit)
}

func (r *CertificateRepo) query(ctx context.Context, q string, args ...any) ([]model.WorkCertificate, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WorkCertificate
	for rows.Next() {
		var c model.WorkCertificate
		if err := rows.Scan(&c.ID, &c.Reference, &c.EmployeeID, &c.IssueDate, &c.Issuer, &c.EmployeeName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
