package repository

import (
	"context"
	"database/sql"

	"github.com/esidoc/hr-document-service/internal/model"
)

// EmployeeRepo persists HR profiles in the 'employees' table.  The
// canonical listing order is last_name, first_name.
type EmployeeRepo struct{ DB *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

const employeeColumns = "id,first_name,last_name,birth_date,birth_place,grade,fonction,categorie," +
	"hire_date,departure_date,service,statut,id_doc_number,id_doc_issue_date,id_doc_issue_place"

func scanEmployee(scan func(dest ...any) error) (model.Employee, error) {
	var e model.Employee
	var departure, docIssue sql.NullTime
	var docNumber, docPlace, service sql.NullString
	err := scan(&e.ID, &e.FirstName, &e.LastName, &e.BirthDate, &e.BirthPlace,
		&e.Grade, &e.Fonction, &e.Categorie, &e.HireDate, &departure,
		&service, &e.Statut, &docNumber, &docIssue, &docPlace)
	if err != nil {
		return e, err
	}
	if departure.Valid {
		t := departure.Time
		e.DepartureDate = &t
	}
	if docIssue.Valid {
		t := docIssue.Time
		e.IDDocIssueDate = &t
	}
	e.Service = service.String
	e.IDDocNumber = docNumber.String
	e.IDDocIssuePlace = docPlace.String
	return e, nil
}

// Create inserts an employee and returns its ID.
func (r *EmployeeRepo) Create(ctx context.Context, e *model.Employee) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO employees (first_name, last_name, birth_date, birth_place, grade, fonction, categorie,
		 hire_date, departure_date, service, statut, id_doc_number, id_doc_issue_date, id_doc_issue_place)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.FirstName, e.LastName, e.BirthDate, e.BirthPlace, e.Grade, e.Fonction, string(e.Categorie),
		e.HireDate, e.DepartureDate, e.Service, string(e.Statut), e.IDDocNumber, e.IDDocIssueDate, e.IDDocIssuePlace)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one employee; ErrNotFound when the row is absent.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (model.Employee, error) {
	e, err := scanEmployee(r.DB.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	return e, err
}

// List returns employees in canonical order, optionally narrowed by a
// search term matched against name, grade, fonction and service.
func (r *EmployeeRepo) List(ctx context.Context, search string) ([]model.Employee, error) {
	q := "SELECT " + employeeColumns + " FROM employees"
	var args []any
	if search != "" {
		q += " WHERE first_name LIKE ? OR last_name LIKE ? OR grade LIKE ? OR fonction LIKE ? OR service LIKE ?"
		like := "%" + search + "%"
		args = append(args, like, like, like, like, like)
	}
	q += " ORDER BY last_name, first_name"
	return r.query(ctx, q, args...)
}

// ListActive returns employees whose statut is ACTIF, canonical order.
func (r *EmployeeRepo) ListActive(ctx context.Context) ([]model.Employee, error) {
	return r.query(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE statut=? ORDER BY last_name, first_name",
		string(model.StatusActif))
}

// ListByCategory returns employees of one category, canonical order.
func (r *EmployeeRepo) ListByCategory(ctx context.Context, cat model.EmployeeCategory) ([]model.Employee, error) {
	return r.query(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE categorie=? ORDER BY last_name, first_name",
		string(cat))
}

// Update replaces every mutable employee field.
func (r *EmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE employees SET first_name=?, last_name=?, birth_date=?, birth_place=?, grade=?, fonction=?,
		 categorie=?, hire_date=?, departure_date=?, service=?, statut=?, id_doc_number=?,
		 id_doc_issue_date=?, id_doc_issue_place=? WHERE id=?`,
		e.FirstName, e.LastName, e.BirthDate, e.BirthPlace, e.Grade, e.Fonction, string(e.Categorie),
		e.HireDate, e.DepartureDate, e.Service, string(e.Statut), e.IDDocNumber, e.IDDocIssueDate,
		e.IDDocIssuePlace, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM employees WHERE id=?", e.ID).Scan(&one); err == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes an employee.  The document tables reference employees
// with ON DELETE RESTRICT, so an employee that still has attestations or
// mission orders surfaces as ErrConflict instead of silently taking its
// documents with it.
func (r *EmployeeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM employees WHERE id=?", id)
	if err != nil {
		if isFKViolation(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// EmployeeCounts aggregates workforce figures for the dashboard.
type EmployeeCounts struct {
	Total      int64
	Active     int64
	ByCategory map[model.EmployeeCategory]int64
}

// Counts returns total/active employee counts and a per-category breakdown.
func (r *EmployeeRepo) Counts(ctx context.Context) (EmployeeCounts, error) {
	out := EmployeeCounts{ByCategory: map[model.EmployeeCategory]int64{}}
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&out.Total); err != nil {
		return out, err
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM employees WHERE statut=?", string(model.StatusActif)).Scan(&out.Active); err != nil {
		return out, err
	}
	rows, err := r.DB.QueryContext(ctx, "SELECT categorie, COUNT(*) FROM employees GROUP BY categorie")
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int64
		if err := rows.Scan(&cat, &n); err != nil {
			return out, err
		}
		out.ByCategory[model.EmployeeCategory(cat)] = n
	}
	return out, rows.Err()
}

func (r *EmployeeRepo) query(ctx context.Context, q string, args ...any) ([]model.Employee, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
