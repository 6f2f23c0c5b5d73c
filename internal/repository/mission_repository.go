package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/reference"
)

// MissionRepo persists mission orders and their legs.  The order and its
// legs form one aggregate: creation happens in a single transaction, an
// update that supplies legs replaces the whole set transactionally, and
// deleting the parent removes the legs with it.
type MissionRepo struct {
	db   *sql.DB
	refs *reference.Allocator
}

func NewMissionRepo(db *sql.DB, refs *reference.Allocator) *MissionRepo {
	return &MissionRepo{db: db, refs: refs}
}

const missionColumns = `m.id, m.reference, m.employee_id, m.objet, m.lieu_depart, m.lieu_destination,
	m.date_depart, m.date_retour, m.transport, m.avance, m.numero_avance, m.date_avance, m.lieu_avance,
	m.nuits_hebergement, m.duree_jours, m.duree_heures, m.date_creation, m.responsable`
const missionSelect = "SELECT " + missionColumns + ", CONCAT(e.last_name,' ',e.first_name)" +
	" FROM mission_orders m JOIN employees e ON e.id = m.employee_id"

func scanMission(scan func(dest ...any) error) (model.MissionOrder, error) {
	var m model.MissionOrder
	var avance sql.NullFloat64
	var dateAvance sql.NullTime
	var numAvance, lieuAvance sql.NullString
	err := scan(&m.ID, &m.Reference, &m.EmployeeID, &m.Objet, &m.LieuDepart, &m.LieuDestination,
		&m.DateDepart, &m.DateRetour, &m.Transport, &avance, &numAvance, &dateAvance, &lieuAvance,
		&m.NuitsHebergement, &m.DureeJours, &m.DureeHeures, &m.DateCreation, &m.Responsable,
		&m.EmployeeName)
	if err != nil {
		return m, err
	}
	if avance.Valid {
		v := avance.Float64
		m.Avance = &v
	}
	if dateAvance.Valid {
		t := dateAvance.Time
		m.DateAvance = &t
	}
	m.NumeroAvance = numAvance.String
	m.LieuAvance = lieuAvance.String
	return m, nil
}

// CreateWithLegs allocates the order's reference, inserts the order and all
// supplied legs as a single transaction and returns the new order ID.  An
// order may legitimately carry zero legs.  A missing employee surfaces as
// ErrNotFound.
func (r *MissionRepo) CreateWithLegs(ctx context.Context, m *model.MissionOrder, legs []model.MissionLeg, now time.Time) (uint64, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM employees WHERE id=?", m.EmployeeID).Scan(&one)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ref, err := r.refs.NextTx(ctx, tx, model.KindMission, now.Year())
	if err != nil {
		return 0, err
	}
	creation := now.UTC().Truncate(24 * time.Hour)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO mission_orders (reference, employee_id, objet, lieu_depart, lieu_destination,
		 date_depart, date_retour, transport, avance, numero_avance, date_avance, lieu_avance,
		 nuits_hebergement, duree_jours, duree_heures, date_creation, responsable)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		ref, m.EmployeeID, m.Objet, m.LieuDepart, m.LieuDestination,
		m.DateDepart, m.DateRetour, string(m.Transport), m.Avance, m.NumeroAvance, m.DateAvance,
		m.LieuAvance, m.NuitsHebergement, m.DureeJours, m.DureeHeures, creation, m.Responsable)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err = insertLegsTx(ctx, tx, uint64(id), legs); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	m.ID = uint64(id)
	m.Reference = ref
	m.DateCreation = creation
	return m.ID, nil
}

// insertLegsTx bulk-inserts legs for one order.  An empty slice is a no-op.
func insertLegsTx(ctx context.Context, tx *sql.Tx, orderID uint64, legs []model.MissionLeg) error {
	if len(legs) == 0 {
		return nil
	}
	q := "INSERT INTO mission_legs (order_id, lieu_depart, lieu_arrivee, date_depart, date_arrivee, transport) VALUES "
	args := make([]any, 0, len(legs)*6)
	for i, l := range legs {
		if i > 0 {
			q += ","
		}
		q += "(?,?,?,?,?,?)"
		args = append(args, orderID, l.LieuDepart, l.LieuArrivee, l.DateDepart, l.DateArrivee, string(l.Transport))
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// GetByID fetches one order together with its legs ordered by departure
// time ascending.
func (r *MissionRepo) GetByID(ctx context.Context, id uint64) (model.MissionOrder, error) {
	m, err := scanMission(r.db.QueryRowContext(ctx, missionSelect+" WHERE m.id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	if err != nil {
		return m, err
	}
	m.Legs, err = r.ListLegs(ctx, id)
	return m, err
}

// List returns orders newest first, optionally filtered by a search term
// over reference, destination, objet and employee name.  Legs are not
// loaded for listings.
func (r *MissionRepo) List(ctx context.Context, search string) ([]model.MissionOrder, error) {
	q := missionSelect
	var args []any
	if search != "" {
		q += ` WHERE m.reference LIKE ? OR m.lieu_destination LIKE ? OR m.objet LIKE ?
			OR e.first_name LIKE ? OR e.last_name LIKE ?`
		like := "%" + search + "%"
		args = append(args, like, like, like, like, like)
	}
	q += " ORDER BY m.date_creation DESC, m.id DESC"
	return r.query(ctx, q, args...)
}

// ListByEmployee returns all orders issued for one employee.
func (r *MissionRepo) ListByEmployee(ctx context.Context, employeeID uint64) ([]model.MissionOrder, error) {
	return r.query(ctx, missionSelect+" WHERE m.employee_id=? ORDER BY m.date_creation DESC, m.id DESC", employeeID)
}

// Update rewrites the order's scalar fields and, when legs is non-nil,
// replaces the entire leg set with the supplied one (nil keeps existing
// legs, an empty non-nil slice clears them).  Scalar update and leg
// replacement share one transaction so a failure mid-sequence leaves the
// previous aggregate intact.  Reference, creation date and responsable are
// immutable.
func (r *MissionRepo) Update(ctx context.Context, m *model.MissionOrder, legs []model.MissionLeg) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE mission_orders SET employee_id=?, objet=?, lieu_depart=?, lieu_destination=?,
		 date_depart=?, date_retour=?, transport=?, avance=?, numero_avance=?, date_avance=?,
		 lieu_avance=?, nuits_hebergement=?, duree_jours=?, duree_heures=? WHERE id=?`,
		m.EmployeeID, m.Objet, m.LieuDepart, m.LieuDestination,
		m.DateDepart, m.DateRetour, string(m.Transport), m.Avance, m.NumeroAvance, m.DateAvance,
		m.LieuAvance, m.NuitsHebergement, m.DureeJours, m.DureeHeures, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err = tx.QueryRowContext(ctx, "SELECT 1 FROM mission_orders WHERE id=?", m.ID).Scan(&one)
		if err == sql.ErrNoRows {
			err = ErrNotFound
			return err
		}
		if err != nil {
			return err
		}
	}
	if legs != nil {
		if _, err = tx.ExecContext(ctx, "DELETE FROM mission_legs WHERE order_id=?", m.ID); err != nil {
			return err
		}
		if err = insertLegsTx(ctx, tx, m.ID, legs); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// Delete removes an order and its legs in one transaction.
func (r *MissionRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM mission_legs WHERE order_id=?", id); err != nil {
		return err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, "DELETE FROM mission_orders WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrNotFound
		return err
	}
	err = tx.Commit()
	return err
}

// ListLegs returns an order's legs ordered by departure time ascending,
// which governs both display and the nested etapes listing.
func (r *MissionRepo) ListLegs(ctx context.Context, orderID uint64) ([]model.MissionLeg, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, lieu_depart, lieu_arrivee, date_depart, date_arrivee, transport
		 FROM mission_legs WHERE order_id=? ORDER BY date_depart ASC, id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.MissionLeg
	for rows.Next() {
		var l model.MissionLeg
		if err := rows.Scan(&l.ID, &l.OrderID, &l.LieuDepart, &l.LieuArrivee,
			&l.DateDepart, &l.DateArrivee, &l.Transport); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AddLeg appends one leg to an existing order.  ErrNotFound when the
// order is absent.
func (r *MissionRepo) AddLeg(ctx context.Context, l *model.MissionLeg) (uint64, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM mission_orders WHERE id=?", l.OrderID).Scan(&one)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO mission_legs (order_id, lieu_depart, lieu_arrivee, date_depart, date_arrivee, transport) VALUES (?,?,?,?,?,?)",
		l.OrderID, l.LieuDepart, l.LieuArrivee, l.DateDepart, l.DateArrivee, string(l.Transport))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetLeg fetches one leg scoped to its order.  A leg that exists under a
// different order is ErrNotFound.
func (r *MissionRepo) GetLeg(ctx context.Context, orderID, legID uint64) (model.MissionLeg, error) {
	var l model.MissionLeg
	err := r.db.QueryRowContext(ctx,
		`SELECT id, order_id, lieu_depart, lieu_arrivee, date_depart, date_arrivee, transport
		 FROM mission_legs WHERE id=? AND order_id=?`, legID, orderID).
		Scan(&l.ID, &l.OrderID, &l.LieuDepart, &l.LieuArrivee, &l.DateDepart, &l.DateArrivee, &l.Transport)
	if err == sql.ErrNoRows {
		return l, ErrNotFound
	}
	return l, err
}

// UpdateLeg rewrites one leg in place, scoped to its order.
func (r *MissionRepo) UpdateLeg(ctx context.Context, l *model.MissionLeg) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mission_legs SET lieu_depart=?, lieu_arrivee=?, date_depart=?, date_arrivee=?, transport=?
		 WHERE id=? AND order_id=?`,
		l.LieuDepart, l.LieuArrivee, l.DateDepart, l.DateArrivee, string(l.Transport), l.ID, l.OrderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err = r.db.QueryRowContext(ctx,
			"SELECT 1 FROM mission_legs WHERE id=? AND order_id=?", l.ID, l.OrderID).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteLeg removes one leg, scoped to its order.
func (r *MissionRepo) DeleteLeg(ctx context.Context, orderID, legID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM mission_legs WHERE id=? AND order_id=?", legID, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of mission orders.
func (r *MissionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mission_orders").Scan(&n)
	return n, err
}

// RecentSince returns up to limit orders created at or after cutoff,
// newest first, for the statistics aggregator.
func (r *MissionRepo) RecentSince(ctx context.Context, cutoff time.Time, limit int) ([]model.MissionOrder, error) {
	return r.query(ctx,
		missionSelect+" WHERE m.date_creation>=? ORDER BY m.date_creation DESC, m.id DESC LIMIT ?",
		cutoff, limit)
}

func (r *MissionRepo) query(ctx context.Context, q string, args ...any) ([]model.MissionOrder, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.MissionOrder
	for rows.Next() {
		m, err := scanMission(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
