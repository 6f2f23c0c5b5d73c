package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/esidoc/hr-document-service/internal/model"
)

// ActivityRepo persists the append-only audit trail.  Rows are only ever
// inserted and read; there is deliberately no update or delete.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// Insert appends one audit entry.
func (r *ActivityRepo) Insert(ctx context.Context, e *model.ActivityLog) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO activity_logs (actor_id, action, target, target_id, description, ip, user_agent, timestamp)
		 VALUES (?,?,?,?,?,?,?,?)`,
		e.ActorID, string(e.Action), string(e.Target), e.TargetID, e.Description, e.IP, e.UserAgent, e.Timestamp)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ActivityFilter narrows a listing.  Zero values mean "no constraint".
type ActivityFilter struct {
	ActorID   uint64
	Action    model.ActionKind
	Target    model.TargetKind
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

const activitySelect = `SELECT a.id, a.actor_id, COALESCE(CONCAT(u.first_name,' ',u.last_name), ''),
	a.action, a.target, a.target_id, a.description, a.ip, a.user_agent, a.timestamp
	FROM activity_logs a LEFT JOIN users u ON u.id = a.actor_id`

// List returns audit entries matching the filter, reverse-chronological.
func (r *ActivityRepo) List(ctx context.Context, f ActivityFilter) ([]model.ActivityLog, error) {
	q := activitySelect
	var conds []string
	var args []any
	if f.ActorID != 0 {
		conds = append(conds, "a.actor_id=?")
		args = append(args, f.ActorID)
	}
	if f.Action != "" {
		conds = append(conds, "a.action=?")
		args = append(args, string(f.Action))
	}
	if f.Target != "" {
		conds = append(conds, "a.target=?")
		args = append(args, string(f.Target))
	}
	if !f.StartDate.IsZero() {
		conds = append(conds, "a.timestamp>=?")
		args = append(args, f.StartDate)
	}
	if !f.EndDate.IsZero() {
		conds = append(conds, "a.timestamp<=?")
		args = append(args, f.EndDate)
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY a.timestamp DESC, a.id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return r.query(ctx, q, args...)
}

// RecentSince returns entries with timestamp at or after cutoff (inclusive
// lower bound), reverse-chronological.  The handler derives cutoff from
// call time minus seven days.
func (r *ActivityRepo) RecentSince(ctx context.Context, cutoff time.Time) ([]model.ActivityLog, error) {
	return r.query(ctx, activitySelect+" WHERE a.timestamp>=? ORDER BY a.timestamp DESC, a.id DESC", cutoff)
}

// CountByDateSince returns entry counts per calendar day (YYYY-MM-DD) from
// cutoff on.
func (r *ActivityRepo) CountByDateSince(ctx context.Context, cutoff time.Time) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT DATE(timestamp), COUNT(*) FROM activity_logs WHERE timestamp>=? GROUP BY DATE(timestamp)",
		cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var day time.Time
		var n int64
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		out[day.Format("2006-01-02")] = n
	}
	return out, rows.Err()
}

// CountByActionSince returns entry counts per action kind from cutoff on.
func (r *ActivityRepo) CountByActionSince(ctx context.Context, cutoff time.Time) (map[model.ActionKind]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT action, COUNT(*) FROM activity_logs WHERE timestamp>=? GROUP BY action", cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[model.ActionKind]int64{}
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		out[model.ActionKind(action)] = n
	}
	return out, rows.Err()
}

func (r *ActivityRepo) query(ctx context.Context, q string, args ...any) ([]model.ActivityLog, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ActivityLog
	for rows.Next() {
		var e model.ActivityLog
		var actorID, targetID sql.NullInt64
		if err := rows.Scan(&e.ID, &actorID, &e.ActorName, &e.Action, &e.Target, &targetID,
			&e.Description, &e.IP, &e.UserAgent, &e.Timestamp); err != nil {
			return nil, err
		}
		if actorID.Valid {
			v := uint64(actorID.Int64)
			e.ActorID = &v
		}
		if targetID.Valid {
			v := uint64(targetID.Int64)
			e.TargetID = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
