// Package reference allocates the year-scoped identifiers stamped on
// generated documents.  References look like AT-2026-0007: a two-letter
// kind prefix, the four-digit issuance year and a 1-based, zero-padded
// sequence number that restarts each calendar year.
//
// Sequence numbers come from a per-(kind, year) row in the
// reference_counters table, incremented under a row lock so two
// concurrent creations can never observe the same value.  Callers run
// NextTx inside the same transaction that inserts the document, so an
// aborted insert rolls the counter back with it and leaves no gap.
package reference

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/esidoc/hr-document-service/internal/model"
)

// Allocator hands out document references.  It carries no state of its
// own; all coordination happens in the database.
type Allocator struct{}

func NewAllocator() *Allocator { return &Allocator{} }

// NextTx reserves the next sequence number for the given kind and year
// inside tx and returns the formatted reference.  Database errors are
// returned unchanged.
func (a *Allocator) NextTx(ctx context.Context, tx *sql.Tx, kind model.DocumentKind, year int) (string, error) {
	// The upsert takes a row lock on the (kind, year) counter that is
	// held until the surrounding transaction ends, so the read below
	// cannot interleave with a concurrent allocation.
	_, err := tx.ExecContext(ctx,
		"INSERT INTO reference_counters (kind, year, seq) VALUES (?,?,1) "+
			"ON DUPLICATE KEY UPDATE seq = seq + 1",
		string(kind), year)
	if err != nil {
		return "", err
	}
	var seq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT seq FROM reference_counters WHERE kind=? AND year=?",
		string(kind), year).Scan(&seq); err != nil {
		return "", err
	}
	return Format(kind, year, seq), nil
}

// Format renders a reference in the visible wire format.
func Format(kind model.DocumentKind, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", kind.Prefix(), year, seq)
}
