package reference

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/esidoc/hr-document-service/internal/model"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		kind model.DocumentKind
		year int
		seq  int64
		want string
	}{
		{model.KindAttestation, 2026, 1, "AT-2026-0001"},
		{model.KindAttestation, 2026, 42, "AT-2026-0042"},
		{model.KindMission, 2025, 7, "OM-2025-0007"},
		{model.KindMission, 2026, 12345, "OM-2026-12345"},
	}
	for _, c := range cases {
		if got := Format(c.kind, c.year, c.seq); got != c.want {
			t.Fatalf("Format(%s, %d, %d) = %q, want %q", c.kind, c.year, c.seq, got, c.want)
		}
	}
}

func TestNextTxUpsertsThenReads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO reference_counters (kind, year, seq) VALUES (?,?,1) ON DUPLICATE KEY UPDATE seq = seq + 1")).
		WithArgs("ATTESTATION", 2026).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT seq FROM reference_counters WHERE kind=? AND year=?")).
		WithArgs("ATTESTATION", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(8))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	ref, err := NewAllocator().NextTx(context.Background(), tx, model.KindAttestation, 2026)
	if err != nil {
		t.Fatalf("NextTx: %v", err)
	}
	if ref != "AT-2026-0008" {
		t.Fatalf("NextTx = %q, want AT-2026-0008", ref)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNextTxKindsCountIndependently(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reference_counters")).
		WithArgs("MISSION", 2026).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT seq FROM reference_counters")).
		WithArgs("MISSION", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	ref, err := NewAllocator().NextTx(context.Background(), tx, model.KindMission, 2026)
	if err != nil {
		t.Fatalf("NextTx: %v", err)
	}
	if ref != "OM-2026-0001" {
		t.Fatalf("NextTx = %q, want OM-2026-0001", ref)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
