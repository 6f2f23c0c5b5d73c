package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/reference"
)

func testMission() model.MissionOrder {
	return model.MissionOrder{
		ID:              3,
		EmployeeID:      7,
		Objet:           "Réunion de coordination",
		LieuDepart:      "Alger",
		LieuDestination: "Oran",
		DateDepart:      time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		DateRetour:      time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC),
		Transport:       model.TransportTrain,
	}
}

func TestMissionUpdateReplacesLegsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mission_orders SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mission_legs WHERE order_id=?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO mission_legs")).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	m := testMission()
	legs := []model.MissionLeg{{
		LieuDepart:  "Alger",
		LieuArrivee: "Oran",
		DateDepart:  m.DateDepart,
		DateArrivee: m.DateDepart.Add(5 * time.Hour),
		Transport:   model.TransportTrain,
	}}
	if err := repo.Update(context.Background(), &m, legs); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMissionUpdateEmptyLegSetClearsLegs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mission_orders SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// A non-nil empty set still deletes; the bulk insert is skipped.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mission_legs WHERE order_id=?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	m := testMission()
	if err := repo.Update(context.Background(), &m, []model.MissionLeg{}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMissionUpdateNilLegsKeepsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mission_orders SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := testMission()
	if err := repo.Update(context.Background(), &m, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMissionUpdateLegFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mission_orders SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mission_legs WHERE order_id=?")).
		WithArgs(uint64(3)).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	m := testMission()
	if err := repo.Update(context.Background(), &m, []model.MissionLeg{}); err == nil {
		t.Fatal("Update: expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMissionDeleteRemovesLegsFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mission_legs WHERE order_id=?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mission_orders WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMissionLegUpdateScopedToOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	// The leg exists but belongs to another order: the scoped UPDATE
	// touches nothing and the follow-up lookup misses.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mission_legs SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM mission_legs WHERE id=? AND order_id=?")).
		WithArgs(uint64(10), uint64(3)).
		WillReturnError(sql.ErrNoRows)

	l := model.MissionLeg{
		ID:          10,
		OrderID:     3,
		LieuDepart:  "Alger",
		LieuArrivee: "Oran",
		DateDepart:  time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		DateArrivee: time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC),
		Transport:   model.TransportTrain,
	}
	if err := repo.UpdateLeg(context.Background(), &l); err != ErrNotFound {
		t.Fatalf("UpdateLeg: got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMissionLegUpdateRewritesRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	dd := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	da := dd.Add(5 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mission_legs SET")).
		WithArgs("Oran", "Tlemcen", dd, da, "VOITURE", uint64(10), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	l := model.MissionLeg{
		ID:          10,
		OrderID:     3,
		LieuDepart:  "Oran",
		LieuArrivee: "Tlemcen",
		DateDepart:  dd,
		DateArrivee: da,
		Transport:   model.TransportVoiture,
	}
	if err := repo.UpdateLeg(context.Background(), &l); err != nil {
		t.Fatalf("UpdateLeg: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMissionLegGetScopedToOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	dd := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	cols := []string{"id", "order_id", "lieu_depart", "lieu_arrivee", "date_depart", "date_arrivee", "transport"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM mission_legs WHERE id=? AND order_id=?")).
		WithArgs(uint64(10), uint64(3)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(10, 3, "Alger", "Oran", dd, dd.Add(5*time.Hour), "TRAIN"))

	l, err := repo.GetLeg(context.Background(), 3, 10)
	if err != nil {
		t.Fatalf("GetLeg: %v", err)
	}
	if l.ID != 10 || l.OrderID != 3 || l.Transport != model.TransportTrain {
		t.Fatalf("GetLeg: unexpected leg %+v", l)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM mission_legs WHERE id=? AND order_id=?")).
		WithArgs(uint64(10), uint64(4)).
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.GetLeg(context.Background(), 4, 10); err != ErrNotFound {
		t.Fatalf("GetLeg under wrong order: got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMissionLegDeleteScopedToOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mission_legs WHERE id=? AND order_id=?")).
		WithArgs(uint64(10), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.DeleteLeg(context.Background(), 3, 10); err != nil {
		t.Fatalf("DeleteLeg: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mission_legs WHERE id=? AND order_id=?")).
		WithArgs(uint64(10), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.DeleteLeg(context.Background(), 4, 10); err != ErrNotFound {
		t.Fatalf("DeleteLeg under wrong order: got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMissionDeleteMissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewMissionRepo(db, reference.NewAllocator())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mission_legs WHERE order_id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mission_orders WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := repo.Delete(context.Background(), 99); err != ErrNotFound {
		t.Fatalf("Delete: got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
