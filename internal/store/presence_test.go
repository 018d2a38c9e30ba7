package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestUpsertPresence(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	x, y := 10, 20
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO player_presence`)).
		WithArgs("u1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "online", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "room_id", "x", "y", "direction", "status", "last_update"}).
			AddRow("u1", "r1", 10, 20, "down", "online", time.Now()))

	p, err := st.UpsertPresence(context.Background(), "u1", PresenceUpdate{RoomID: "r1", X: &x, Y: &y, Direction: "down"})
	if err != nil {
		t.Fatalf("UpsertPresence: %v", err)
	}
	if p.RoomID != "r1" || p.X != 10 || p.Y != 20 {
		t.Fatalf("unexpected presence: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestValidateSessionMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM player_presence`)).
		WithArgs("u1", "tok").
		WillReturnError(sql.ErrNoRows)

	ok, err := st.ValidateSession(context.Background(), "u1", "tok")
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if ok {
		t.Fatalf("expected invalid session")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestValidateSessionEmptyArgs(t *testing.T) {
	st := &Store{}
	ok, err := st.ValidateSession(context.Background(), "", "")
	if err != nil || ok {
		t.Fatalf("empty args must be invalid without touching the db")
	}
}

func TestCleanupStaleSessions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE player_presence`)).
		WithArgs(30).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := st.CleanupStaleSessions(context.Background(), 30)
	if err != nil {
		t.Fatalf("CleanupStaleSessions: %v", err)
	}
	if n != 4 {
		t.Fatalf("rows = %d, want 4", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
