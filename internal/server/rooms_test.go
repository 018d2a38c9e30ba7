package server

import (
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/ArkMaster123/arkagentic/internal/store"
)

func newRoomsHandler(t *testing.T) (*RoomsHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	h := &RoomsHandler{Store: &store.Store{DB: db}, Logger: log.New(io.Discard, "", 0)}
	return h, mock, func() { db.Close() }
}

func TestUpdatePresenceMovesPlayer(t *testing.T) {
	e := echo.New()
	h, mock, done := newRoomsHandler(t)
	defer done()

	mock.ExpectQuery(`INSERT INTO player_presence`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "room_id", "x", "y", "direction", "status", "last_update"}).
			AddRow("u-1", "room-1", 5, 7, "down", "online", time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/api/presence", strings.NewReader(`{"x":5,"y":7,"direction":"down"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "u-1")

	if err := h.updatePresence(ctx); err != nil {
		t.Fatalf("updatePresence: %v", err)
	}

	var p store.Presence
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.X != 5 || p.Y != 7 || p.Status != "online" {
		t.Fatalf("unexpected presence: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdatePresenceUnknownRoom(t *testing.T) {
	e := echo.New()
	h, mock, done := newRoomsHandler(t)
	defer done()

	mock.ExpectQuery(`FROM rooms WHERE slug`).
		WithArgs("atlantis").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodPost, "/api/presence", strings.NewReader(`{"room_slug":"atlantis"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "u-1")

	err := h.updatePresence(ctx)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %v", err)
	}
}

func TestGoOffline(t *testing.T) {
	e := echo.New()
	h, mock, done := newRoomsHandler(t)
	defer done()

	mock.ExpectExec(`UPDATE player_presence SET status = 'offline'`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE player_presence`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/presence/offline", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "u-1")

	if err := h.goOffline(ctx); err != nil {
		t.Fatalf("goOffline: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
