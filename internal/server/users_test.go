package server

import (
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
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArkMaster123/arkagentic/internal/store"
)

func newUsersHandler(t *testing.T) (*UsersHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	h := &UsersHandler{
		Store:  &store.Store{DB: db},
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Logger: log.New(io.Discard, "", 0),
	}
	return h, mock, func() { db.Close() }
}

func TestCreateAnonymousUser(t *testing.T) {
	e := echo.New()
	h, mock, done := newUsersHandler(t)
	defer done()

	mock.ExpectQuery(`INSERT INTO users \(display_name, avatar_sprite, is_anonymous\)`).
		WithArgs("Wanderer", "default").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "avatar_sprite", "is_anonymous", "created_at"}).
			AddRow("u-1", "Wanderer", "default", true, time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"display_name":"Wanderer"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.createAnonymous(e.NewContext(req, rec)); err != nil {
		t.Fatalf("createAnonymous: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}

	var resp CreateUserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" || resp.SessionToken == "" {
		t.Fatalf("expected tokens in response: %+v", resp)
	}
	if resp.User.ID != "u-1" || !resp.User.IsAnonymous {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateAnonymousUserRequiresName(t *testing.T) {
	e := echo.New()
	h, _, done := newUsersHandler(t)
	defer done()

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.createAnonymous(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := echo.New()
	h, mock, done := newUsersHandler(t)
	defer done()

	mock.ExpectQuery(`INSERT INTO users \(display_name, avatar_sprite, email, password_hash, is_anonymous\)`).
		WillReturnError(&pq.Error{Code: "23505"})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"email":"ada@example.com","password":"longenough"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.signup(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %v", err)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	e := echo.New()
	h, _, done := newUsersHandler(t)
	defer done()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"email":"ada@example.com","password":"short"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.signup(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %v", err)
	}
}

func TestLoginSuccessSetsCookie(t *testing.T) {
	e := echo.New()
	h, mock, done := newUsersHandler(t)
	defer done()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	now := time.Now()
	mock.ExpectQuery(`SELECT id, password_hash FROM users WHERE email`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow("u-1", string(hash)))
	mock.ExpectQuery(`SELECT id, display_name, avatar_sprite, email, is_anonymous`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "avatar_sprite", "email", "is_anonymous", "is_admin", "created_at", "last_seen_at"}).
			AddRow("u-1", "Ada", "default", "ada@example.com", false, false, now, nil))
	mock.ExpectExec(`UPDATE users SET last_seen_at`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"Ada@Example.com","password":"correct horse"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	cookieSet := false
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "auth" && ck.Value != "" {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Fatalf("auth cookie not set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e := echo.New()
	h, mock, done := newUsersHandler(t)
	defer done()

	hash, err := bcrypt.GenerateFromPassword([]byte("the real one"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	mock.ExpectQuery(`SELECT id, password_hash FROM users WHERE email`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow("u-1", string(hash)))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"a wrong guess"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err = h.login(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %v", err)
	}
}
