package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestCreateAnonymousUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	now := time.Now()
	query := regexp.QuoteMeta(`
INSERT INTO users (display_name, avatar_sprite, is_anonymous)
VALUES ($1, $2, true)
RETURNING id, display_name, avatar_sprite, is_anonymous, created_at`)
	mock.ExpectQuery(query).
		WithArgs("Wanderer", "brendan").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "avatar_sprite", "is_anonymous", "created_at"}).
			AddRow("u1", "Wanderer", "brendan", true, now))

	u, err := st.CreateAnonymousUser(context.Background(), "Wanderer", "brendan")
	if err != nil {
		t.Fatalf("CreateAnonymousUser: %v", err)
	}
	if u.ID != "u1" || !u.IsAnonymous {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetUserNullFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	query := regexp.QuoteMeta(`
SELECT id, display_name, avatar_sprite, email, is_anonymous, is_admin, created_at, last_seen_at
FROM users WHERE id = $1`)
	mock.ExpectQuery(query).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "avatar_sprite", "email", "is_anonymous", "is_admin", "created_at", "last_seen_at"}).
			AddRow("u1", "Wanderer", "brendan", nil, true, false, time.Now(), nil))

	u, err := st.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Email != "" || u.LastSeenAt != nil {
		t.Fatalf("null columns should stay zero: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateUserKeepsUnsetFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs("u1", "NewName", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "avatar_sprite", "is_anonymous"}).
			AddRow("u1", "NewName", "brendan", true))

	u, err := st.UpdateUser(context.Background(), "u1", "NewName", "")
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.AvatarSprite != "brendan" {
		t.Fatalf("avatar should be untouched: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
