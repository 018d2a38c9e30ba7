package store

import (
	"context"
	"database/sql"
)

// CreateAnonymousUser inserts a fresh anonymous user.
func (s *Store) CreateAnonymousUser(ctx context.Context, displayName, avatarSprite string) (User, error) {
	var u User
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO users (display_name, avatar_sprite, is_anonymous)
VALUES ($1, $2, true)
RETURNING id, display_name, avatar_sprite, is_anonymous, created_at`,
		displayName, avatarSprite,
	).Scan(&u.ID, &u.DisplayName, &u.AvatarSprite, &u.IsAnonymous, &u.CreatedAt)
	return u, err
}

// CreateAccountUser inserts a registered user with credentials.
func (s *Store) CreateAccountUser(ctx context.Context, displayName, avatarSprite, email, passwordHash string) (User, error) {
	var u User
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO users (display_name, avatar_sprite, email, password_hash, is_anonymous)
VALUES ($1, $2, $3, $4, false)
RETURNING id, display_name, avatar_sprite, email, is_anonymous, created_at`,
		displayName, avatarSprite, email, passwordHash,
	).Scan(&u.ID, &u.DisplayName, &u.AvatarSprite, &u.Email, &u.IsAnonymous, &u.CreatedAt)
	return u, err
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, userID string) (User, error) {
	var (
		u        User
		email    sql.NullString
		lastSeen sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, `
SELECT id, display_name, avatar_sprite, email, is_anonymous, is_admin, created_at, last_seen_at
FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.DisplayName, &u.AvatarSprite, &email, &u.IsAnonymous, &u.IsAdmin, &u.CreatedAt, &lastSeen)
	if err != nil {
		return User{}, err
	}
	if email.Valid {
		u.Email = email.String
	}
	if lastSeen.Valid {
		t := lastSeen.Time
		u.LastSeenAt = &t
	}
	return u, nil
}

// GetUserByEmail returns a registered user's id and password hash.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (id string, hash string, err error) {
	err = s.DB.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email = $1 AND is_anonymous = false`, email).Scan(&id, &hash)
	return
}

// UpdateUser patches display name and avatar, keeping unset fields.
func (s *Store) UpdateUser(ctx context.Context, userID, displayName, avatarSprite string) (User, error) {
	var u User
	err := s.DB.QueryRowContext(ctx, `
UPDATE users
SET display_name = COALESCE(NULLIF($2, ''), display_name),
    avatar_sprite = COALESCE(NULLIF($3, ''), avatar_sprite),
    updated_at = NOW()
WHERE id = $1
RETURNING id, display_name, avatar_sprite, is_anonymous`,
		userID, displayName, avatarSprite,
	).Scan(&u.ID, &u.DisplayName, &u.AvatarSprite, &u.IsAnonymous)
	return u, err
}

// TouchUserLastSeen bumps the last seen timestamp.
func (s *Store) TouchUserLastSeen(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE users SET last_seen_at = NOW() WHERE id = $1`, userID)
	return err
}
