package store

import (
	"context"
	"database/sql"
)

// PresenceUpdate carries the mutable presence fields; nil/empty fields
// keep their stored values.
type PresenceUpdate struct {
	RoomID       string
	X            *int
	Y            *int
	Direction    string
	Status       string
	SessionToken string
}

// UpsertPresence inserts or refreshes a player's presence row.
func (s *Store) UpsertPresence(ctx context.Context, userID string, upd PresenceUpdate) (Presence, error) {
	status := upd.Status
	if status == "" {
		status = StatusOnline
	}

	var (
		p      Presence
		roomID sql.NullString
		x, y   sql.NullInt64
		dir    sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO player_presence (user_id, room_id, x, y, direction, status, session_token, connected_at, last_update)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE SET
    room_id = COALESCE($2, player_presence.room_id),
    x = COALESCE($3, player_presence.x),
    y = COALESCE($4, player_presence.y),
    direction = COALESCE($5, player_presence.direction),
    status = $6,
    session_token = COALESCE($7, player_presence.session_token),
    last_update = NOW()
RETURNING user_id, room_id, x, y, direction, status, last_update`,
		userID, nullableString(upd.RoomID), nullableInt(upd.X), nullableInt(upd.Y),
		nullableString(upd.Direction), status, nullableString(upd.SessionToken),
	).Scan(&p.UserID, &roomID, &x, &y, &dir, &p.Status, &p.LastUpdate)
	if err != nil {
		return Presence{}, err
	}
	p.RoomID = roomID.String
	p.X = int(x.Int64)
	p.Y = int(y.Int64)
	p.Direction = dir.String
	return p, nil
}

// GetPlayersInRoom lists the online players in one room.
func (s *Store) GetPlayersInRoom(ctx context.Context, roomID string) ([]RoomPlayer, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT pp.user_id, pp.x, pp.y, pp.direction, pp.status, pp.last_update,
       u.display_name, u.avatar_sprite
FROM player_presence pp
JOIN users u ON pp.user_id = u.id
WHERE pp.room_id = $1 AND pp.status = 'online'
ORDER BY pp.connected_at`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoomPlayer
	for rows.Next() {
		var (
			rp   RoomPlayer
			x, y sql.NullInt64
			dir  sql.NullString
		)
		if err := rows.Scan(&rp.UserID, &x, &y, &dir, &rp.Status, &rp.LastUpdate, &rp.DisplayName, &rp.AvatarSprite); err != nil {
			return nil, err
		}
		rp.X = int(x.Int64)
		rp.Y = int(y.Int64)
		rp.Direction = dir.String
		out = append(out, rp)
	}
	return out, rows.Err()
}

// SetPlayerOffline flips a player's presence status.
func (s *Store) SetPlayerOffline(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE player_presence SET status = 'offline' WHERE user_id = $1`, userID)
	return err
}

// ValidateSession checks a session token against the presence table.
func (s *Store) ValidateSession(ctx context.Context, userID, sessionToken string) (bool, error) {
	if userID == "" || sessionToken == "" {
		return false, nil
	}
	var one int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM player_presence WHERE user_id = $1 AND session_token = $2`, userID, sessionToken).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RefreshSession bumps a session's activity and marks the player online.
func (s *Store) RefreshSession(ctx context.Context, userID, sessionToken string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
UPDATE player_presence
SET last_update = NOW(), status = 'online'
WHERE user_id = $1 AND session_token = $2`, userID, sessionToken)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// InvalidateSession logs a user out everywhere.
func (s *Store) InvalidateSession(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx, `
UPDATE player_presence
SET session_token = NULL, status = 'offline'
WHERE user_id = $1`, userID)
	return err
}

// CleanupStaleSessions marks players offline when their presence has
// not been refreshed within the window. Returns rows affected.
func (s *Store) CleanupStaleSessions(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		olderThanDays = 30
	}
	res, err := s.DB.ExecContext(ctx, `
UPDATE player_presence
SET session_token = NULL, status = 'offline'
WHERE last_update < NOW() - ($1 || ' days')::interval
  AND status = 'online'`, olderThanDays)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
