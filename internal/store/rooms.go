package store

import (
	"context"
	"database/sql"
)

// GetAllRooms lists every room, main room first.
func (s *Store) GetAllRooms(ctx context.Context) ([]Room, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, slug, name, tilemap_key, width_tiles, height_tiles, tile_size,
       default_spawn_x, default_spawn_y, is_main
FROM rooms
ORDER BY is_main DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.Slug, &r.Name, &r.TilemapKey, &r.WidthTiles, &r.HeightTiles,
			&r.TileSize, &r.DefaultSpawnX, &r.DefaultSpawnY, &r.IsMain); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRoom returns a room by slug with its buildings and spawn points.
func (s *Store) GetRoom(ctx context.Context, slug string) (Room, error) {
	var r Room
	err := s.DB.QueryRowContext(ctx, `
SELECT id, slug, name, tilemap_key, width_tiles, height_tiles, tile_size,
       default_spawn_x, default_spawn_y, is_main
FROM rooms WHERE slug = $1`, slug,
	).Scan(&r.ID, &r.Slug, &r.Name, &r.TilemapKey, &r.WidthTiles, &r.HeightTiles,
		&r.TileSize, &r.DefaultSpawnX, &r.DefaultSpawnY, &r.IsMain)
	if err != nil {
		return Room{}, err
	}

	if r.Buildings, err = s.roomBuildings(ctx, r.ID); err != nil {
		return Room{}, err
	}
	if r.SpawnPoints, err = s.roomSpawnPoints(ctx, r.ID); err != nil {
		return Room{}, err
	}
	return r, nil
}

// GetMainRoom returns the starting room.
func (s *Store) GetMainRoom(ctx context.Context) (Room, error) {
	var slug string
	if err := s.DB.QueryRowContext(ctx, `SELECT slug FROM rooms WHERE is_main = true LIMIT 1`).Scan(&slug); err != nil {
		return Room{}, err
	}
	return s.GetRoom(ctx, slug)
}

func (s *Store) roomBuildings(ctx context.Context, roomID string) ([]Building, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT b.id, b.name, b.type, b.x, b.y, b.width, b.height,
       b.door_x, b.door_y, b.door_width, b.door_height,
       b.trigger_message, b.jitsi_room,
       a.slug, tr.slug
FROM buildings b
LEFT JOIN agents a ON b.agent_id = a.id
LEFT JOIN rooms tr ON b.target_room_id = tr.id
WHERE b.room_id = $1 AND b.is_active = true`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Building
	for rows.Next() {
		var (
			b                                     Building
			trigger, jitsi, agentSlug, targetSlug sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Type, &b.X, &b.Y, &b.Width, &b.Height,
			&b.DoorX, &b.DoorY, &b.DoorWidth, &b.DoorHeight,
			&trigger, &jitsi, &agentSlug, &targetSlug); err != nil {
			return nil, err
		}
		b.TriggerMessage = trigger.String
		b.JitsiRoom = jitsi.String
		b.AgentSlug = agentSlug.String
		b.TargetRoomSlug = targetSlug.String
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) roomSpawnPoints(ctx context.Context, roomID string) ([]SpawnPoint, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT sp.id, sp.x, sp.y, sp.type, sp.direction, sp.priority, a.slug
FROM spawn_points sp
LEFT JOIN agents a ON sp.agent_id = a.id
WHERE sp.room_id = $1
ORDER BY sp.priority, sp.type`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SpawnPoint
	for rows.Next() {
		var (
			sp        SpawnPoint
			agentSlug sql.NullString
		)
		if err := rows.Scan(&sp.ID, &sp.X, &sp.Y, &sp.Type, &sp.Direction, &sp.Priority, &agentSlug); err != nil {
			return nil, err
		}
		sp.AgentSlug = agentSlug.String
		out = append(out, sp)
	}
	return out, rows.Err()
}
