package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// Store wraps the Postgres connection for all persistence.
type Store struct {
	DB *sql.DB
}

// Presence statuses.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Chat session types.
const (
	SessionTypeAgent   = "agent"
	SessionTypePrivate = "private"
)

// User is a registered or anonymous visitor.
type User struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	AvatarSprite string     `json:"avatar_sprite"`
	Email        string     `json:"email,omitempty"`
	IsAnonymous  bool       `json:"is_anonymous"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

// ChatSession groups messages between a user and an agent or another user.
type ChatSession struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	UserID        string     `json:"user_id"`
	AgentID       string     `json:"agent_id,omitempty"`
	OtherUserID   string     `json:"other_user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// SessionSummary is a chat session row enriched for listing.
type SessionSummary struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	CreatedAt     time.Time  `json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	AgentSlug     string     `json:"agent_slug,omitempty"`
	AgentName     string     `json:"agent_name,omitempty"`
	AgentEmoji    string     `json:"agent_emoji,omitempty"`
	OtherUserName string     `json:"other_user_name,omitempty"`
}

// ChatMessage is one message inside a session.
type ChatMessage struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	SenderType string    `json:"sender_type"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Room is one walkable map in the world.
type Room struct {
	ID            string       `json:"id"`
	Slug          string       `json:"slug"`
	Name          string       `json:"name"`
	TilemapKey    string       `json:"tilemap_key"`
	WidthTiles    int          `json:"width_tiles"`
	HeightTiles   int          `json:"height_tiles"`
	TileSize      int          `json:"tile_size"`
	DefaultSpawnX int          `json:"default_spawn_x"`
	DefaultSpawnY int          `json:"default_spawn_y"`
	IsMain        bool         `json:"is_main"`
	Buildings     []Building   `json:"buildings,omitempty"`
	SpawnPoints   []SpawnPoint `json:"spawn_points,omitempty"`
}

// Building is an interactive structure within a room.
type Building struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	DoorX          int    `json:"door_x"`
	DoorY          int    `json:"door_y"`
	DoorWidth      int    `json:"door_width"`
	DoorHeight     int    `json:"door_height"`
	TriggerMessage string `json:"trigger_message,omitempty"`
	JitsiRoom      string `json:"jitsi_room,omitempty"`
	AgentSlug      string `json:"agent_slug,omitempty"`
	TargetRoomSlug string `json:"target_room_slug,omitempty"`
}

// SpawnPoint is a placement marker within a room.
type SpawnPoint struct {
	ID        string `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Priority  int    `json:"priority"`
	AgentSlug string `json:"agent_slug,omitempty"`
}

// Presence is a player's live position and status.
type Presence struct {
	UserID     string    `json:"user_id"`
	RoomID     string    `json:"room_id,omitempty"`
	X          int       `json:"x"`
	Y          int       `json:"y"`
	Direction  string    `json:"direction"`
	Status     string    `json:"status"`
	LastUpdate time.Time `json:"last_update"`
}

// RoomPlayer is a presence row joined with the user profile.
type RoomPlayer struct {
	UserID       string    `json:"user_id"`
	X            int       `json:"x"`
	Y            int       `json:"y"`
	Direction    string    `json:"direction"`
	Status       string    `json:"status"`
	LastUpdate   time.Time `json:"last_update"`
	DisplayName  string    `json:"display_name"`
	AvatarSprite string    `json:"avatar_sprite"`
}

// Settings holds the per-user preferences.
type Settings struct {
	UserID           string    `json:"user_id"`
	AudioEnabled     bool      `json:"audio_enabled"`
	VideoEnabled     bool      `json:"video_enabled"`
	Volume           int       `json:"volume"`
	Theme            string    `json:"theme"`
	ShowPlayerNames  bool      `json:"show_player_names"`
	PreferredAIModel string    `json:"preferred_ai_model"`
	ModelTemperature float64   `json:"model_temperature"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewWithDSN constructs the Store using an explicit Postgres DSN.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
