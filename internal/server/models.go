package server

import "github.com/ArkMaster123/arkagentic/internal/store"

// HTTPError is the unified error body every endpoint returns on failure.
type HTTPError struct {
	Error string `json:"error"`
}

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Message  string `json:"message"`
	Agent    string `json:"agent,omitempty"`
	ModelID  string `json:"model_id,omitempty"`
	UseSwarm *bool  `json:"use_swarm,omitempty"`
}

// ChatResponse is the envelope POST /chat returns, errors included.
type ChatResponse struct {
	Response   string   `json:"response"`
	Agent      string   `json:"agent"`
	AgentName  string   `json:"agent_name"`
	AgentEmoji string   `json:"agent_emoji"`
	Handoffs   []string `json:"handoffs"`
	Status     string   `json:"status"`
	SessionID  string   `json:"session_id,omitempty"`
}

// RouteRequest is the body of POST /route.
type RouteRequest struct {
	Message string `json:"message"`
}

// RouteResponse names the persona the router picked, without running it.
type RouteResponse struct {
	Agent      string `json:"agent"`
	AgentName  string `json:"agent_name"`
	AgentEmoji string `json:"agent_emoji"`
}

// HealthResponse reports liveness plus the orchestrator capability so a
// degraded swarm is visible to operators, not just a log line.
type HealthResponse struct {
	Status     string `json:"status"`
	Capability string `json:"capability"`
}

// StatsResponse is the accumulated LLM usage snapshot served by /stats.
type StatsResponse struct {
	TotalCost   float64            `json:"total_cost"`
	TotalTokens int64              `json:"total_tokens"`
	CostByModel map[string]float64 `json:"cost_by_model"`
	RunsByAgent map[string]int64   `json:"runs_by_agent"`
}

// AuthSignupRequest is the body of POST /api/auth/signup.
type AuthSignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// AuthLoginRequest is the body of POST /api/auth/login.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the signed JWT for Bearer flows.
type TokenResponse struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

// CreateUserRequest is the body of POST /api/users (anonymous visitors).
type CreateUserRequest struct {
	DisplayName  string `json:"display_name"`
	AvatarSprite string `json:"avatar_sprite,omitempty"`
}

// UpdateMeRequest is the body of PUT /api/me.
type UpdateMeRequest struct {
	DisplayName  string `json:"display_name,omitempty"`
	AvatarSprite string `json:"avatar_sprite,omitempty"`
}

// PresenceRequest is the body of POST /api/presence.
type PresenceRequest struct {
	RoomSlug     string `json:"room_slug,omitempty"`
	X            *int   `json:"x,omitempty"`
	Y            *int   `json:"y,omitempty"`
	Direction    string `json:"direction,omitempty"`
	Status       string `json:"status,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
}

// SettingsRequest is the body of PUT /api/me/settings; nil fields keep
// their stored values.
type SettingsRequest struct {
	AudioEnabled     *bool    `json:"audio_enabled,omitempty"`
	VideoEnabled     *bool    `json:"video_enabled,omitempty"`
	Volume           *int     `json:"volume,omitempty"`
	Theme            string   `json:"theme,omitempty"`
	ShowPlayerNames  *bool    `json:"show_player_names,omitempty"`
	PreferredAIModel string   `json:"preferred_ai_model,omitempty"`
	ModelTemperature *float64 `json:"model_temperature,omitempty"`
}

// SearchResponse is the result of GET /api/chat/search.
type SearchResponse struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

// SearchHit is one indexed message matching a search query.
type SearchHit struct {
	MessageID  string  `json:"message_id"`
	SessionID  string  `json:"session_id"`
	SenderName string  `json:"sender_name"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}
