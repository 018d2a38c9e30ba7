package store

import (
	"context"
	"database/sql"
	"encoding/json"
)

// GetOrCreateAgentSession finds the most recent active session between
// a user and an agent persona, creating one when none exists.
func (s *Store) GetOrCreateAgentSession(ctx context.Context, userID, agentID string) (ChatSession, error) {
	var (
		cs      ChatSession
		lastMsg sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, `
SELECT id, type, user_id, agent_id, created_at, last_message_at
FROM chat_sessions
WHERE user_id = $1 AND agent_id = $2 AND type = 'agent' AND is_active = true
ORDER BY last_message_at DESC NULLS LAST
LIMIT 1`, userID, agentID,
	).Scan(&cs.ID, &cs.Type, &cs.UserID, &cs.AgentID, &cs.CreatedAt, &lastMsg)
	if err == nil {
		if lastMsg.Valid {
			t := lastMsg.Time
			cs.LastMessageAt = &t
		}
		return cs, nil
	}
	if err != sql.ErrNoRows {
		return ChatSession{}, err
	}

	err = s.DB.QueryRowContext(ctx, `
INSERT INTO chat_sessions (type, user_id, agent_id)
VALUES ('agent', $1, $2)
RETURNING id, type, user_id, agent_id, created_at`, userID, agentID,
	).Scan(&cs.ID, &cs.Type, &cs.UserID, &cs.AgentID, &cs.CreatedAt)
	return cs, err
}

// GetChatSession fetches a single session row by id.
func (s *Store) GetChatSession(ctx context.Context, sessionID string) (ChatSession, error) {
	var (
		cs      ChatSession
		agentID sql.NullString
		lastMsg sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, `
SELECT id, type, user_id, agent_id, created_at, last_message_at
FROM chat_sessions WHERE id = $1`, sessionID,
	).Scan(&cs.ID, &cs.Type, &cs.UserID, &agentID, &cs.CreatedAt, &lastMsg)
	if err != nil {
		return ChatSession{}, err
	}
	cs.AgentID = agentID.String
	if lastMsg.Valid {
		t := lastMsg.Time
		cs.LastMessageAt = &t
	}
	return cs, nil
}

// AddChatMessage appends a message and bumps the session timestamp.
func (s *Store) AddChatMessage(ctx context.Context, sessionID, senderType, senderID, senderName, content string, metadata map[string]any) (ChatMessage, error) {
	meta := []byte("{}")
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return ChatMessage{}, err
		}
		meta = b
	}

	var m ChatMessage
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO chat_messages (session_id, sender_type, sender_id, sender_name, content, metadata)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, session_id, sender_type, sender_id, sender_name, content, created_at`,
		sessionID, senderType, senderID, senderName, content, meta,
	).Scan(&m.ID, &m.SessionID, &m.SenderType, &m.SenderID, &m.SenderName, &m.Content, &m.CreatedAt)
	if err != nil {
		return ChatMessage{}, err
	}

	_, err = s.DB.ExecContext(ctx, `UPDATE chat_sessions SET last_message_at = NOW() WHERE id = $1`, sessionID)
	return m, err
}

// GetChatMessages returns up to limit messages in chronological order,
// optionally only those before a given message id.
func (s *Store) GetChatMessages(ctx context.Context, sessionID string, limit int, beforeID string) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if beforeID != "" {
		rows, err = s.DB.QueryContext(ctx, `
SELECT id, sender_type, sender_id, sender_name, content, created_at
FROM chat_messages
WHERE session_id = $1 AND id < $2
ORDER BY created_at DESC
LIMIT $3`, sessionID, beforeID, limit)
	} else {
		rows, err = s.DB.QueryContext(ctx, `
SELECT id, sender_type, sender_id, sender_name, content, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2`, sessionID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		m.SessionID = sessionID
		if err := rows.Scan(&m.ID, &m.SenderType, &m.SenderID, &m.SenderName, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows come newest first; flip to chronological.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// GetUserChatSessions lists a user's recent sessions with agent and
// counterpart details.
func (s *Store) GetUserChatSessions(ctx context.Context, userID string, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT cs.id, cs.type, cs.created_at, cs.last_message_at,
       a.slug, a.name, a.emoji,
       u.display_name
FROM chat_sessions cs
LEFT JOIN agents a ON cs.agent_id = a.slug
LEFT JOIN users u ON cs.other_user_id = u.id
WHERE cs.user_id = $1 AND cs.is_active = true
ORDER BY cs.last_message_at DESC NULLS LAST
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			ss                           SessionSummary
			lastMsg                      sql.NullTime
			slug, name, emoji, otherName sql.NullString
		)
		if err := rows.Scan(&ss.ID, &ss.Type, &ss.CreatedAt, &lastMsg, &slug, &name, &emoji, &otherName); err != nil {
			return nil, err
		}
		if lastMsg.Valid {
			t := lastMsg.Time
			ss.LastMessageAt = &t
		}
		ss.AgentSlug = slug.String
		ss.AgentName = name.String
		ss.AgentEmoji = emoji.String
		ss.OtherUserName = otherName.String
		out = append(out, ss)
	}
	return out, rows.Err()
}
