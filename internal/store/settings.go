package store

import (
	"context"
	"database/sql"
)

// SettingsUpdate carries partial settings; nil fields keep stored values.
type SettingsUpdate struct {
	AudioEnabled     *bool
	VideoEnabled     *bool
	Volume           *int
	Theme            string
	ShowPlayerNames  *bool
	PreferredAIModel string
	ModelTemperature *float64
}

// GetUserSettings returns a user's settings, sql.ErrNoRows when unset.
func (s *Store) GetUserSettings(ctx context.Context, userID string) (Settings, error) {
	var st Settings
	err := s.DB.QueryRowContext(ctx, `
SELECT user_id, audio_enabled, video_enabled, volume, theme,
       show_player_names, preferred_ai_model, model_temperature, updated_at
FROM user_settings WHERE user_id = $1`, userID,
	).Scan(&st.UserID, &st.AudioEnabled, &st.VideoEnabled, &st.Volume, &st.Theme,
		&st.ShowPlayerNames, &st.PreferredAIModel, &st.ModelTemperature, &st.UpdatedAt)
	return st, err
}

// UpsertUserSettings creates or patches a settings row, applying
// defaults for fields never set before.
func (s *Store) UpsertUserSettings(ctx context.Context, userID string, upd SettingsUpdate) (Settings, error) {
	var st Settings
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO user_settings (
    user_id, audio_enabled, video_enabled, volume, theme,
    show_player_names, preferred_ai_model, model_temperature
)
VALUES ($1,
        COALESCE($2, true),
        COALESCE($3, true),
        COALESCE($4, 100),
        COALESCE($5, 'dark'),
        COALESCE($6, true),
        COALESCE($7, 'anthropic/claude-3.5-haiku'),
        COALESCE($8, 0.7)
)
ON CONFLICT (user_id) DO UPDATE SET
    audio_enabled = COALESCE($2, user_settings.audio_enabled),
    video_enabled = COALESCE($3, user_settings.video_enabled),
    volume = COALESCE($4, user_settings.volume),
    theme = COALESCE($5, user_settings.theme),
    show_player_names = COALESCE($6, user_settings.show_player_names),
    preferred_ai_model = COALESCE($7, user_settings.preferred_ai_model),
    model_temperature = COALESCE($8, user_settings.model_temperature),
    updated_at = NOW()
RETURNING user_id, audio_enabled, video_enabled, volume, theme,
          show_player_names, preferred_ai_model, model_temperature, updated_at`,
		userID, nullableBool(upd.AudioEnabled), nullableBool(upd.VideoEnabled),
		nullableInt(upd.Volume), nullableString(upd.Theme), nullableBool(upd.ShowPlayerNames),
		nullableString(upd.PreferredAIModel), nullableFloat(upd.ModelTemperature),
	).Scan(&st.UserID, &st.AudioEnabled, &st.VideoEnabled, &st.Volume, &st.Theme,
		&st.ShowPlayerNames, &st.PreferredAIModel, &st.ModelTemperature, &st.UpdatedAt)
	return st, err
}

func nullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
