package db

import (
	"context"
	"time"
)

// AdminSettings (Настройки): single row, id is always 1.
type AdminSettings struct {
	ID                    int64     `db:"id" json:"-"`
	ChatEnabled           bool      `db:"chat_enabled" json:"chatEnabled"`
	DirectDecisionEnabled bool      `db:"direct_decision_enabled" json:"directDecisionEnabled"`
	PrintEnabled          bool      `db:"print_enabled" json:"printEnabled"`
	ExportEnabled         bool      `db:"export_enabled" json:"exportEnabled"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// GetSettings returns the settings row, creating it with defaults on
// first access so callers never see a missing row.
func (s *Storage) GetSettings(ctx context.Context) (*AdminSettings, error) {
	settings := &AdminSettings{}
	query := `
        INSERT INTO admin_settings (id) VALUES (1)
        ON CONFLICT (id) DO UPDATE SET id = admin_settings.id
        RETURNING id, chat_enabled, direct_decision_enabled, print_enabled, export_enabled, updated_at`
	err := s.db.GetContext(ctx, settings, query)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Storage) UpdateSettings(ctx context.Context, settings *AdminSettings) error {
	query := `
        INSERT INTO admin_settings (id, chat_enabled, direct_decision_enabled, print_enabled, export_enabled, updated_at)
        VALUES (1, $1, $2, $3, $4, NOW())
        ON CONFLICT (id) DO UPDATE SET
            chat_enabled = EXCLUDED.chat_enabled,
            direct_decision_enabled = EXCLUDED.direct_decision_enabled,
            print_enabled = EXCLUDED.print_enabled,
            export_enabled = EXCLUDED.export_enabled,
            updated_at = NOW()
        RETURNING updated_at`
	return s.db.QueryRowxContext(ctx, query,
		settings.ChatEnabled, settings.DirectDecisionEnabled,
		settings.PrintEnabled, settings.ExportEnabled).
		Scan(&settings.UpdatedAt)
}
