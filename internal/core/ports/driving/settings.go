package driving

import "github.com/custodia-labs/docchat-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// GetSettings returns the current settings with defaults applied.
	GetSettings() (domain.AppSettings, error)

	// UpdateSettings persists the given settings.
	UpdateSettings(settings domain.AppSettings) error

	// SetValue sets a single configuration value by dot-notation key.
	SetValue(key string, value any) error
}
