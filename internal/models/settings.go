// Package models defines the data structures shared between the tray daemon,
// its configuration files, and the control CLI.
package models

// Settings represents tray daemon settings.
// This corresponds to ~/.cloudtolocalllm/settings.yaml.
type Settings struct {
	Version       int                 `yaml:"version"`
	LogLevel      string              `yaml:"log_level"` // "debug" | "info" | "warn" | "error"
	Notifications NotificationsConfig `yaml:"notifications"`
}

// NotificationsConfig holds desktop notification settings.
type NotificationsConfig struct {
	Enabled        bool `yaml:"enabled"`
	OnTunnelChange bool `yaml:"on_tunnel_change"`
	OnLlmChange    bool `yaml:"on_llm_change"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:  1,
		LogLevel: "info",
		Notifications: NotificationsConfig{
			Enabled:        true,
			OnTunnelChange: true,
			OnLlmChange:    false,
		},
	}
}
