// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DirName is the name of the per-user CloudToLocalLLM directory.
const DirName = ".cloudtolocalllm"

// File names inside the CloudToLocalLLM directory.
const (
	DaemonFileName   = "daemon.yaml"
	SettingsFileName = "settings.yaml"
	LogFileName      = "tray.log"

	// PortFileName is the legacy plain-text port file written alongside
	// daemon.yaml. Older host builds discover the bridge endpoint by
	// reading this file.
	PortFileName = "tray_port"

	// IconsDirName holds user-provided tray icon assets. Paths in here are
	// part of the icon fallback chain.
	IconsDirName = "icons"
)

// Dir returns the path to the per-user CloudToLocalLLM directory.
// On Windows this is %LOCALAPPDATA%\CloudToLocalLLM, elsewhere ~/.cloudtolocalllm.
func Dir() (string, error) {
	if runtime.GOOS == "windows" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(filepath.Dir(base), "CloudToLocalLLM"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// DaemonFile returns the path to the daemon.yaml file.
func DaemonFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DaemonFileName), nil
}

// PortFile returns the path to the legacy tray_port file.
func PortFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PortFileName), nil
}

// SettingsFile returns the path to the settings.yaml file.
func SettingsFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// LogFile returns the path to the tray daemon log file.
func LogFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}

// IconsDir returns the path to the user icon assets directory.
func IconsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, IconsDirName), nil
}

// EnsureDir creates the CloudToLocalLLM directory if it doesn't exist.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
