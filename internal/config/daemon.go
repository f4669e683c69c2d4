package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/thrightguy/CloudToLocalLLM/internal/models"
)

// LoadDaemonInfo loads the daemon connection info from daemon.yaml.
// Returns nil if the file doesn't exist.
func LoadDaemonInfo() (*models.DaemonInfo, error) {
	path, err := DaemonFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}
	return LoadYAML[models.DaemonInfo](path)
}

// SaveDaemonInfo saves the daemon connection info to daemon.yaml and mirrors
// the port into the legacy tray_port file read by older host builds.
func SaveDaemonInfo(info *models.DaemonInfo) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	path, err := DaemonFile()
	if err != nil {
		return err
	}
	if err := SaveYAML(path, info); err != nil {
		return err
	}

	portPath, err := PortFile()
	if err != nil {
		return err
	}
	return os.WriteFile(portPath, []byte(strconv.Itoa(info.Port)), 0o644)
}

// RemoveDaemonInfo removes the daemon.yaml and tray_port files.
func RemoveDaemonInfo() error {
	path, err := DaemonFile()
	if err != nil {
		return err
	}
	if portPath, perr := PortFile(); perr == nil {
		_ = os.Remove(portPath)
	}

	if !FileExists(path) {
		return nil
	}
	return os.Remove(path)
}

// ReadPortFile reads the bridge port from the legacy tray_port file.
func ReadPortFile() (int, error) {
	path, err := PortFile()
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid port file %s: %w", path, err)
	}
	return port, nil
}

// IsDaemonRunning checks if the tray daemon process is still running.
// Returns true if daemon.yaml exists and the PID is alive.
func IsDaemonRunning() (bool, *models.DaemonInfo, error) {
	info, err := LoadDaemonInfo()
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		// On Unix, FindProcess always succeeds
		return false, info, nil
	}

	// Send signal 0 to check if process exists
	err = process.Signal(syscall.Signal(0))
	if err != nil {
		// Process doesn't exist, clean up stale file
		_ = RemoveDaemonInfo()
		return false, info, nil
	}

	return true, info, nil
}
