package config

import (
	"os"
	"runtime"
	"testing"

	"github.com/thrightguy/CloudToLocalLLM/internal/models"
)

// useTempHome points the per-user directory at a fresh temp dir.
func useTempHome(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test drives paths through HOME")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestSaveAndLoadDaemonInfo(t *testing.T) {
	useTempHome(t)

	info := models.NewDaemonInfo("localhost", 47113, os.Getpid())
	if err := SaveDaemonInfo(info); err != nil {
		t.Fatalf("SaveDaemonInfo() error = %v", err)
	}

	loaded, err := LoadDaemonInfo()
	if err != nil {
		t.Fatalf("LoadDaemonInfo() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadDaemonInfo() = nil after save")
	}
	if loaded.Host != "localhost" || loaded.Port != 47113 || loaded.PID != os.Getpid() {
		t.Errorf("loaded = %+v", loaded)
	}

	// The legacy port file mirrors the bridge port.
	port, err := ReadPortFile()
	if err != nil {
		t.Fatalf("ReadPortFile() error = %v", err)
	}
	if port != 47113 {
		t.Errorf("port file = %d, want 47113", port)
	}
}

func TestLoadDaemonInfoMissing(t *testing.T) {
	useTempHome(t)

	info, err := LoadDaemonInfo()
	if err != nil {
		t.Fatalf("LoadDaemonInfo() error = %v", err)
	}
	if info != nil {
		t.Errorf("LoadDaemonInfo() = %+v, want nil", info)
	}
}

func TestRemoveDaemonInfo(t *testing.T) {
	useTempHome(t)

	info := models.NewDaemonInfo("localhost", 1234, os.Getpid())
	if err := SaveDaemonInfo(info); err != nil {
		t.Fatalf("SaveDaemonInfo() error = %v", err)
	}
	if err := RemoveDaemonInfo(); err != nil {
		t.Fatalf("RemoveDaemonInfo() error = %v", err)
	}

	loaded, err := LoadDaemonInfo()
	if err != nil || loaded != nil {
		t.Errorf("after remove: info = %+v, err = %v", loaded, err)
	}
	if _, err := ReadPortFile(); err == nil {
		t.Error("port file survived RemoveDaemonInfo")
	}

	// Removing again is fine.
	if err := RemoveDaemonInfo(); err != nil {
		t.Errorf("second RemoveDaemonInfo() error = %v", err)
	}
}

func TestIsDaemonRunning(t *testing.T) {
	useTempHome(t)

	// No info file at all.
	running, _, err := IsDaemonRunning()
	if err != nil {
		t.Fatalf("IsDaemonRunning() error = %v", err)
	}
	if running {
		t.Error("running = true with no daemon info")
	}

	// Our own PID is alive.
	if err := SaveDaemonInfo(models.NewDaemonInfo("localhost", 1234, os.Getpid())); err != nil {
		t.Fatal(err)
	}
	running, info, err := IsDaemonRunning()
	if err != nil {
		t.Fatalf("IsDaemonRunning() error = %v", err)
	}
	if !running || info == nil || info.PID != os.Getpid() {
		t.Errorf("running = %v, info = %+v", running, info)
	}
}

func TestIsDaemonRunningCleansStaleInfo(t *testing.T) {
	useTempHome(t)

	// PIDs roll over well below this on every supported platform.
	if err := SaveDaemonInfo(models.NewDaemonInfo("localhost", 1234, 1<<22+12345)); err != nil {
		t.Fatal(err)
	}

	running, _, err := IsDaemonRunning()
	if err != nil {
		t.Fatalf("IsDaemonRunning() error = %v", err)
	}
	if running {
		t.Error("running = true for a dead PID")
	}

	info, err := LoadDaemonInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info != nil {
		t.Error("stale daemon info not cleaned up")
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	useTempHome(t)

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if settings.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", settings.LogLevel)
	}
	if !settings.Notifications.Enabled {
		t.Error("notifications disabled by default")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	useTempHome(t)

	settings := models.NewSettings()
	settings.LogLevel = "debug"
	settings.Notifications.OnLlmChange = true
	if err := SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if loaded.LogLevel != "debug" || !loaded.Notifications.OnLlmChange {
		t.Errorf("loaded = %+v", loaded)
	}
}
