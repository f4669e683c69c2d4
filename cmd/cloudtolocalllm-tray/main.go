// Package main is the entry point for the cloudtolocalllm-tray daemon.
package main

import (
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/thrightguy/CloudToLocalLLM/internal/buildinfo"
	"github.com/thrightguy/CloudToLocalLLM/internal/config"
	"github.com/thrightguy/CloudToLocalLLM/internal/daemon"
	"github.com/thrightguy/CloudToLocalLLM/internal/models"
	"github.com/thrightguy/CloudToLocalLLM/internal/tray"
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (0 for dynamic allocation)")
	noTray := flag.Bool("no-tray", false, "Run without a tray icon (headless, for development)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := config.EnsureDir(); err != nil {
		logrus.Fatalf("Failed to create config directory: %v", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		logrus.Fatalf("Failed to load settings: %v", err)
	}

	log := newLogger(settings.LogLevel, *debug)

	// Write the defaults on first run so there is a file to edit and for the
	// hot-reload watcher to pick up.
	if path, err := config.SettingsFile(); err == nil && !config.FileExists(path) {
		if err := config.SaveSettings(settings); err != nil {
			log.WithError(err).Warn("failed to write default settings")
		}
	}

	running, info, err := config.IsDaemonRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Tray daemon already running on port %d (PID %d)", info.Port, info.PID)
	}

	iconsDir, err := config.IconsDir()
	if err != nil {
		log.Fatalf("Failed to resolve icons directory: %v", err)
	}
	fallbacks := tray.DefaultFallbacks(iconsDir)

	if *noTray {
		runHeadless(*port, fallbacks, settings, log)
	} else {
		runWithTray(*port, fallbacks, settings, log)
	}
}

// newLogger builds the daemon logger: the configured level (debug flag wins),
// written to both stderr and the log file when the file is writable.
func newLogger(level string, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else if parsed, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(parsed)
	}

	if path, err := config.LogFile(); err == nil {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			log.SetOutput(io.MultiWriter(os.Stderr, f))
		}
	}
	return log
}

// start brings the daemon up around an indicator: bind the call channel,
// publish discovery info, start serving and watching settings.
func start(d *daemon.Daemon, port int, log *logrus.Logger) {
	boundPort, err := d.Listen(port)
	if err != nil {
		log.Fatalf("Failed to bind call channel: %v", err)
	}

	daemonInfo := models.NewDaemonInfo("localhost", boundPort, os.Getpid())
	if err := config.SaveDaemonInfo(daemonInfo); err != nil {
		log.Fatalf("Failed to write daemon info: %v", err)
	}

	log.WithFields(logrus.Fields{
		"port":    boundPort,
		"pid":     os.Getpid(),
		"version": buildinfo.Version,
	}).Info("tray daemon started")

	go func() {
		if err := d.Server().Serve(); err != nil {
			log.WithError(err).Error("call channel stopped")
			d.Shutdown()
		}
	}()

	if w, err := daemon.WatchSettings(d, log); err != nil {
		log.WithError(err).Warn("settings hot reload disabled")
	} else {
		d.SetOnStop(func() { w.Close() })
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Infof("Received signal %v, shutting down", sig)
		d.Shutdown()
	}()
}

func cleanup(log *logrus.Logger) {
	if err := config.RemoveDaemonInfo(); err != nil {
		log.WithError(err).Warn("failed to remove daemon info")
	}
	log.Info("tray daemon stopped")
}

// runHeadless serves the call channel without a tray icon; menu and icon
// operations are accepted and tracked but render nowhere.
func runHeadless(port int, fallbacks []string, settings *models.Settings, log *logrus.Logger) {
	ctrl := tray.NewController(tray.NullIndicator{}, fallbacks, log)
	d := daemon.New(ctrl, settings, log)
	start(d, port, log)
	d.Run()
	cleanup(log)
}

// runWithTray runs the systray event loop on the main goroutine (Cocoa
// requires it) and the daemon loop beside it.
func runWithTray(port int, fallbacks []string, settings *models.Settings, log *logrus.Logger) {
	ind := tray.NewSystrayIndicator(log)
	ctrl := tray.NewController(ind, fallbacks, log)
	d := daemon.New(ctrl, settings, log)

	onReady := func() {
		start(d, port, log)
		go func() {
			d.Run()
			ind.Quit()
		}()
		// Show the generic glyph and built-in menu until the host's
		// first setIcon call.
		d.ShowInitialTray()
	}

	onExit := func() {
		d.Shutdown()
		cleanup(log)
	}

	ind.Run(onReady, onExit)
}
