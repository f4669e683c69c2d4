package daemon

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/thrightguy/CloudToLocalLLM/internal/config"
)

// reloadDelay coalesces the burst of write events most editors produce when
// saving a file.
const reloadDelay = 250 * time.Millisecond

// SettingsWatcher reloads settings.yaml when it changes on disk and hands the
// result to the daemon.
type SettingsWatcher struct {
	log     *logrus.Logger
	watcher *fsnotify.Watcher
	target  string
	apply   func()
	stop    chan struct{}
}

// WatchSettings starts watching the settings file for the given daemon.
// Watching the directory rather than the file keeps the watch alive across
// the rename-and-replace saves editors do.
func WatchSettings(d *Daemon, log *logrus.Logger) (*SettingsWatcher, error) {
	path, err := config.SettingsFile()
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &SettingsWatcher{
		log:     log,
		watcher: fw,
		target:  filepath.Base(path),
		stop:    make(chan struct{}),
	}
	w.apply = func() {
		settings, err := config.LoadSettings()
		if err != nil {
			log.WithError(err).Warn("failed to reload settings")
			return
		}
		d.ApplySettings(settings)
	}
	go w.run()
	return w, nil
}

func (w *SettingsWatcher) run() {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			w.apply()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("settings watcher error")
		case <-w.stop:
			return
		}
	}
}

// Close stops the watcher.
func (w *SettingsWatcher) Close() error {
	close(w.stop)
	return w.watcher.Close()
}
