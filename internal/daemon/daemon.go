// Package daemon runs the tray daemon: a single-writer event loop that owns
// the tray controller, the host call channel, desktop notifications, and
// settings reloads.
package daemon

import (
	"encoding/json"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"
	"github.com/sirupsen/logrus"

	"github.com/thrightguy/CloudToLocalLLM/internal/bridge"
	"github.com/thrightguy/CloudToLocalLLM/internal/models"
	"github.com/thrightguy/CloudToLocalLLM/internal/tray"
)

// Daemon ties the pieces together. All tray and state mutation happens on the
// Run goroutine; other goroutines (connection readers, click forwarders, the
// settings watcher) only post closures to it.
type Daemon struct {
	log      *logrus.Logger
	ctrl     *tray.Controller
	srv      *bridge.Server
	router   *tray.Router
	settings *models.Settings

	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once

	// onStop runs on the event loop goroutine after shutdown, typically to
	// leave the systray main loop.
	onStop func()
}

// New creates the daemon around an existing controller. The returned daemon
// is the bridge call handler; wire it with Listen and Run.
func New(ctrl *tray.Controller, settings *models.Settings, log *logrus.Logger) *Daemon {
	d := &Daemon{
		log:      log,
		ctrl:     ctrl,
		settings: settings,
		tasks:    make(chan func()),
		done:     make(chan struct{}),
	}
	d.srv = bridge.NewServer(d, log)
	d.router = &tray.Router{
		Forward:      d.forward,
		CopyURL:      d.copyTunnelURL,
		ToggleWindow: d.toggleWindow,
		Quit: func() {
			// Tell the host the user quit from the tray before going away.
			d.srv.Notify("quit", nil)
			d.Shutdown()
		},
	}
	ctrl.SetOnActivate(d.onMenuActivate)
	return d
}

// SetOnStop registers a callback run on the event loop right before Run
// returns.
func (d *Daemon) SetOnStop(fn func()) {
	d.onStop = fn
}

// Server exposes the call channel server for the serve loop and tests.
func (d *Daemon) Server() *bridge.Server {
	return d.srv
}

// Listen binds the call channel on 127.0.0.1 and returns the bound port.
func (d *Daemon) Listen(port int) (int, error) {
	return d.srv.Listen(port)
}

// Run is the event loop. It processes posted closures until Shutdown, then
// tears the tray down and returns.
func (d *Daemon) Run() {
	for {
		select {
		case fn := <-d.tasks:
			fn()
		case <-d.done:
			d.ctrl.Destroy()
			d.srv.Close()
			if d.onStop != nil {
				d.onStop()
			}
			return
		}
	}
}

// Shutdown stops the event loop. Safe to call from any goroutine, including
// the loop itself, and more than once.
func (d *Daemon) Shutdown() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
}

// post schedules fn on the event loop; dropped when the daemon is stopping.
func (d *Daemon) post(fn func()) {
	select {
	case d.tasks <- fn:
	case <-d.done:
	}
}

// ShowInitialTray creates the tray icon with the embedded glyph and the
// built-in menu before any host has called setIcon.
func (d *Daemon) ShowInitialTray() {
	d.post(func() {
		if err := d.ctrl.SetIcon(""); err != nil {
			d.log.WithError(err).Error("failed to initialize tray icon")
			return
		}
		d.applyDefaultMenu()
	})
}

// HandleCall implements bridge.Handler. Arguments are decoded on the calling
// goroutine; the resulting typed request is applied on the event loop.
func (d *Daemon) HandleCall(method string, args json.RawMessage) (interface{}, *bridge.CallError) {
	req, cerr := parseRequest(method, args)
	if cerr != nil {
		return nil, cerr
	}

	type outcome struct {
		result  interface{}
		callErr *bridge.CallError
	}
	ch := make(chan outcome, 1)
	d.post(func() {
		result, callErr := req.apply(d)
		ch <- outcome{result, callErr}
	})
	select {
	case out := <-ch:
		return out.result, out.callErr
	case <-d.done:
		return nil, bridge.NewError(bridge.CodeInternal, "daemon is shutting down")
	}
}

// onMenuActivate is invoked from indicator click forwarders; it reenters the
// loop before routing. The built-in id table applies only to the daemon's own
// menu: every entry of a host-supplied menu forwards verbatim, even when its
// id collides with a built-in one.
func (d *Daemon) onMenuActivate(id string) {
	d.post(func() {
		d.log.WithField("item", id).Debug("menu item activated")
		if d.ctrl.HasCustomMenu() {
			d.forward(tray.MethodMenuItemClick, map[string]string{"id": id})
			return
		}
		d.router.Activate(id)
	})
}

// forward sends a fire-and-forget call to the host and records the request in
// the tray state so the menu greys the action out until the confirmation
// arrives.
func (d *Daemon) forward(method string, args interface{}) {
	st := d.ctrl.State()
	switch method {
	case tray.MethodStartLlm:
		st.ServiceStartRequested = true
	case tray.MethodConnectTunnel:
		st.TunnelConnectRequested = true
	}
	d.applyDefaultMenu()
	d.srv.Notify(method, args)
}

func (d *Daemon) toggleWindow() {
	st := d.ctrl.State()
	st.WindowVisible = !st.WindowVisible
	d.applyDefaultMenu()
	d.srv.Notify(tray.MethodMenuItemClick, map[string]string{"id": tray.ItemShowWindow})
}

func (d *Daemon) copyTunnelURL() {
	url := d.ctrl.State().TunnelURL
	if url == "" {
		return
	}
	if err := clipboard.WriteAll(url); err != nil {
		d.log.WithError(err).Warn("failed to copy tunnel URL to clipboard")
		return
	}
	d.notify("Tunnel URL copied to clipboard")
}

// refreshStatus reapplies icon, tooltip and, unless the host installed its
// own menu, the default menu after a status change.
func (d *Daemon) refreshStatus() {
	d.ctrl.RefreshStatus()
	d.applyDefaultMenu()
}

// applyDefaultMenu rebuilds the built-in menu from the current state. A no-op
// while a host menu is attached or before the icon exists.
func (d *Daemon) applyDefaultMenu() {
	if !d.ctrl.Active() || d.ctrl.HasCustomMenu() {
		return
	}
	if err := d.ctrl.ApplyDefaultMenu(defaultMenu(d.ctrl.State())); err != nil {
		d.log.WithError(err).Warn("failed to apply default menu")
	}
}

// ApplySettings installs reloaded settings. Called by the settings watcher;
// runs on the event loop.
func (d *Daemon) ApplySettings(s *models.Settings) {
	d.post(func() {
		d.settings = s
		if level, err := logrus.ParseLevel(s.LogLevel); err == nil {
			d.log.SetLevel(level)
		} else {
			d.log.Warnf("settings: unknown log level %q", s.LogLevel)
		}
		d.log.WithField("log_level", s.LogLevel).Info("settings reloaded")
	})
}

func (d *Daemon) notifyTunnelChange(connected bool) {
	if !d.settings.Notifications.Enabled || !d.settings.Notifications.OnTunnelChange {
		return
	}
	msg := "Tunnel disconnected"
	if connected {
		msg = "Tunnel connected"
	}
	d.notify(msg)
}

func (d *Daemon) notifyLlmChange(running bool) {
	if !d.settings.Notifications.Enabled || !d.settings.Notifications.OnLlmChange {
		return
	}
	msg := "LLM service stopped"
	if running {
		msg = "LLM service running"
	}
	d.notify(msg)
}

// notify shows a desktop notification off the event loop.
func (d *Daemon) notify(message string) {
	if !d.settings.Notifications.Enabled {
		return
	}
	log := d.log
	go func() {
		if err := beeep.Notify("CloudToLocalLLM", message, ""); err != nil {
			log.WithError(err).Debug("desktop notification failed")
		}
	}()
}
