package tray

import (
	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"
)

// SystrayIndicator renders the tray through getlantern/systray, which carries
// the per-platform code (Shell_NotifyIcon on Windows, AppIndicator/GTK on
// Linux, Cocoa on macOS).
//
// The library cannot remove menu items or the icon once added without tearing
// down its event loop, so menu rebuilds hide every previously added entry and
// Destroy resets the icon to the generic glyph instead of removing it.
type SystrayIndicator struct {
	log *logrus.Logger

	items []*systray.MenuItem
	stop  chan struct{}
}

// NewSystrayIndicator creates the systray-backed indicator. Run must be
// called from the main goroutine before the controller touches it.
func NewSystrayIndicator(log *logrus.Logger) *SystrayIndicator {
	return &SystrayIndicator{log: log}
}

// Run enters the systray event loop. Blocks until Quit; must run on the main
// goroutine (Cocoa requirement).
func (s *SystrayIndicator) Run(onReady, onExit func()) {
	systray.Run(onReady, onExit)
}

// Quit terminates the systray event loop.
func (s *SystrayIndicator) Quit() {
	systray.Quit()
}

// Create implements Indicator.
func (s *SystrayIndicator) Create(icon Icon, tooltip string) error {
	systray.SetIcon(icon.Data())
	systray.SetTooltip(tooltip)
	return nil
}

// SetIcon implements Indicator.
func (s *SystrayIndicator) SetIcon(icon Icon) error {
	systray.SetIcon(icon.Data())
	return nil
}

// SetTitle implements Indicator.
func (s *SystrayIndicator) SetTitle(title string) error {
	systray.SetTitle(title)
	systray.SetTooltip(title)
	return nil
}

// SetMenu implements Indicator.
func (s *SystrayIndicator) SetMenu(menu *MenuModel, onActivate func(id string)) error {
	// Stop click forwarding for the previous menu generation and hide its
	// entries; the new entries are appended after them.
	if s.stop != nil {
		close(s.stop)
	}
	s.stop = make(chan struct{})
	for _, item := range s.items {
		item.Hide()
	}

	for _, desc := range menu.Items {
		var item *systray.MenuItem
		switch desc.Kind {
		case KindSeparator:
			// Separators cannot be hidden later, so render them as an
			// inert rule entry that can.
			item = systray.AddMenuItem("──────────", "")
			item.Disable()
			s.items = append(s.items, item)
			continue
		case KindCheckbox:
			item = systray.AddMenuItemCheckbox(desc.Label, desc.Label, desc.Checked)
		default:
			item = systray.AddMenuItem(desc.Label, desc.Label)
		}
		if desc.Disabled {
			item.Disable()
		}
		s.items = append(s.items, item)

		if onActivate != nil && !desc.Disabled {
			go s.forwardClicks(item, desc.ID, onActivate, s.stop)
		}
	}
	return nil
}

func (s *SystrayIndicator) forwardClicks(item *systray.MenuItem, id string, onActivate func(string), stop <-chan struct{}) {
	for {
		select {
		case _, ok := <-item.ClickedCh:
			if !ok {
				return
			}
			onActivate(id)
		case <-stop:
			return
		}
	}
}

// Destroy implements Indicator.
func (s *SystrayIndicator) Destroy() error {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	for _, item := range s.items {
		item.Hide()
	}
	systray.SetIcon(EmbeddedIcon(IconIdle).Data())
	systray.SetTitle("")
	systray.SetTooltip("")
	return nil
}
