package tray

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrNotInitialized is returned by operations that need a visible tray icon
// before any setIcon call created one.
var ErrNotInitialized = errors.New("tray indicator not initialized")

// Controller owns the indicator and the tray state and applies one to the
// other. It is a plain object, not a singleton; every method must be called
// from the daemon's event loop goroutine.
//
// Lifecycle:
//
//	uninitialized --SetIcon--> active
//	active --SetIcon/SetTitle/SetContextMenu--> active
//	active --Destroy--> uninitialized
//	uninitialized --Destroy--> uninitialized (no-op)
//	uninitialized --SetTitle/SetContextMenu--> ErrNotInitialized
type Controller struct {
	ind       Indicator
	log       *logrus.Logger
	fallbacks []string

	state      *State
	menu       *MenuModel
	customMenu bool
	active     bool
	onActivate func(id string)
}

// NewController creates a controller over the given indicator backend.
// fallbacks is the compiled-in icon fallback path list.
func NewController(ind Indicator, fallbacks []string, log *logrus.Logger) *Controller {
	return &Controller{
		ind:       ind,
		log:       log,
		fallbacks: fallbacks,
		state:     NewState(),
	}
}

// SetOnActivate sets the callback invoked with the entry id when a menu entry
// is activated.
func (c *Controller) SetOnActivate(fn func(id string)) {
	c.onActivate = fn
}

// Active reports whether the tray icon currently exists.
func (c *Controller) Active() bool {
	return c.active
}

// State returns the mutable tray state. Callers must follow the single-writer
// rule: mutate only from the event loop.
func (c *Controller) State() *State {
	return c.state
}

// HasCustomMenu reports whether the visible menu was supplied by the host via
// SetContextMenu, as opposed to the daemon's own default menu.
func (c *Controller) HasCustomMenu() bool {
	return c.customMenu
}

// SetIcon resolves path through the fallback chain and applies it. The first
// call creates the tray icon; later calls only swap the image. Icon
// resolution itself never fails — only indicator creation can.
func (c *Controller) SetIcon(path string) error {
	icon := ResolveIcon(path, c.fallbacks)
	if icon.Path != path {
		c.log.Debugf("tray: icon %q not readable, using %s", path, describeIcon(icon))
	}
	c.state.Icon = icon

	if !c.active {
		if err := c.ind.Create(icon, c.state.Tooltip()); err != nil {
			return fmt.Errorf("failed to create tray indicator: %w", err)
		}
		c.active = true
		return nil
	}

	if err := c.ind.SetIcon(icon); err != nil {
		// The handle exists and the state is already updated; an icon swap
		// failure is not surfaced to the caller.
		c.log.Warnf("tray: failed to update icon: %v", err)
	}
	return nil
}

// SetTitle sets the tray label/tooltip text.
func (c *Controller) SetTitle(title string) error {
	if !c.active {
		return ErrNotInitialized
	}
	c.state.Title = title
	if err := c.ind.SetTitle(title); err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}
	return nil
}

// SetContextMenu replaces the visible menu with one built from the host's
// descriptors. The previous menu is discarded wholesale; there is no diffing.
func (c *Controller) SetContextMenu(items []MenuItemDescriptor) error {
	if !c.active {
		return ErrNotInitialized
	}
	return c.applyMenu(items, true)
}

// ApplyDefaultMenu replaces the visible menu with the daemon's own menu. The
// next SetContextMenu still wins: host menus are custom, this one is not.
func (c *Controller) ApplyDefaultMenu(items []MenuItemDescriptor) error {
	if !c.active {
		return ErrNotInitialized
	}
	return c.applyMenu(items, false)
}

func (c *Controller) applyMenu(items []MenuItemDescriptor, custom bool) error {
	model, err := BuildMenu(items)
	if err != nil {
		return err
	}
	if err := c.ind.SetMenu(model, c.onActivate); err != nil {
		return fmt.Errorf("failed to attach menu: %w", err)
	}
	c.menu = model
	c.customMenu = custom
	return nil
}

// Menu returns the currently attached menu model, or nil.
func (c *Controller) Menu() *MenuModel {
	return c.menu
}

// RefreshStatus reapplies icon and tooltip after a status change. The icon
// only follows status while it is one of the embedded glyphs; an explicit
// host-set icon file is left alone. A no-op before the first SetIcon.
func (c *Controller) RefreshStatus() {
	if !c.active {
		return
	}
	if c.state.Icon.Embedded() {
		c.state.Icon = c.state.StatusIcon()
		if err := c.ind.SetIcon(c.state.Icon); err != nil {
			c.log.Warnf("tray: failed to refresh icon: %v", err)
		}
	}
	if err := c.ind.SetTitle(c.state.Title); err != nil {
		c.log.Warnf("tray: failed to refresh tooltip: %v", err)
	}
}

// Destroy tears down the menu and tray icon and resets the state. Idempotent:
// destroying an uninitialized tray is a successful no-op.
func (c *Controller) Destroy() {
	if c.active {
		if err := c.ind.Destroy(); err != nil {
			c.log.Warnf("tray: destroy failed: %v", err)
		}
	}
	c.active = false
	c.menu = nil
	c.customMenu = false
	c.state.Reset()
}

func describeIcon(ic Icon) string {
	if ic.Path != "" {
		return "fallback " + ic.Path
	}
	return "embedded " + ic.Name
}
