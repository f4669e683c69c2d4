package tray

// Indicator is the platform tray backend. Exactly one implementation talks to
// the OS (systray), plus a no-op one for headless runs; tests supply fakes.
// The controller is the only caller and guarantees single-goroutine access.
type Indicator interface {
	// Create makes the tray icon visible with the given icon and tooltip.
	// Called once per activation; Destroy must be called before Create is
	// legal again.
	Create(icon Icon, tooltip string) error

	// SetIcon replaces the tray icon. Only called after Create.
	SetIcon(icon Icon) error

	// SetTitle replaces the label/tooltip text. Only called after Create.
	SetTitle(title string) error

	// SetMenu replaces the visible context menu wholesale. onActivate is
	// invoked with the entry id when the user activates an entry.
	SetMenu(menu *MenuModel, onActivate func(id string)) error

	// Destroy hides the tray icon and drops the menu. Must tolerate being
	// called when nothing is visible.
	Destroy() error
}

// NullIndicator is the headless backend used with --no-tray: every operation
// succeeds and nothing is shown.
type NullIndicator struct{}

// Create implements Indicator.
func (NullIndicator) Create(Icon, string) error { return nil }

// SetIcon implements Indicator.
func (NullIndicator) SetIcon(Icon) error { return nil }

// SetTitle implements Indicator.
func (NullIndicator) SetTitle(string) error { return nil }

// SetMenu implements Indicator.
func (NullIndicator) SetMenu(*MenuModel, func(string)) error { return nil }

// Destroy implements Indicator.
func (NullIndicator) Destroy() error { return nil }
