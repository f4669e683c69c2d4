package tray

import "fmt"

// State holds everything the tray mirrors: the current icon, the title text,
// and the LLM/tunnel status. Confirmed status fields are written only by
// inbound update calls from the host; Requested flags flip as soon as the
// matching outbound action is sent and are cleared by the next confirmation.
// The UI therefore shows "requested" immediately and "confirmed" eventually.
type State struct {
	Icon  Icon
	Title string

	ServiceRunning  bool
	TunnelConnected bool
	TunnelURL       string

	ServiceStartRequested  bool
	TunnelConnectRequested bool

	WindowVisible bool
}

// NewState returns the default state: generic icon, window visible, nothing
// running or connected.
func NewState() *State {
	return &State{
		Icon:          EmbeddedIcon(IconIdle),
		Title:         "CloudToLocalLLM",
		WindowVisible: true,
	}
}

// Reset returns the state to its defaults. Called on destroy.
func (s *State) Reset() {
	*s = *NewState()
}

// ConfirmTunnel records a tunnel status confirmation from the host.
func (s *State) ConfirmTunnel(connected bool, url string) {
	s.TunnelConnected = connected
	s.TunnelURL = url
	s.TunnelConnectRequested = false
}

// ConfirmService records an LLM service status confirmation from the host.
func (s *State) ConfirmService(running bool) {
	s.ServiceRunning = running
	s.ServiceStartRequested = false
}

// StatusIcon returns the embedded icon matching the confirmed status.
func (s *State) StatusIcon() Icon {
	if s.TunnelConnected {
		return EmbeddedIcon(IconConnected)
	}
	return EmbeddedIcon(IconIdle)
}

// Tooltip composes the status line shown on hover.
func (s *State) Tooltip() string {
	llm := "LLM Stopped"
	if s.ServiceRunning {
		llm = "LLM Running"
	}
	tunnel := "Tunnel Disconnected"
	if s.TunnelConnected {
		tunnel = "Tunnel Connected"
	}
	return fmt.Sprintf("%s - %s - %s", s.Title, llm, tunnel)
}
