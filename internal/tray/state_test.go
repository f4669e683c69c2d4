package tray

import "testing"

func TestStateConfirmClearsRequestedFlags(t *testing.T) {
	s := NewState()

	s.TunnelConnectRequested = true
	s.ConfirmTunnel(true, "https://app.example.com")
	if s.TunnelConnectRequested {
		t.Error("TunnelConnectRequested not cleared by confirmation")
	}
	if !s.TunnelConnected || s.TunnelURL != "https://app.example.com" {
		t.Errorf("tunnel state = %v %q", s.TunnelConnected, s.TunnelURL)
	}

	s.ServiceStartRequested = true
	s.ConfirmService(true)
	if s.ServiceStartRequested {
		t.Error("ServiceStartRequested not cleared by confirmation")
	}
	if !s.ServiceRunning {
		t.Error("ServiceRunning not set")
	}
}

func TestStateTooltip(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*State)
		expected string
	}{
		{
			name:     "defaults",
			mutate:   func(*State) {},
			expected: "CloudToLocalLLM - LLM Stopped - Tunnel Disconnected",
		},
		{
			name: "everything up",
			mutate: func(s *State) {
				s.ConfirmService(true)
				s.ConfirmTunnel(true, "https://x")
			},
			expected: "CloudToLocalLLM - LLM Running - Tunnel Connected",
		},
		{
			name: "custom title",
			mutate: func(s *State) {
				s.Title = "Ready"
			},
			expected: "Ready - LLM Stopped - Tunnel Disconnected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			tt.mutate(s)
			if got := s.Tooltip(); got != tt.expected {
				t.Errorf("Tooltip() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStateStatusIcon(t *testing.T) {
	s := NewState()
	if got := s.StatusIcon().Name; got != IconIdle {
		t.Errorf("StatusIcon() = %q, want %q", got, IconIdle)
	}
	s.ConfirmTunnel(true, "")
	if got := s.StatusIcon().Name; got != IconConnected {
		t.Errorf("StatusIcon() = %q, want %q", got, IconConnected)
	}
}

func TestStateReset(t *testing.T) {
	s := NewState()
	s.Title = "Busy"
	s.ConfirmTunnel(true, "https://x")
	s.WindowVisible = false

	s.Reset()

	if s.Title != "CloudToLocalLLM" || s.TunnelConnected || s.TunnelURL != "" || !s.WindowVisible {
		t.Errorf("Reset left state %+v", s)
	}
}
