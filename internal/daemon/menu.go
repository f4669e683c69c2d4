package daemon

import (
	"github.com/thrightguy/CloudToLocalLLM/internal/tray"
)

// defaultMenu builds the built-in context menu shown until the host installs
// its own via setContextMenu. Entries and their enablement follow the
// reconciled state: action items for a transition that already happened stay
// greyed out rather than disappearing.
func defaultMenu(st *tray.State) []tray.MenuItemDescriptor {
	windowLabel := "Show Window"
	if st.WindowVisible {
		windowLabel = "Hide Window"
	}
	llmLine := "LLM: Stopped"
	if st.ServiceRunning {
		llmLine = "LLM: Running"
	}
	tunnelLine := "Tunnel: Disconnected"
	if st.TunnelConnected {
		tunnelLine = "Tunnel: Connected"
	}

	return []tray.MenuItemDescriptor{
		{ID: tray.ItemShowWindow, Label: windowLabel},
		{Kind: tray.KindSeparator},
		{ID: tray.ItemLlmStatus, Label: llmLine, Disabled: true},
		{ID: tray.ItemStartLlm, Label: "Start LLM", Disabled: st.ServiceRunning || st.ServiceStartRequested},
		{Kind: tray.KindSeparator},
		{ID: tray.ItemTunnelStatus, Label: tunnelLine, Disabled: true},
		{ID: tray.ItemConnectTunnel, Label: "Connect Tunnel", Disabled: st.TunnelConnected || st.TunnelConnectRequested},
		{ID: tray.ItemDisconnectTunnel, Label: "Disconnect Tunnel", Disabled: !st.TunnelConnected},
		{ID: tray.ItemCopyTunnelURL, Label: "Copy Tunnel URL", Disabled: st.TunnelURL == ""},
		{Kind: tray.KindSeparator},
		{ID: tray.ItemQuit, Label: "Quit"},
	}
}
