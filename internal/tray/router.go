package tray

// Built-in menu item identifiers used by the default menu.
const (
	ItemShowWindow       = "show_window"
	ItemStartLlm         = "start_llm"
	ItemLlmStatus        = "llm_status"
	ItemConnectTunnel    = "tunnel_connect"
	ItemDisconnectTunnel = "tunnel_disconnect"
	ItemTunnelStatus     = "tunnel_status"
	ItemCopyTunnelURL    = "tunnel_copy_url"
	ItemQuit             = "quit"
)

// Host-call method names sent on menu activation.
const (
	MethodMenuItemClick     = "onMenuItemClick"
	MethodStartLlm          = "startLlm"
	MethodCheckLlmStatus    = "checkLlmStatus"
	MethodConnectTunnel     = "connectTunnel"
	MethodDisconnectTunnel  = "disconnectTunnel"
	MethodCheckTunnelStatus = "checkTunnelStatus"
)

// Router turns activations of the default menu into host calls or local
// actions. It is never consulted for a host-provided menu, whose entries
// forward verbatim regardless of id. The function fields are injected by the
// daemon so the routing table stays testable without a live channel or
// clipboard.
type Router struct {
	// Forward sends a fire-and-forget call to the host. args is nil for
	// action methods and a payload map for onMenuItemClick.
	Forward func(method string, args interface{})

	// CopyURL places the current tunnel URL on the clipboard.
	CopyURL func()

	// ToggleWindow asks the host to show or hide its main window.
	ToggleWindow func()

	// Quit shuts the tray down locally.
	Quit func()
}

// Activate dispatches one default-menu activation by item id.
func (r *Router) Activate(id string) {
	switch id {
	case ItemShowWindow:
		if r.ToggleWindow != nil {
			r.ToggleWindow()
		}
	case ItemStartLlm:
		r.forward(MethodStartLlm)
	case ItemLlmStatus:
		r.forward(MethodCheckLlmStatus)
	case ItemConnectTunnel:
		r.forward(MethodConnectTunnel)
	case ItemDisconnectTunnel:
		r.forward(MethodDisconnectTunnel)
	case ItemTunnelStatus:
		r.forward(MethodCheckTunnelStatus)
	case ItemCopyTunnelURL:
		if r.CopyURL != nil {
			r.CopyURL()
		}
	case ItemQuit:
		if r.Quit != nil {
			r.Quit()
		}
	default:
		if r.Forward != nil {
			r.Forward(MethodMenuItemClick, map[string]string{"id": id})
		}
	}
}

func (r *Router) forward(method string) {
	if r.Forward != nil {
		r.Forward(method, nil)
	}
}
