package daemon

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/thrightguy/CloudToLocalLLM/internal/bridge"
	"github.com/thrightguy/CloudToLocalLLM/internal/tray"
)

// maxTitleLen bounds the status text; the Windows notify-icon tooltip is a
// fixed 128-char buffer and the other platforms have no reason to exceed it.
const maxTitleLen = 128

// request is one decoded host call. Decoding happens once at the channel
// boundary; apply runs on the daemon's event loop and never sees raw JSON.
type request interface {
	apply(d *Daemon) (interface{}, *bridge.CallError)
}

type destroyRequest struct{}

type pingRequest struct{}

type setIconRequest struct {
	Path string
}

type setTitleRequest struct {
	Title string
}

type setContextMenuRequest struct {
	Items []tray.MenuItemDescriptor
}

type updateTunnelStatusRequest struct {
	Connected bool
	URL       string
}

type updateLlmStatusRequest struct {
	Running bool
}

// parseRequest maps a method name and raw argument object to a typed
// request, or to the call error the host should see.
func parseRequest(method string, args json.RawMessage) (request, *bridge.CallError) {
	switch method {
	case "destroy":
		return destroyRequest{}, nil
	case "ping":
		return pingRequest{}, nil
	case "setIcon":
		return parseSetIcon(args)
	case "setTitle":
		return parseSetTitle(args)
	case "setContextMenu":
		return parseSetContextMenu(args)
	case "updateTunnelStatus":
		return parseUpdateTunnelStatus(args)
	case "updateLlmStatus":
		return parseUpdateLlmStatus(args)
	default:
		return nil, bridge.NewError(bridge.CodeNotImplemented, "unknown method %q", method)
	}
}

// argFields splits the argument object into its raw fields so that a missing
// key and a key holding the wrong type produce different error codes.
func argFields(args json.RawMessage) (map[string]json.RawMessage, *bridge.CallError) {
	if len(args) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(args, &fields); err != nil {
		return nil, bridge.NewError(bridge.CodeInvalidArgs, "arguments must be an object: %v", err)
	}
	return fields, nil
}

func parseSetIcon(args json.RawMessage) (request, *bridge.CallError) {
	fields, cerr := argFields(args)
	if cerr != nil {
		return nil, cerr
	}
	raw, ok := fields["iconPath"]
	if !ok {
		return nil, bridge.NewError(bridge.CodeMissingIconPath, "setIcon requires an iconPath argument")
	}
	var path string
	if err := json.Unmarshal(raw, &path); err != nil || path == "" {
		return nil, bridge.NewError(bridge.CodeInvalidIconPath, "iconPath must be a non-empty string")
	}
	return setIconRequest{Path: path}, nil
}

func parseSetTitle(args json.RawMessage) (request, *bridge.CallError) {
	fields, cerr := argFields(args)
	if cerr != nil {
		return nil, cerr
	}
	raw, ok := fields["title"]
	if !ok {
		return nil, bridge.NewError(bridge.CodeMissingTitle, "setTitle requires a title argument")
	}
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return nil, bridge.NewError(bridge.CodeInvalidTitle, "title must be a string")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, bridge.NewError(bridge.CodeInvalidTitle, "title exceeds %d characters", maxTitleLen)
	}
	return setTitleRequest{Title: title}, nil
}

func parseSetContextMenu(args json.RawMessage) (request, *bridge.CallError) {
	fields, cerr := argFields(args)
	if cerr != nil {
		return nil, cerr
	}
	raw, ok := fields["menu"]
	if !ok {
		return nil, bridge.NewError(bridge.CodeMissingMenu, "setContextMenu requires a menu argument")
	}
	var items []tray.MenuItemDescriptor
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, bridge.NewError(bridge.CodeInvalidArgs, "menu must be an array of items: %v", err)
	}
	return setContextMenuRequest{Items: items}, nil
}

func parseUpdateTunnelStatus(args json.RawMessage) (request, *bridge.CallError) {
	fields, cerr := argFields(args)
	if cerr != nil {
		return nil, cerr
	}
	req := updateTunnelStatusRequest{}
	raw, ok := fields["isConnected"]
	if !ok {
		return nil, bridge.NewError(bridge.CodeInvalidArgs, "updateTunnelStatus requires isConnected")
	}
	if err := json.Unmarshal(raw, &req.Connected); err != nil {
		return nil, bridge.NewError(bridge.CodeInvalidArgs, "isConnected must be a boolean")
	}
	if raw, ok := fields["url"]; ok {
		if err := json.Unmarshal(raw, &req.URL); err != nil {
			return nil, bridge.NewError(bridge.CodeInvalidArgs, "url must be a string")
		}
	}
	return req, nil
}

func parseUpdateLlmStatus(args json.RawMessage) (request, *bridge.CallError) {
	fields, cerr := argFields(args)
	if cerr != nil {
		return nil, cerr
	}
	raw, ok := fields["isRunning"]
	if !ok {
		return nil, bridge.NewError(bridge.CodeInvalidArgs, "updateLlmStatus requires isRunning")
	}
	req := updateLlmStatusRequest{}
	if err := json.Unmarshal(raw, &req.Running); err != nil {
		return nil, bridge.NewError(bridge.CodeInvalidArgs, "isRunning must be a boolean")
	}
	return req, nil
}

func (destroyRequest) apply(d *Daemon) (interface{}, *bridge.CallError) {
	// Destroy is idempotent; tearing down an indicator that was never
	// created still succeeds.
	d.ctrl.Destroy()
	return true, nil
}

func (pingRequest) apply(d *Daemon) (interface{}, *bridge.CallError) {
	return "PONG", nil
}

func (r setIconRequest) apply(d *Daemon) (interface{}, *bridge.CallError) {
	if err := d.ctrl.SetIcon(r.Path); err != nil {
		return nil, bridge.NewError(bridge.CodeIndicatorCreationFailed, "%v", err)
	}
	if !d.ctrl.HasCustomMenu() {
		d.applyDefaultMenu()
	}
	return true, nil
}

func (r setTitleRequest) apply(d *Daemon) (interface{}, *bridge.CallError) {
	if err := d.ctrl.SetTitle(r.Title); err != nil {
		if errors.Is(err, tray.ErrNotInitialized) {
			return nil, bridge.NewError(bridge.CodeNoIndicator, "setIcon must be called before setTitle")
		}
		return nil, bridge.NewError(bridge.CodeInternal, "%v", err)
	}
	return true, nil
}

func (r setContextMenuRequest) apply(d *Daemon) (interface{}, *bridge.CallError) {
	err := d.ctrl.SetContextMenu(r.Items)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, tray.ErrNotInitialized):
		return nil, bridge.NewError(bridge.CodeNoIndicator, "setIcon must be called before setContextMenu")
	case errors.Is(err, tray.ErrInvalidDescriptor):
		return nil, bridge.NewError(bridge.CodeMenuCreationFailed, "%v", err)
	default:
		return nil, bridge.NewError(bridge.CodeMenuCreationFailed, "%v", err)
	}
}

func (r updateTunnelStatusRequest) apply(d *Daemon) (interface{}, *bridge.CallError) {
	prev := d.ctrl.State().TunnelConnected
	d.ctrl.State().ConfirmTunnel(r.Connected, r.URL)
	d.refreshStatus()
	if prev != r.Connected {
		d.notifyTunnelChange(r.Connected)
	}
	return true, nil
}

func (r updateLlmStatusRequest) apply(d *Daemon) (interface{}, *bridge.CallError) {
	prev := d.ctrl.State().ServiceRunning
	d.ctrl.State().ConfirmService(r.Running)
	d.refreshStatus()
	if prev != r.Running {
		d.notifyLlmChange(r.Running)
	}
	return true, nil
}
