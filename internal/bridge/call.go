// Package bridge implements the call channel between the tray daemon and the
// host application: newline-delimited JSON envelopes carrying named method
// calls with argument maps, over a localhost TCP socket. Calls flow in both
// directions; a call may carry an ID when the sender wants a reply, or no ID
// for fire-and-forget notifications.
package bridge

import (
	"encoding/json"
	"fmt"
)

// ErrorCode identifies a bridge-level call failure. Codes are part of the
// wire contract with the host application.
type ErrorCode string

// Error codes returned in call replies.
const (
	CodeInvalidArgs             ErrorCode = "INVALID_ARGS"
	CodeMissingIconPath         ErrorCode = "MISSING_ICON_PATH"
	CodeInvalidIconPath         ErrorCode = "INVALID_ICON_PATH"
	CodeMissingTitle            ErrorCode = "MISSING_TITLE"
	CodeInvalidTitle            ErrorCode = "INVALID_TITLE"
	CodeMissingMenu             ErrorCode = "MISSING_MENU"
	CodeMenuCreationFailed      ErrorCode = "MENU_CREATION_FAILED"
	CodeIndicatorCreationFailed ErrorCode = "INDICATOR_CREATION_FAILED"
	CodeNoIndicator             ErrorCode = "NO_INDICATOR"
	CodeNotImplemented          ErrorCode = "NOT_IMPLEMENTED"
	CodeInternal                ErrorCode = "INTERNAL"
)

// CallError is the error payload of a failed call reply.
type CallError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a CallError with a formatted message.
func NewError(code ErrorCode, format string, args ...interface{}) *CallError {
	return &CallError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Envelope is one line on the wire. A request carries Method (and ID when the
// sender awaits a reply); a reply carries the request's ID plus either Result
// or Error.
type Envelope struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Args   json.RawMessage `json:"args,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *CallError      `json:"error,omitempty"`
}

// IsRequest reports whether the envelope is an inbound method call.
func (e *Envelope) IsRequest() bool {
	return e.Method != ""
}

// IsReply reports whether the envelope answers a previous call.
func (e *Envelope) IsReply() bool {
	return e.Method == "" && e.ID != ""
}

// Handler dispatches one inbound method call. Implementations return either a
// result value (marshaled into the reply) or a CallError; never both.
type Handler interface {
	HandleCall(method string, args json.RawMessage) (interface{}, *CallError)
}

// successReply builds the reply envelope for a completed call.
func successReply(id string, result interface{}) (*Envelope, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &Envelope{ID: id, Result: raw}, nil
}

// errorReply builds the reply envelope for a failed call.
func errorReply(id string, callErr *CallError) *Envelope {
	return &Envelope{ID: id, Error: callErr}
}
