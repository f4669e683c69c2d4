package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type handlerFunc func(method string, args json.RawMessage) (interface{}, *CallError)

func (f handlerFunc) HandleCall(method string, args json.RawMessage) (interface{}, *CallError) {
	return f(method, args)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// pipe wires a server and a host client over an in-memory connection.
func pipe(t *testing.T, handler Handler, onCall CallFunc) (*Server, *Client) {
	t.Helper()
	srv := NewServer(handler, testLogger())
	serverConn, clientConn := net.Pipe()
	go srv.ServeConn(serverConn)
	client := NewClient(clientConn, onCall, testLogger())
	t.Cleanup(func() {
		client.Close()
		srv.Close()
	})
	return srv, client
}

func TestCallRoundTrip(t *testing.T) {
	handler := handlerFunc(func(method string, args json.RawMessage) (interface{}, *CallError) {
		if method != "setTitle" {
			t.Errorf("method = %q, want setTitle", method)
		}
		var payload struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(args, &payload); err != nil {
			return nil, NewError(CodeInvalidArgs, "%v", err)
		}
		return payload.Title, nil
	})
	_, client := pipe(t, handler, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := client.Call(ctx, "setTitle", map[string]string{"title": "Ready"})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	var got string
	if err := json.Unmarshal(result, &got); err != nil {
		t.Fatalf("bad result %s: %v", result, err)
	}
	if got != "Ready" {
		t.Errorf("result = %q, want %q", got, "Ready")
	}
}

func TestCallErrorCarriesCode(t *testing.T) {
	handler := handlerFunc(func(method string, args json.RawMessage) (interface{}, *CallError) {
		return nil, NewError(CodeNoIndicator, "no tray icon yet")
	})
	_, client := pipe(t, handler, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.Call(ctx, "setTitle", nil)
	if err == nil {
		t.Fatal("Call() succeeded, want error")
	}
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("Call() error = %T, want *CallError", err)
	}
	if callErr.Code != CodeNoIndicator {
		t.Errorf("code = %q, want %q", callErr.Code, CodeNoIndicator)
	}
}

func TestNotifyIsFireAndForget(t *testing.T) {
	called := make(chan string, 1)
	handler := handlerFunc(func(method string, args json.RawMessage) (interface{}, *CallError) {
		called <- method
		return nil, NewError(CodeInternal, "errors on notifications go nowhere")
	})
	_, client := pipe(t, handler, nil)

	if err := client.Notify("destroy", nil); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	select {
	case method := <-called:
		if method != "destroy" {
			t.Errorf("method = %q, want destroy", method)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never saw the notification")
	}
}

func TestServerNotifyReachesHost(t *testing.T) {
	received := make(chan *Envelope, 1)
	onCall := func(method string, args json.RawMessage) (interface{}, *CallError) {
		received <- &Envelope{Method: method, Args: args}
		return nil, nil
	}
	srv, _ := pipe(t, handlerFunc(func(string, json.RawMessage) (interface{}, *CallError) {
		return nil, nil
	}), onCall)

	waitForHosts(t, srv, 1)
	srv.Notify("onMenuItemClick", map[string]string{"id": "open_settings"})

	select {
	case env := <-received:
		if env.Method != "onMenuItemClick" {
			t.Errorf("method = %q, want onMenuItemClick", env.Method)
		}
		var payload map[string]string
		if err := json.Unmarshal(env.Args, &payload); err != nil || payload["id"] != "open_settings" {
			t.Errorf("args = %s, want id payload", env.Args)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("host never received the notification")
	}
}

func TestNotifySurvivesStalledHost(t *testing.T) {
	old := writeTimeout
	writeTimeout = 50 * time.Millisecond
	defer func() { writeTimeout = old }()

	srv := NewServer(handlerFunc(func(string, json.RawMessage) (interface{}, *CallError) {
		return nil, nil
	}), testLogger())
	serverConn, clientConn := net.Pipe()
	go srv.ServeConn(serverConn)
	t.Cleanup(func() {
		srv.Close()
		clientConn.Close()
	})
	waitForHosts(t, srv, 1)

	// The host side never reads, so the write can only complete by hitting
	// its deadline. Notify must come back instead of wedging the caller.
	done := make(chan struct{})
	go func() {
		srv.Notify("updateTunnelStatus", map[string]bool{"isConnected": true})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a host that stopped draining")
	}

	// The unusable connection gets dropped.
	deadline := time.Now().Add(2 * time.Second)
	for srv.ConnectedHosts() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("stalled host connection never removed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerInvokeRoundTrip(t *testing.T) {
	onCall := func(method string, args json.RawMessage) (interface{}, *CallError) {
		return "pong", nil
	}
	srv, _ := pipe(t, handlerFunc(func(string, json.RawMessage) (interface{}, *CallError) {
		return nil, nil
	}), onCall)

	waitForHosts(t, srv, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := srv.Invoke(ctx, "ping", nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	var got string
	if err := json.Unmarshal(result, &got); err != nil || got != "pong" {
		t.Errorf("result = %s, want \"pong\"", result)
	}
}

func TestClientWithoutHandlerAnswersNotImplemented(t *testing.T) {
	srv, _ := pipe(t, handlerFunc(func(string, json.RawMessage) (interface{}, *CallError) {
		return nil, nil
	}), nil)

	waitForHosts(t, srv, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := srv.Invoke(ctx, "whatever", nil)
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("Invoke() error = %v, want *CallError", err)
	}
	if callErr.Code != CodeNotImplemented {
		t.Errorf("code = %q, want %q", callErr.Code, CodeNotImplemented)
	}
}

func TestInvokeWithoutHostFails(t *testing.T) {
	srv := NewServer(handlerFunc(func(string, json.RawMessage) (interface{}, *CallError) {
		return nil, nil
	}), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := srv.Invoke(ctx, "ping", nil); err == nil {
		t.Fatal("Invoke() with no hosts succeeded")
	}
}

func TestEnvelopeClassification(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope
		request bool
		reply   bool
	}{
		{name: "notification", env: Envelope{Method: "destroy"}, request: true},
		{name: "awaited call", env: Envelope{ID: "1", Method: "ping"}, request: true},
		{name: "reply", env: Envelope{ID: "1", Result: json.RawMessage(`true`)}, reply: true},
		{name: "empty", env: Envelope{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.env.IsRequest(); got != tt.request {
				t.Errorf("IsRequest() = %v, want %v", got, tt.request)
			}
			if got := tt.env.IsReply(); got != tt.reply {
				t.Errorf("IsReply() = %v, want %v", got, tt.reply)
			}
		})
	}
}

func TestListenOnLoopback(t *testing.T) {
	srv := NewServer(handlerFunc(func(method string, args json.RawMessage) (interface{}, *CallError) {
		return "PONG", nil
	}), testLogger())
	port, err := srv.Listen(0)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	if port == 0 {
		t.Fatal("Listen(0) did not allocate a port")
	}
	go func() { _ = srv.Serve() }()
	defer srv.Close()

	client, err := Dial(port, nil, testLogger())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := client.Call(ctx, "ping", nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	var got string
	if err := json.Unmarshal(result, &got); err != nil || got != "PONG" {
		t.Errorf("result = %s, want \"PONG\"", result)
	}
}

func waitForHosts(t *testing.T, srv *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for srv.ConnectedHosts() < n {
		if time.Now().After(deadline) {
			t.Fatalf("host connection never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
