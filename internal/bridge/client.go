package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CallFunc handles a method call arriving from the peer.
type CallFunc func(method string, args json.RawMessage) (interface{}, *CallError)

// Client is the host side of the bridge. The control CLI uses it to talk to a
// running daemon; tests use it to play the role of the host application.
type Client struct {
	log  *logrus.Logger
	wire *wire

	onCall CallFunc

	mu      sync.Mutex
	pending map[string]chan *Envelope
	closed  bool
}

// Dial connects to a daemon's bridge endpoint on localhost. onCall may be nil
// when the caller does not serve inbound methods; such calls are answered
// with NOT_IMPLEMENTED.
func Dial(port int, onCall CallFunc, log *logrus.Logger) (*Client, error) {
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tray daemon: %w", err)
	}
	return NewClient(conn, onCall, log), nil
}

// NewClient wraps an established connection and starts its read loop.
func NewClient(conn net.Conn, onCall CallFunc, log *logrus.Logger) *Client {
	c := &Client{
		log:     log,
		wire:    newWire(conn),
		onCall:  onCall,
		pending: make(map[string]chan *Envelope),
	}
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	for {
		env, err := c.wire.read()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && err != net.ErrClosed {
				c.log.Warnf("bridge client: read error: %v", err)
			}
			return
		}

		switch {
		case env.IsRequest():
			c.handleRequest(env)
		case env.IsReply():
			c.mu.Lock()
			ch, ok := c.pending[env.ID]
			if ok {
				delete(c.pending, env.ID)
			}
			c.mu.Unlock()
			if ok {
				ch <- env
			}
		}
	}
}

func (c *Client) handleRequest(env *Envelope) {
	var (
		result  interface{}
		callErr *CallError
	)
	if c.onCall != nil {
		result, callErr = c.onCall(env.Method, env.Args)
	} else {
		callErr = NewError(CodeNotImplemented, "method %q not implemented", env.Method)
	}

	if env.ID == "" {
		return
	}

	var reply *Envelope
	if callErr != nil {
		reply = errorReply(env.ID, callErr)
	} else {
		var err error
		reply, err = successReply(env.ID, result)
		if err != nil {
			reply = errorReply(env.ID, NewError(CodeInternal, "%v", err))
		}
	}
	if err := c.wire.write(reply); err != nil {
		c.log.Warnf("bridge client: failed to send reply: %v", err)
	}
}

// Call invokes method on the daemon and awaits its reply.
func (c *Client) Call(ctx context.Context, method string, args interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	id := uuid.NewString()
	ch := make(chan *Envelope, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.wire.write(&Envelope{ID: id, Method: method, Args: raw}); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, err
	}

	select {
	case reply := <-ch:
		if reply.Error != nil {
			return nil, reply.Error
		}
		return reply.Result, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Notify invokes method on the daemon without awaiting a reply.
func (c *Client) Notify(method string, args interface{}) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}
	return c.wire.write(&Envelope{Method: method, Args: raw})
}

// Close disconnects from the daemon.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.wire.close()
}
