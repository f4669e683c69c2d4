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

// Server accepts host connections and dispatches their calls to a Handler.
// It can also invoke methods on connected hosts: Notify for fire-and-forget
// calls, Invoke when a reply is awaited.
type Server struct {
	log     *logrus.Logger
	handler Handler

	ln net.Listener

	mu      sync.Mutex
	conns   map[*wire]struct{}
	pending map[string]chan *Envelope
	closed  bool
}

// NewServer creates a server dispatching inbound calls to handler.
func NewServer(handler Handler, log *logrus.Logger) *Server {
	return &Server{
		log:     log,
		handler: handler,
		conns:   make(map[*wire]struct{}),
		pending: make(map[string]chan *Envelope),
	}
}

// Listen binds the server to 127.0.0.1 on the given port (0 for dynamic
// allocation) and returns the actual port.
func (s *Server) Listen(port int) (int, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return 0, fmt.Errorf("failed to listen: %w", err)
	}
	s.ln = ln
	return ln.Addr().(*net.TCPAddr).Port, nil
}

// Serve accepts connections until Close is called. Each connection is served
// on its own goroutine; per-connection calls are handled in arrival order.
func (s *Server) Serve() error {
	if s.ln == nil {
		return fmt.Errorf("server is not listening")
	}
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		s.log.Debugf("bridge: host connected from %s", conn.RemoteAddr())
		go s.ServeConn(conn)
	}
}

// ServeConn runs the read loop for one host connection. Exported so tests can
// drive the server over an in-memory pipe.
func (s *Server) ServeConn(conn net.Conn) {
	w := newWire(conn)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = w.close()
		return
	}
	s.conns[w] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, w)
		s.mu.Unlock()
		_ = w.close()
		s.log.Debug("bridge: host disconnected")
	}()

	for {
		env, err := w.read()
		if err != nil {
			if err != net.ErrClosed {
				s.log.Warnf("bridge: read error: %v", err)
			}
			return
		}

		switch {
		case env.IsRequest():
			s.dispatch(w, env)
		case env.IsReply():
			s.deliverReply(env)
		default:
			s.log.Warn("bridge: dropping envelope with neither method nor id")
		}
	}
}

// dispatch handles one inbound call and, when the caller awaits a reply,
// answers it before the next envelope from that connection is read.
func (s *Server) dispatch(w *wire, env *Envelope) {
	result, callErr := s.handler.HandleCall(env.Method, env.Args)

	if env.ID == "" {
		if callErr != nil {
			s.log.Warnf("bridge: notification %s failed: %v", env.Method, callErr)
		}
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
	if err := w.write(reply); err != nil {
		s.log.Warnf("bridge: failed to send reply for %s: %v", env.Method, err)
	}
}

// deliverReply routes a reply envelope to the goroutine awaiting it.
func (s *Server) deliverReply(env *Envelope) {
	s.mu.Lock()
	ch, ok := s.pending[env.ID]
	if ok {
		delete(s.pending, env.ID)
	}
	s.mu.Unlock()

	if !ok {
		s.log.Debugf("bridge: unsolicited reply %s dropped", env.ID)
		return
	}
	ch <- env
}

// Notify invokes method on every connected host without awaiting a reply.
func (s *Server) Notify(method string, args interface{}) {
	raw, err := json.Marshal(args)
	if err != nil {
		s.log.Warnf("bridge: failed to marshal args for %s: %v", method, err)
		return
	}
	env := &Envelope{Method: method, Args: raw}

	s.mu.Lock()
	conns := make([]*wire, 0, len(s.conns))
	for w := range s.conns {
		conns = append(conns, w)
	}
	s.mu.Unlock()

	for _, w := range conns {
		if err := w.write(env); err != nil {
			// A failed or timed-out write may leave a partial frame behind,
			// so the connection is unusable from here on.
			s.log.Warnf("bridge: failed to notify %s, dropping host: %v", method, err)
			_ = w.close()
		}
	}
}

// Invoke calls method on every connected host and waits for the first reply.
// The daemon itself never calls this from its event loop; it exists for
// control tooling and host round-trips.
func (s *Server) Invoke(ctx context.Context, method string, args interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	id := uuid.NewString()
	ch := make(chan *Envelope, 1)

	s.mu.Lock()
	s.pending[id] = ch
	conns := make([]*wire, 0, len(s.conns))
	for w := range s.conns {
		conns = append(conns, w)
	}
	s.mu.Unlock()

	if len(conns) == 0 {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return nil, fmt.Errorf("no host connected")
	}

	env := &Envelope{ID: id, Method: method, Args: raw}
	for _, w := range conns {
		if err := w.write(env); err != nil {
			s.log.Warnf("bridge: failed to invoke %s, dropping host: %v", method, err)
			_ = w.close()
		}
	}

	select {
	case reply := <-ch:
		if reply.Error != nil {
			return nil, reply.Error
		}
		return reply.Result, nil
	case <-ctx.Done():
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return nil, ctx.Err()
	}
}

// ConnectedHosts returns the number of currently connected host connections.
func (s *Server) ConnectedHosts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close stops accepting connections and disconnects all hosts.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conns := make([]*wire, 0, len(s.conns))
	for w := range s.conns {
		conns = append(conns, w)
	}
	s.mu.Unlock()

	for _, w := range conns {
		_ = w.close()
	}
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}
