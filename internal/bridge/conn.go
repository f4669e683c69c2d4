package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

// maxLineBytes bounds a single envelope line. Menus are small; this is only a
// guard against a runaway peer.
const maxLineBytes = 1 << 20

// writeTimeout caps a single envelope write so a host that stops draining its
// socket cannot wedge the writer. Replies carry no deadline on the read side.
var writeTimeout = 5 * time.Second

// wire frames envelopes as newline-delimited JSON over a stream. Writes are
// serialized; reads happen from a single loop per connection.
type wire struct {
	conn    net.Conn
	scanner *bufio.Scanner

	writeMu sync.Mutex
}

func newWire(conn net.Conn) *wire {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineBytes)
	return &wire{conn: conn, scanner: scanner}
}

// read blocks until the next envelope arrives or the connection closes.
func (w *wire) read() (*Envelope, error) {
	for w.scanner.Scan() {
		line := w.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return nil, fmt.Errorf("malformed envelope: %w", err)
		}
		return &env, nil
	}
	if err := w.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, net.ErrClosed
}

// write sends one envelope followed by a newline.
func (w *wire) write(env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err = w.conn.Write(append(data, '\n'))
	return err
}

func (w *wire) close() error {
	return w.conn.Close()
}
