package transport

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
)

// connState mirrors the teacher's ConnectionState enum (network/connection.go),
// trimmed to the states a single outbound client connection actually visits.
type connState int32

const (
	stateIdle connState = iota
	stateConnecting
	stateConnected
	stateClosed
)

// TCPTransport is a Transport backed by a plain net.Conn, adapted from
// axmq-ax's network.Connection: deadline-free here (the engine's own
// keep-alive timer is the only timeout policy), but keeping the same
// byte-counter and close-once shape.
type TCPTransport struct {
	dialer net.Dialer

	mu    sync.Mutex
	conn  net.Conn
	state atomic.Int32

	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64

	events    chan Event
	closeOnce sync.Once
}

// NewTCPTransport returns an unconnected TCP transport.
func NewTCPTransport() *TCPTransport {
	return &TCPTransport{events: make(chan Event, 64)}
}

func (t *TCPTransport) Events() <-chan Event { return t.events }

func (t *TCPTransport) Connect(ctx context.Context, remoteAddr string) error {
	if !t.state.CompareAndSwap(int32(stateIdle), int32(stateConnecting)) {
		return ErrAlreadyConnected
	}

	go func() {
		conn, err := t.dialer.DialContext(ctx, "tcp", remoteAddr)
		if err != nil {
			t.state.Store(int32(stateClosed))
			t.emit(Event{Kind: EvtConnectFailed, Err: err})
			close(t.events)
			return
		}

		t.mu.Lock()
		t.conn = conn
		t.mu.Unlock()
		t.state.Store(int32(stateConnected))
		t.emit(Event{Kind: EvtConnected})

		t.readPump(conn)
	}()

	return nil
}

func (t *TCPTransport) readPump(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			t.bytesRead.Add(uint64(n))
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			t.emit(Event{Kind: EvtReceived, Received: chunk})
		}
		if err != nil {
			wasClosed := connState(t.state.Swap(int32(stateClosed))) == stateClosed
			if wasClosed {
				t.emit(Event{Kind: EvtClosed})
			} else {
				t.emit(Event{Kind: EvtTerminated, Err: err})
			}
			close(t.events)
			return
		}
	}
}

func (t *TCPTransport) Write(b []byte) error {
	if connState(t.state.Load()) != stateConnected {
		return ErrNotConnected
	}
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	n, err := conn.Write(b)
	t.bytesWritten.Add(uint64(n))
	return err
}

func (t *TCPTransport) Close() error {
	return t.shutdown(stateClosed)
}

func (t *TCPTransport) Abort() error {
	return t.shutdown(stateClosed)
}

func (t *TCPTransport) shutdown(target connState) error {
	t.state.Store(int32(target))
	var err error
	t.closeOnce.Do(func() {
		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

// BytesRead returns the total bytes received, for diagnostics.
func (t *TCPTransport) BytesRead() uint64 { return t.bytesRead.Load() }

// BytesWritten returns the total bytes written, for diagnostics.
func (t *TCPTransport) BytesWritten() uint64 { return t.bytesWritten.Load() }

func (t *TCPTransport) emit(ev Event) { t.events <- ev }
