package transport

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// WSTransport is a Transport backed by a WebSocket connection, for MQTT
// deployments that tunnel the protocol through HTTP infrastructure (browser
// clients, firewall-constrained networks). Same event/state shape as
// TCPTransport; only the dial and read/write primitives differ.
type WSTransport struct {
	dialer websocket.Dialer

	mu    sync.Mutex
	conn  *websocket.Conn
	state atomic.Int32

	events    chan Event
	closeOnce sync.Once
}

// NewWSTransport returns an unconnected WebSocket transport. subprotocols
// should include "mqtt" / "mqttv3.1" per the target broker's expectations.
func NewWSTransport(subprotocols ...string) *WSTransport {
	d := websocket.Dialer{Subprotocols: subprotocols}
	return &WSTransport{dialer: d, events: make(chan Event, 64)}
}

func (t *WSTransport) Events() <-chan Event { return t.events }

func (t *WSTransport) Connect(ctx context.Context, remoteAddr string) error {
	if !t.state.CompareAndSwap(int32(stateIdle), int32(stateConnecting)) {
		return ErrAlreadyConnected
	}

	go func() {
		conn, _, err := t.dialer.DialContext(ctx, remoteAddr, nil)
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

func (t *WSTransport) readPump(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
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
		if msgType != websocket.BinaryMessage {
			continue
		}
		t.emit(Event{Kind: EvtReceived, Received: data})
	}
}

func (t *WSTransport) Write(b []byte) error {
	if connState(t.state.Load()) != stateConnected {
		return ErrNotConnected
	}
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, b)
}

func (t *WSTransport) Close() error {
	return t.shutdown()
}

func (t *WSTransport) Abort() error {
	return t.shutdown()
}

func (t *WSTransport) shutdown() error {
	t.state.Store(int32(stateClosed))
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

func (t *WSTransport) emit(ev Event) { t.events <- ev }
