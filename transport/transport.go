// Package transport defines the engine's byte-transport collaborator
// (spec.md §6.3) plus two concrete adapters: a plain TCP connection and a
// WebSocket connection.
package transport

import "context"

// EventKind discriminates the Events channel's element type.
type EventKind int

const (
	EvtConnected EventKind = iota
	EvtConnectFailed
	EvtReceived
	EvtClosed
	EvtTerminated
)

// Event is one inbound transport notification (spec.md §6.3).
type Event struct {
	Kind     EventKind
	Received []byte
	Err      error
}

// Transport is the abstract byte-stream collaborator the engine drives. A
// Transport instance is single-use: one Connect, then a stream of Events
// terminated by Closed or Terminated.
type Transport interface {
	// Connect begins connecting to remoteAddr. Connected or ConnectFailed
	// arrives on Events.
	Connect(ctx context.Context, remoteAddr string) error
	// Write sends bytes to the peer. Must not be called before Connected.
	Write(b []byte) error
	// Close begins an orderly shutdown.
	Close() error
	// Abort forcibly tears down the connection without waiting for
	// in-flight writes or reads to settle.
	Abort() error
	// Events is the inbound notification channel, closed once after a
	// terminal event (Closed, Terminated, or ConnectFailed) is delivered.
	Events() <-chan Event
}

