// Package registers holds the mutable protocol state threaded through one
// engine's stimulus loop, and the pure mutators handlers use to transform
// it. Registers are owned exclusively by the engine (spec.md §5); nothing
// here performs I/O.
package registers

import (
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/reassembler"
)

// ClientSink is the non-owning handle handlers use to address
// SendToClient actions; the engine supplies the concrete implementation.
type ClientSink interface {
	// no methods: identity-only handle, matching spec.md §9's "all
	// relations are by identity, not ownership".
}

// TransportHandle is the non-owning handle identifying the active
// transport connection.
type TransportHandle interface {
	ID() string
}

// TimerHandle identifies a scheduled wakeup so it can later be cancelled.
type TimerHandle interface{}

// ReadBuffer mirrors reassembler.Snapshot without registers depending on
// the reassembler package's Reassembler type, only its exported Snapshot
// value — keeping registers a leaf relative to the codec-adjacent packages
// above it in the dependency order (spec.md §2).
type ReadBuffer = reassembler.Snapshot

// Registers is the core's mutable state (spec.md §3).
type Registers struct {
	Client    ClientSink
	Transport TransportHandle
	Watching  bool // true while subscribed to the transport's termination event

	KeepAliveMs         int64
	LastSentAtMs        int64
	PingResponsePending bool
	TimerHandle         TimerHandle

	SentInFlight  map[uint16]PendingMessage
	RecvInFlight  map[uint16]struct{}
	ReadBufferVal ReadBuffer
}

// New returns a fresh Registers for an unconnected engine.
func New() Registers {
	return Registers{
		SentInFlight: make(map[uint16]PendingMessage),
		RecvInFlight: make(map[uint16]struct{}),
	}
}

// --- pure mutators (spec.md §4.5) ---

func (r Registers) SetClient(c ClientSink) Registers {
	r.Client = c
	return r
}

func (r Registers) SetTransport(t TransportHandle) Registers {
	r.Transport = t
	return r
}

func (r Registers) WatchTransport() Registers {
	r.Watching = true
	return r
}

func (r Registers) UnwatchTransport() Registers {
	r.Watching = false
	r.Transport = nil
	return r
}

func (r Registers) SetKeepAlive(ms int64) Registers {
	r.KeepAliveMs = ms
	return r
}

func (r Registers) SetLastSentAt(ms int64) Registers {
	r.LastSentAtMs = ms
	return r
}

func (r Registers) SetPingPending(pending bool) Registers {
	r.PingResponsePending = pending
	return r
}

func (r Registers) SetTimerHandle(h TimerHandle) Registers {
	r.TimerHandle = h
	return r
}

func (r Registers) CancelTimer() Registers {
	r.TimerHandle = nil
	return r
}

// AddSentInFlight records a frame sent at QoS 1/2, pending acknowledgement
// (invariant I1).
func (r Registers) AddSentInFlight(id uint16, msg PendingMessage) Registers {
	next := cloneSent(r.SentInFlight)
	next[id] = msg
	r.SentInFlight = next
	return r
}

// RemoveSentInFlight drops id; removing an absent id is a no-op, matching
// the "if absent, ignore" rule for PubAck/PubComp handling (spec.md §4.3).
func (r Registers) RemoveSentInFlight(id uint16) Registers {
	next := cloneSent(r.SentInFlight)
	delete(next, id)
	r.SentInFlight = next
	return r
}

// AddRecvInFlight records a QoS 2 message id for which PubRec has been sent
// but PubComp has not (invariant I2).
func (r Registers) AddRecvInFlight(id uint16) Registers {
	next := cloneRecv(r.RecvInFlight)
	next[id] = struct{}{}
	r.RecvInFlight = next
	return r
}

func (r Registers) RemoveRecvInFlight(id uint16) Registers {
	next := cloneRecv(r.RecvInFlight)
	delete(next, id)
	r.RecvInFlight = next
	return r
}

// HasRecvInFlight reports whether id is awaiting a PubRel (used to detect a
// duplicate QoS 2 delivery per spec.md §4.3/§7).
func (r Registers) HasRecvInFlight(id uint16) bool {
	_, ok := r.RecvInFlight[id]
	return ok
}

func (r Registers) SetReadBuffer(b ReadBuffer) Registers {
	r.ReadBufferVal = b
	return r
}

// ClearInFlightTables drops every sent/received in-flight record, run on
// transport loss or explicit disconnect (spec.md §3 lifecycle).
func (r Registers) ClearInFlightTables() Registers {
	r.SentInFlight = make(map[uint16]PendingMessage)
	r.RecvInFlight = make(map[uint16]struct{})
	return r
}

// AllocateMessageID picks the next free packet identifier: monotonically
// increasing with wraparound, skipping any id already present in
// SentInFlight (spec.md §9 open question #2), the same shape as the
// teacher's QoS handler's packet-id allocator.
func (r Registers) AllocateMessageID(next uint16) (uint16, uint16) {
	id := next
	if id == 0 {
		id = 1
	}
	for {
		if _, taken := r.SentInFlight[id]; !taken {
			nextAfter := id + 1
			if nextAfter == 0 {
				nextAfter = 1
			}
			return id, nextAfter
		}
		id++
		if id == 0 {
			id = 1
		}
	}
}

func cloneSent(m map[uint16]PendingMessage) map[uint16]PendingMessage {
	next := make(map[uint16]PendingMessage, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	return next
}

func cloneRecv(m map[uint16]struct{}) map[uint16]struct{} {
	next := make(map[uint16]struct{}, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	return next
}
