package registers

import "github.com/axmq/mqttc/codec"

// PendingMessage is the value stored per SentInFlight entry: a QoS 1/2
// frame awaiting acknowledgement, plus enough delivery metadata for a
// reconnect policy layered above this core to decide whether and how to
// retransmit it (spec.md §9 open question #1; see DESIGN.md). The core
// itself never reads AttemptCount/CreatedAtMs to act automatically.
type PendingMessage struct {
	Frame         codec.Frame
	CreatedAtMs   int64
	LastAttemptMs int64
	AttemptCount  int
}

// NewPendingMessage records a just-sent frame's first attempt.
func NewPendingMessage(frame codec.Frame, nowMs int64) PendingMessage {
	return PendingMessage{
		Frame:         frame,
		CreatedAtMs:   nowMs,
		LastAttemptMs: nowMs,
		AttemptCount:  1,
	}
}

// MarkAttempt returns a copy of m with its attempt bookkeeping advanced and,
// from the second attempt on, the stored frame's Dup bit set so a caller
// that chooses to retransmit it does so correctly.
func (m PendingMessage) MarkAttempt(nowMs int64) PendingMessage {
	m.AttemptCount++
	m.LastAttemptMs = nowMs
	if m.AttemptCount > 1 {
		m.Frame.Dup = true
	}
	return m
}
