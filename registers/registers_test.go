package registers

import (
	"testing"

	"github.com/axmq/mqttc/codec"
	"github.com/stretchr/testify/assert"
)

func TestSentInFlightAddRemove(t *testing.T) {
	r := New()
	msg := NewPendingMessage(codec.Frame{Type: codec.Publish}, 100)

	r2 := r.AddSentInFlight(5, msg)
	assert.Len(t, r2.SentInFlight, 1)
	assert.Empty(t, r.SentInFlight, "original Registers value must be untouched")

	r3 := r2.RemoveSentInFlight(5)
	assert.Empty(t, r3.SentInFlight)

	// Removing an absent id is a no-op, not an error.
	r4 := r3.RemoveSentInFlight(999)
	assert.Empty(t, r4.SentInFlight)
}

func TestRecvInFlightDedupMembership(t *testing.T) {
	r := New()
	assert.False(t, r.HasRecvInFlight(1))

	r = r.AddRecvInFlight(1)
	assert.True(t, r.HasRecvInFlight(1))

	r = r.RemoveRecvInFlight(1)
	assert.False(t, r.HasRecvInFlight(1))
}

func TestAllocateMessageIDSkipsTaken(t *testing.T) {
	r := New()
	r = r.AddSentInFlight(1, NewPendingMessage(codec.Frame{}, 0))
	r = r.AddSentInFlight(2, NewPendingMessage(codec.Frame{}, 0))

	id, next := r.AllocateMessageID(1)
	assert.Equal(t, uint16(3), id)
	assert.Equal(t, uint16(4), next)
}

func TestAllocateMessageIDWrapsPastZero(t *testing.T) {
	r := New()
	id, next := r.AllocateMessageID(0xFFFF)
	assert.Equal(t, uint16(0xFFFF), id)
	assert.Equal(t, uint16(1), next, "id 0 is never allocated; wraps straight to 1")
}

func TestClearInFlightTables(t *testing.T) {
	r := New().
		AddSentInFlight(1, NewPendingMessage(codec.Frame{}, 0)).
		AddRecvInFlight(2)

	r = r.ClearInFlightTables()
	assert.Empty(t, r.SentInFlight)
	assert.Empty(t, r.RecvInFlight)
}

func TestPendingMessageMarkAttemptSetsDupAfterFirst(t *testing.T) {
	msg := NewPendingMessage(codec.Frame{Type: codec.Publish, Dup: false}, 100)
	assert.False(t, msg.Frame.Dup)

	msg = msg.MarkAttempt(200)
	assert.True(t, msg.Frame.Dup)
	assert.Equal(t, 2, msg.AttemptCount)
}
