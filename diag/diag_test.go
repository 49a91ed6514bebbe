package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axmq/mqttc/api"
)

type recordingHook struct {
	id   string
	seen []api.Event
}

func (h *recordingHook) ID() string { return h.id }
func (h *recordingHook) OnEvent(ev api.Event) { h.seen = append(h.seen, ev) }

func TestHookManagerAddRemoveDispatch(t *testing.T) {
	m := NewHookManager()
	h := &recordingHook{id: "a"}
	require.NoError(t, m.Add(h))
	require.ErrorIs(t, m.Add(h), ErrHookAlreadyExists)

	m.Dispatch(api.ConnectedEvent())
	require.Len(t, h.seen, 1)
	assert.Equal(t, api.EvtConnected, h.seen[0].Kind)

	require.NoError(t, m.Remove("a"))
	require.ErrorIs(t, m.Remove("a"), ErrHookNotFound)

	m.Dispatch(api.DisconnectedEvent())
	assert.Len(t, h.seen, 1) // unchanged after removal
}

func TestHookManagerRejectsEmptyID(t *testing.T) {
	m := NewHookManager()
	assert.ErrorIs(t, m.Add(nil), ErrEmptyHookID)
}

func TestRecorderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	require.NoError(t, rec.Record(1000, api.MessageEvent("a/b", []byte("hi"))))
	require.NoError(t, rec.Record(1001, api.ConnectedEvent()))

	records, err := ReadTraceRecords(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1000), records[0].TimestampMs)
	assert.Equal(t, "a/b", records[0].Event.Message.Topic)
	assert.Equal(t, int(api.EvtConnected), records[1].EventKind)
}
