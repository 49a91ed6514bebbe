package reassembler

import (
	"bytes"
	"testing"

	"github.com/axmq/mqttc/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, f codec.Frame) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))
	return buf.Bytes()
}

func TestReassemblyWholeFrameInOneChunk(t *testing.T) {
	r := New()
	wire := encode(t, codec.Frame{Type: codec.PingResp})

	frames, err := r.Feed(wire)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, codec.PingResp, frames[0].Type)
	assert.False(t, r.Snapshot().Present)
}

func TestChunkedReassembly(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 50000)
	f := codec.Frame{
		Type: codec.Publish, QoS: codec.AtLeastOnce,
		Body: codec.PublishBody{Topic: "a", PacketID: 1, Payload: payload},
	}
	wire := encode(t, f)

	split := len(wire) / 3
	r := New()

	frames, err := r.Feed(wire[:split])
	require.NoError(t, err)
	assert.Empty(t, frames)
	assert.True(t, r.Snapshot().Present)

	frames, err = r.Feed(wire[split:])
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, f, frames[0])
	assert.False(t, r.Snapshot().Present)
}

func TestInterleavedFramesInOneChunk(t *testing.T) {
	pingResp := encode(t, codec.Frame{Type: codec.PingResp})
	pubAck := encode(t, codec.Frame{Type: codec.PubAck, Body: codec.PacketIDBody{PacketID: 7}})

	chunk := append(append([]byte(nil), pingResp...), pubAck...)
	r := New()

	frames, err := r.Feed(chunk)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, codec.PingResp, frames[0].Type)
	assert.Equal(t, codec.PubAck, frames[1].Type)
	assert.Equal(t, uint16(7), frames[1].Body.(codec.PacketIDBody).PacketID)
}

func TestReassemblySplitLeavesLeftoverFrame(t *testing.T) {
	// The first chunk ends inside frame A's fixed header; the second
	// closes frame A and also contains the whole of frame B.
	a := encode(t, codec.Frame{Type: codec.PingResp})
	b := encode(t, codec.Frame{Type: codec.PubAck, Body: codec.PacketIDBody{PacketID: 3}})
	combined := append(append([]byte(nil), a...), b...)

	r := New()
	frames, err := r.Feed(combined[:1]) // only the first byte of A
	require.NoError(t, err)
	assert.Empty(t, frames)

	frames, err = r.Feed(combined[1:])
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, codec.PingResp, frames[0].Type)
	assert.Equal(t, codec.PubAck, frames[1].Type)
}

func TestReassemblyEmptyChunkIgnored(t *testing.T) {
	r := New()
	frames, err := r.Feed(nil)
	require.NoError(t, err)
	assert.Empty(t, frames)
	assert.False(t, r.Snapshot().Present)
}

func TestReassemblyFatalOnMalformedHeader(t *testing.T) {
	r := New()
	_, err := r.Feed([]byte{0x00, 0x00}) // reserved type 0
	assert.ErrorIs(t, err, codec.ErrInvalidReservedType)
}

func TestReassemblyMultipleFramesSequence(t *testing.T) {
	var wire []byte
	var want []codec.Frame
	for i := uint16(1); i <= 5; i++ {
		f := codec.Frame{Type: codec.PubAck, Body: codec.PacketIDBody{PacketID: i}}
		want = append(want, f)
		wire = append(wire, encode(t, f)...)
	}

	// Arbitrary partition into three chunks.
	r := New()
	var got []codec.Frame
	for _, chunk := range [][]byte{wire[:7], wire[7:13], wire[13:]} {
		frames, err := r.Feed(chunk)
		require.NoError(t, err)
		got = append(got, frames...)
	}

	assert.Equal(t, want, got)
	assert.False(t, r.Snapshot().Present)
}
