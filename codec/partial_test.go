package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePartialFrameCompleteInOneShot(t *testing.T) {
	partial, n, err := DecodePartialFrame(capturedConnect)
	require.NoError(t, err)
	assert.Equal(t, len(capturedConnect), n)
	assert.Equal(t, Connect, partial.Header.Type)
	assert.Equal(t, uint32(0x2a), partial.Header.RemainingLength)
	assert.Len(t, partial.Payload, int(partial.Header.RemainingLength))
}

func TestDecodePartialFrameShortPayload(t *testing.T) {
	partial, n, err := DecodePartialFrame(capturedConnect[:20])
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Len(t, partial.Payload, 18) // 20 - (1 header byte + 1 rl byte)
	assert.Less(t, uint32(len(partial.Payload)), partial.Header.RemainingLength)
}

func TestDecodePartialFrameZeroLengthPayload(t *testing.T) {
	// PingReq: type/flags byte 0xC0, remaining length 0.
	partial, n, err := DecodePartialFrame([]byte{0xC0, 0x00})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, partial.Payload)
	assert.Equal(t, uint32(0), partial.Header.RemainingLength)
}
