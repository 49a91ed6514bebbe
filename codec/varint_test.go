package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingLengthBoundaries(t *testing.T) {
	cases := []struct {
		value uint32
		hex   []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{2097151, []byte{0xff, 0xff, 0x7f}},
		{2097152, []byte{0x80, 0x80, 0x80, 0x01}},
		{268435455, []byte{0xff, 0xff, 0xff, 0x7f}},
	}

	for _, tc := range cases {
		encoded, err := EncodeRemainingLength(tc.value)
		require.NoError(t, err)
		assert.Equal(t, tc.hex, encoded, "encode(%d)", tc.value)

		decoded, n, err := DecodeRemainingLength(bytes.NewReader(tc.hex))
		require.NoError(t, err)
		assert.Equal(t, tc.value, decoded)
		assert.Equal(t, len(tc.hex), n)
	}
}

func TestEncodeRemainingLengthOutOfRange(t *testing.T) {
	_, err := EncodeRemainingLength(MaxRemainingLength + 1)
	assert.ErrorIs(t, err, ErrRemainingLengthOutOfRange)
}

func TestDecodeRemainingLengthMalformed(t *testing.T) {
	// Five bytes, all with the continuation bit set: no terminator ever
	// appears within the 4-byte budget.
	_, _, err := DecodeRemainingLength(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x01}))
	assert.ErrorIs(t, err, ErrMalformedRemainingLength)
}

func TestDecodeRemainingLengthFromBytesShortRead(t *testing.T) {
	_, _, err := DecodeRemainingLengthFromBytes([]byte{0x80, 0x80})
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}
