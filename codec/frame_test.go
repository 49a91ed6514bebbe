package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedConnect is the exact byte literal from spec.md §6.5: clientId
// "test", will topic "test/topic", will message "test death", keep-alive
// 60s, will flag set, will QoS 1, will retain set, clean session not set:
// the flags byte 0x2c has bit 0x02 clear.
var capturedConnect = []byte{
	0x10, 0x2a, 0x00, 0x06, 0x4d, 0x51, 0x49, 0x73, 0x64, 0x70, 0x03, 0x2c,
	0x00, 0x3c, 0x00, 0x04, 0x74, 0x65, 0x73, 0x74, 0x00, 0x0a, 0x74, 0x65,
	0x73, 0x74, 0x2f, 0x74, 0x6f, 0x70, 0x69, 0x63, 0x00, 0x0a, 0x74, 0x65,
	0x73, 0x74, 0x20, 0x64, 0x65, 0x61, 0x74, 0x68,
}

func TestConnectCapture(t *testing.T) {
	f := Frame{
		Type: Connect,
		Body: ConnectBody{
			ClientID:         "test",
			CleanSession:     false,
			KeepAliveSeconds: 60,
			HasWill:          true,
			WillTopic:        "test/topic",
			WillMessage:      []byte("test death"),
			WillQoS:          AtLeastOnce,
			WillRetain:       true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))
	assert.Equal(t, capturedConnect, buf.Bytes())

	decoded, err := DecodeFrameFromBytes(capturedConnect)
	require.NoError(t, err)
	assert.Equal(t, f.Type, decoded.Type)
	assert.Equal(t, f.Body, decoded.Body)
}

func TestCodecRoundTrip(t *testing.T) {
	frames := []Frame{
		{
			Type: Connect,
			Body: ConnectBody{ClientID: "c1", CleanSession: true, KeepAliveSeconds: 30},
		},
		{Type: Connack, Body: ConnackBody{ReturnCode: 0}},
		{
			Type: Publish, QoS: AtMostOnce,
			Body: PublishBody{Topic: "a/b", Payload: []byte("hello")},
		},
		{
			Type: Publish, QoS: AtLeastOnce, Dup: true,
			Body: PublishBody{Topic: "a/b", PacketID: 7, Payload: []byte("hello")},
		},
		{Type: PubAck, Body: PacketIDBody{PacketID: 7}},
		{Type: PubRec, Body: PacketIDBody{PacketID: 7}},
		{Type: PubRel, QoS: AtLeastOnce, Body: PacketIDBody{PacketID: 7}},
		{Type: PubComp, Body: PacketIDBody{PacketID: 7}},
		{
			Type: Subscribe, QoS: AtLeastOnce,
			Body: SubscribeBody{PacketID: 3, Filters: []SubscriptionRequest{
				{Filter: "a/+", QoS: AtLeastOnce},
				{Filter: "b/#", QoS: ExactlyOnce},
			}},
		},
		{Type: SubAck, Body: SubAckBody{PacketID: 3, ReturnCodes: []byte{0x01, 0x80}}},
		{
			Type: Unsubscribe, QoS: AtLeastOnce,
			Body: UnsubscribeBody{PacketID: 4, Filters: []string{"a/+", "b/#"}},
		},
		{Type: UnsubAck, Body: PacketIDBody{PacketID: 4}},
		{Type: PingReq},
		{Type: PingResp},
		{Type: Disconnect},
	}

	for _, f := range frames {
		var buf bytes.Buffer
		require.NoError(t, f.Encode(&buf), "encode %s", f.Type)
		decoded, err := DecodeFrame(&buf)
		require.NoError(t, err, "decode %s", f.Type)
		assert.Equal(t, f, decoded, "round trip %s", f.Type)
		assert.Equal(t, 0, buf.Len(), "no trailing bytes after %s", f.Type)
	}
}

func TestDecodeFrameRejectsReservedType(t *testing.T) {
	_, err := DecodeFrameFromBytes([]byte{0x00, 0x00})
	assert.ErrorIs(t, err, ErrInvalidReservedType)
}

func TestDecodeFrameRejectsUnknownType(t *testing.T) {
	// Type 15 (AUTH) does not exist in MQTT 3.1.
	_, err := DecodeFrameFromBytes([]byte{0xF0, 0x00})
	assert.ErrorIs(t, err, ErrUnknownPacketType)
}

func TestDecodeFrameRejectsBadSubscribeFlags(t *testing.T) {
	// Subscribe must carry reserved flags 0b0010; this sets them to 0.
	_, err := DecodeFrameFromBytes([]byte{0x80, 0x00})
	assert.ErrorIs(t, err, ErrInvalidFlags)
}

func TestDecodeFrameRejectsTruncatedPayload(t *testing.T) {
	// PingReq has a zero remaining length in truth; claim 2 bytes follow
	// but supply none.
	_, err := DecodeFrame(bytes.NewReader([]byte{0xC0, 0x02}))
	assert.ErrorIs(t, err, ErrTruncatedPayload)
}

func TestDecodeFrameRejectsUnsupportedProtocolLevel(t *testing.T) {
	bad := make([]byte, len(capturedConnect))
	copy(bad, capturedConnect)
	bad[10] = 0x04 // claim protocol level 4 (MQTT 3.1.1) instead of 3
	_, err := DecodeFrameFromBytes(bad)
	assert.ErrorIs(t, err, ErrUnsupportedProtocolLevel)
}

func TestLargePublishRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 100*1024/16)
	f := Frame{
		Type: Publish, QoS: AtLeastOnce,
		Body: PublishBody{Topic: "bulk", PacketID: 99, Payload: payload},
	}
	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))
	// Remaining length for this payload needs 3 VLI bytes (> 16383).
	assert.GreaterOrEqual(t, buf.Len(), 16384)

	decoded, err := DecodeFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, f, decoded)
}
