package codec

import "errors"

var (
	// ErrMalformedRemainingLength is returned when a remaining-length field
	// carries a fifth continuation byte.
	ErrMalformedRemainingLength = errors.New("codec: malformed remaining length")
	// ErrRemainingLengthOutOfRange is returned by the encoder for values
	// outside [0, 268435455].
	ErrRemainingLengthOutOfRange = errors.New("codec: remaining length out of range")
	// ErrUnexpectedEOF is returned when fewer bytes are available than a
	// field declares it needs.
	ErrUnexpectedEOF = errors.New("codec: unexpected end of input")
	// ErrInvalidReservedType is returned for packet type 0 (Reserved).
	ErrInvalidReservedType = errors.New("codec: reserved packet type not allowed")
	// ErrUnknownPacketType is returned for packet types MQTT 3.1 does not define.
	ErrUnknownPacketType = errors.New("codec: unknown packet type")
	// ErrInvalidFlags is returned when the reserved fixed-header flag bits
	// for a packet type do not match the value MQTT 3.1 mandates.
	ErrInvalidFlags = errors.New("codec: invalid fixed header flags")
	// ErrInvalidQoS is returned for a QoS value outside {0,1,2}.
	ErrInvalidQoS = errors.New("codec: invalid QoS level")
	// ErrTruncatedPayload is returned when the declared remaining length
	// exceeds the bytes actually supplied to a full-frame decode.
	ErrTruncatedPayload = errors.New("codec: truncated payload")
	// ErrTrailingBytes is returned when a full-frame decode leaves unread
	// bytes inside the declared remaining length.
	ErrTrailingBytes = errors.New("codec: trailing bytes in payload")
	// ErrInvalidUTF8String is returned by ValidateUTF8String.
	ErrInvalidUTF8String = errors.New("codec: invalid utf-8 string")
	// ErrNullCharacter is returned when a UTF-8 string contains U+0000.
	ErrNullCharacter = errors.New("codec: utf-8 string contains null character")
	// ErrSurrogateCodePoint is returned for UTF-16 surrogate code points.
	ErrSurrogateCodePoint = errors.New("codec: utf-8 string contains surrogate code point")
	// ErrNonCharacterCodePoint is returned for Unicode non-characters.
	ErrNonCharacterCodePoint = errors.New("codec: utf-8 string contains non-character code point")
	// ErrUnsupportedProtocolLevel is returned when a Connect packet's
	// protocol name/level do not match MQTT 3.1 ("MQIsdp", level 3).
	ErrUnsupportedProtocolLevel = errors.New("codec: unsupported protocol name or level")
	// ErrMissingWillFields is returned when the connect flags declare a will
	// but the will message is shorter than its length prefix. A missing will
	// topic or message length prefix is reported as ErrUnexpectedEOF or
	// ErrTruncatedPayload instead.
	ErrMissingWillFields = errors.New("codec: will flag set without will topic/message")
)
