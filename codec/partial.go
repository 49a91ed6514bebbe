package codec

// PartialFrame is the result of decoding only a frame's fixed header plus
// remaining-length prefix: the type-bearing bits, the declared remaining
// length, and whatever payload bytes were available alongside them.
type PartialFrame struct {
	Header  FixedHeader
	Payload []byte
}

// DecodePartialFrame decodes the fixed header and remaining-length prefix
// from the head of data, then takes as much of the declared payload as data
// actually holds. It returns the partial frame and the number of bytes of
// data consumed (header + however much payload was available).
//
// A short read past the header (fewer bytes than the two-byte minimum fixed
// header) is reported as ErrUnexpectedEOF, distinguishing "wait for more
// bytes" from a genuinely malformed remaining-length field.
func DecodePartialFrame(data []byte) (PartialFrame, int, error) {
	if len(data) < 1 {
		return PartialFrame{}, 0, ErrUnexpectedEOF
	}
	t, dup, qos, retain, err := decodeTypeAndFlags(data[0])
	if err != nil {
		return PartialFrame{}, 0, err
	}

	rl, rlSize, err := DecodeRemainingLengthFromBytes(data[1:])
	if err != nil {
		return PartialFrame{}, 0, err
	}

	headerSize := 1 + rlSize
	available := data[headerSize:]
	take := len(available)
	if uint32(take) > rl {
		take = int(rl)
	}

	payload := make([]byte, take)
	copy(payload, available[:take])

	return PartialFrame{
		Header: FixedHeader{
			Type:            t,
			Dup:             dup,
			QoS:             qos,
			Retain:          retain,
			RemainingLength: rl,
		},
		Payload: payload,
	}, headerSize + take, nil
}
