package codec

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Frame is a decoded or to-be-encoded MQTT 3.1 control packet: a fixed
// header plus one of the packet-specific body types below in Body.
// PingReq, PingResp, and Disconnect carry a nil Body.
type Frame struct {
	Type   PacketType
	Dup    bool
	QoS    QoS
	Retain bool
	Body   any
}

// ConnectBody is the Connect packet's variable header and payload.
type ConnectBody struct {
	ClientID         string
	CleanSession     bool
	KeepAliveSeconds uint16
	WillTopic        string
	WillMessage      []byte
	WillQoS          QoS
	WillRetain       bool
	HasWill          bool
	Username         string
	HasUsername      bool
	Password         []byte
	HasPassword      bool
}

// ConnackBody is the Connack packet's payload. MQTT 3.1 carries no session
// present bit (that is a 3.1.1 addition); only a reserved byte and the
// return code.
type ConnackBody struct {
	ReturnCode byte
}

// PublishBody is the Publish packet's variable header and payload.
// PacketID is meaningful only when the frame's QoS is AtLeastOnce or
// ExactlyOnce.
type PublishBody struct {
	Topic    string
	PacketID uint16
	Payload  []byte
}

// PacketIDBody is the shared shape of PubAck, PubRec, PubRel, PubComp, and
// UnsubAck: a two-byte packet identifier and nothing else.
type PacketIDBody struct {
	PacketID uint16
}

// SubscriptionRequest is one (filter, requested QoS) pair inside a
// Subscribe packet.
type SubscriptionRequest struct {
	Filter string
	QoS    QoS
}

// SubscribeBody is the Subscribe packet's variable header and payload.
type SubscribeBody struct {
	PacketID uint16
	Filters  []SubscriptionRequest
}

// SubAckBody is the SubAck packet's variable header and payload. ReturnCodes
// holds one byte per requested filter: the granted QoS, or 0x80 on failure.
type SubAckBody struct {
	PacketID    uint16
	ReturnCodes []byte
}

// UnsubscribeBody is the Unsubscribe packet's variable header and payload.
type UnsubscribeBody struct {
	PacketID uint16
	Filters  []string
}

// Encode writes f's wire representation to w.
func (f Frame) Encode(w io.Writer) error {
	var payload bytes.Buffer
	if err := encodeBody(&payload, f); err != nil {
		return err
	}

	rl, err := EncodeRemainingLength(uint32(payload.Len()))
	if err != nil {
		return err
	}

	firstByte := encodeTypeAndFlags(f.Type, f.Dup, f.QoS, f.Retain)
	if _, err := w.Write([]byte{firstByte}); err != nil {
		return err
	}
	if _, err := w.Write(rl); err != nil {
		return err
	}
	_, err = w.Write(payload.Bytes())
	return err
}

// DecodeFrame reads one complete MQTT control packet from r: fixed header,
// remaining length, and exactly that many payload bytes.
func DecodeFrame(r io.Reader) (Frame, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return Frame{}, ErrUnexpectedEOF
	}
	t, dup, qos, retain, err := decodeTypeAndFlags(first[0])
	if err != nil {
		return Frame{}, err
	}
	rl, _, err := DecodeRemainingLength(r)
	if err != nil {
		return Frame{}, err
	}
	payload := make([]byte, rl)
	if rl > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, ErrTruncatedPayload
		}
	}

	f := Frame{Type: t, Dup: dup, QoS: qos, Retain: retain}
	body := bytes.NewReader(payload)
	if err := decodeBody(body, &f); err != nil {
		return Frame{}, err
	}
	if body.Len() != 0 {
		return Frame{}, ErrTrailingBytes
	}
	return f, nil
}

// DecodeFrameFromBytes is a convenience wrapper for callers already holding
// an in-memory packet.
func DecodeFrameFromBytes(data []byte) (Frame, error) {
	return DecodeFrame(bytes.NewReader(data))
}

func encodeBody(w io.Writer, f Frame) error {
	switch f.Type {
	case Connect:
		body, ok := f.Body.(ConnectBody)
		if !ok {
			return ErrUnknownPacketType
		}
		return encodeConnect(w, body)
	case Connack:
		body, ok := f.Body.(ConnackBody)
		if !ok {
			return ErrUnknownPacketType
		}
		_, err := w.Write([]byte{0x00, body.ReturnCode})
		return err
	case Publish:
		body, ok := f.Body.(PublishBody)
		if !ok {
			return ErrUnknownPacketType
		}
		if err := WriteUTF8String(w, body.Topic); err != nil {
			return err
		}
		if f.QoS != AtMostOnce {
			if err := writeUint16(w, body.PacketID); err != nil {
				return err
			}
		}
		_, err := w.Write(body.Payload)
		return err
	case PubAck, PubRec, PubRel, PubComp:
		body, ok := f.Body.(PacketIDBody)
		if !ok {
			return ErrUnknownPacketType
		}
		return writeUint16(w, body.PacketID)
	case Subscribe:
		body, ok := f.Body.(SubscribeBody)
		if !ok {
			return ErrUnknownPacketType
		}
		if err := writeUint16(w, body.PacketID); err != nil {
			return err
		}
		for _, sub := range body.Filters {
			if err := WriteUTF8String(w, sub.Filter); err != nil {
				return err
			}
			if _, err := w.Write([]byte{byte(sub.QoS)}); err != nil {
				return err
			}
		}
		return nil
	case SubAck:
		body, ok := f.Body.(SubAckBody)
		if !ok {
			return ErrUnknownPacketType
		}
		if err := writeUint16(w, body.PacketID); err != nil {
			return err
		}
		_, err := w.Write(body.ReturnCodes)
		return err
	case Unsubscribe:
		body, ok := f.Body.(UnsubscribeBody)
		if !ok {
			return ErrUnknownPacketType
		}
		if err := writeUint16(w, body.PacketID); err != nil {
			return err
		}
		for _, filter := range body.Filters {
			if err := WriteUTF8String(w, filter); err != nil {
				return err
			}
		}
		return nil
	case UnsubAck:
		body, ok := f.Body.(PacketIDBody)
		if !ok {
			return ErrUnknownPacketType
		}
		return writeUint16(w, body.PacketID)
	case PingReq, PingResp, Disconnect:
		return nil
	default:
		return ErrUnknownPacketType
	}
}

func decodeBody(r *bytes.Reader, f *Frame) error {
	switch f.Type {
	case Connect:
		body, err := decodeConnect(r)
		if err != nil {
			return err
		}
		f.Body = body
		return nil
	case Connack:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return ErrTruncatedPayload
		}
		f.Body = ConnackBody{ReturnCode: buf[1]}
		return nil
	case Publish:
		topic, err := ReadUTF8String(r)
		if err != nil {
			return err
		}
		var packetID uint16
		if f.QoS != AtMostOnce {
			packetID, err = readUint16(r)
			if err != nil {
				return err
			}
		}
		payload := make([]byte, r.Len())
		if _, err := io.ReadFull(r, payload); err != nil {
			return ErrTruncatedPayload
		}
		f.Body = PublishBody{Topic: topic, PacketID: packetID, Payload: payload}
		return nil
	case PubAck, PubRec, PubRel, PubComp, UnsubAck:
		id, err := readUint16(r)
		if err != nil {
			return err
		}
		f.Body = PacketIDBody{PacketID: id}
		return nil
	case Subscribe:
		id, err := readUint16(r)
		if err != nil {
			return err
		}
		var filters []SubscriptionRequest
		for r.Len() > 0 {
			filter, err := ReadUTF8String(r)
			if err != nil {
				return err
			}
			var qosByte [1]byte
			if _, err := io.ReadFull(r, qosByte[:]); err != nil {
				return ErrTruncatedPayload
			}
			qos := QoS(qosByte[0])
			if !qos.IsValid() {
				return ErrInvalidQoS
			}
			filters = append(filters, SubscriptionRequest{Filter: filter, QoS: qos})
		}
		f.Body = SubscribeBody{PacketID: id, Filters: filters}
		return nil
	case SubAck:
		id, err := readUint16(r)
		if err != nil {
			return err
		}
		codes := make([]byte, r.Len())
		if _, err := io.ReadFull(r, codes); err != nil {
			return ErrTruncatedPayload
		}
		f.Body = SubAckBody{PacketID: id, ReturnCodes: codes}
		return nil
	case Unsubscribe:
		id, err := readUint16(r)
		if err != nil {
			return err
		}
		var filters []string
		for r.Len() > 0 {
			filter, err := ReadUTF8String(r)
			if err != nil {
				return err
			}
			filters = append(filters, filter)
		}
		f.Body = UnsubscribeBody{PacketID: id, Filters: filters}
		return nil
	case PingReq, PingResp, Disconnect:
		return nil
	default:
		return ErrUnknownPacketType
	}
}

func writeUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, ErrTruncatedPayload
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}
