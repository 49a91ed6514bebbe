package codec

import (
	"bytes"
	"io"
)

// protocolName31 and protocolLevel31 are the fixed bytes every MQTT 3.1
// Connect packet's variable header begins with, per spec.md §6.5: the
// six-byte token "MQIsdp" behind its two-byte length prefix (00 06), and
// protocol level 3. MQTT 3.1.1/5 clients send "MQTT"/level 4 or 5
// instead; this codec only ever speaks 3.1.
var protocolName31 = []byte{0x00, 0x06, 0x4D, 0x51, 0x49, 0x73, 0x64, 0x70}

const protocolLevel31 = 0x03

const (
	connectFlagCleanSession = 0x02
	connectFlagWill         = 0x04
	connectFlagWillQoSShift = 3
	connectFlagWillQoSMask  = 0x18
	connectFlagWillRetain   = 0x20
	connectFlagPassword     = 0x40
	connectFlagUsername     = 0x80
)

func encodeConnect(w io.Writer, body ConnectBody) error {
	if _, err := w.Write(protocolName31); err != nil {
		return err
	}
	if _, err := w.Write([]byte{protocolLevel31}); err != nil {
		return err
	}

	var flags byte
	if body.CleanSession {
		flags |= connectFlagCleanSession
	}
	if body.HasWill {
		flags |= connectFlagWill
		flags |= byte(body.WillQoS) << connectFlagWillQoSShift
		if body.WillRetain {
			flags |= connectFlagWillRetain
		}
	}
	if body.HasPassword {
		flags |= connectFlagPassword
	}
	if body.HasUsername {
		flags |= connectFlagUsername
	}
	if _, err := w.Write([]byte{flags}); err != nil {
		return err
	}

	if err := writeUint16(w, body.KeepAliveSeconds); err != nil {
		return err
	}

	if err := WriteUTF8String(w, body.ClientID); err != nil {
		return err
	}
	if body.HasWill {
		if err := WriteUTF8String(w, body.WillTopic); err != nil {
			return err
		}
		if err := writeUint16(w, uint16(len(body.WillMessage))); err != nil {
			return err
		}
		if _, err := w.Write(body.WillMessage); err != nil {
			return err
		}
	}
	if body.HasUsername {
		if err := WriteUTF8String(w, body.Username); err != nil {
			return err
		}
	}
	if body.HasPassword {
		if err := writeUint16(w, uint16(len(body.Password))); err != nil {
			return err
		}
		if _, err := w.Write(body.Password); err != nil {
			return err
		}
	}
	return nil
}

func decodeConnect(r *bytes.Reader) (ConnectBody, error) {
	name := make([]byte, len(protocolName31))
	if _, err := io.ReadFull(r, name); err != nil {
		return ConnectBody{}, ErrTruncatedPayload
	}
	var level [1]byte
	if _, err := io.ReadFull(r, level[:]); err != nil {
		return ConnectBody{}, ErrTruncatedPayload
	}
	if !bytes.Equal(name, protocolName31) || level[0] != protocolLevel31 {
		return ConnectBody{}, ErrUnsupportedProtocolLevel
	}

	var flagsByte [1]byte
	if _, err := io.ReadFull(r, flagsByte[:]); err != nil {
		return ConnectBody{}, ErrTruncatedPayload
	}
	flags := flagsByte[0]

	keepAlive, err := readUint16(r)
	if err != nil {
		return ConnectBody{}, err
	}

	clientID, err := ReadUTF8String(r)
	if err != nil {
		return ConnectBody{}, err
	}

	body := ConnectBody{
		ClientID:         clientID,
		CleanSession:     flags&connectFlagCleanSession != 0,
		KeepAliveSeconds: keepAlive,
		HasWill:          flags&connectFlagWill != 0,
		WillQoS:          QoS((flags & connectFlagWillQoSMask) >> connectFlagWillQoSShift),
		WillRetain:       flags&connectFlagWillRetain != 0,
		HasUsername:      flags&connectFlagUsername != 0,
		HasPassword:      flags&connectFlagPassword != 0,
	}

	if body.HasWill {
		willTopic, err := ReadUTF8String(r)
		if err != nil {
			return ConnectBody{}, err
		}
		willLen, err := readUint16(r)
		if err != nil {
			return ConnectBody{}, err
		}
		willMessage := make([]byte, willLen)
		if willLen > 0 {
			if _, err := io.ReadFull(r, willMessage); err != nil {
				return ConnectBody{}, ErrMissingWillFields
			}
		}
		body.WillTopic = willTopic
		body.WillMessage = willMessage
	}
	if body.HasUsername {
		username, err := ReadUTF8String(r)
		if err != nil {
			return ConnectBody{}, err
		}
		body.Username = username
	}
	if body.HasPassword {
		passLen, err := readUint16(r)
		if err != nil {
			return ConnectBody{}, err
		}
		password := make([]byte, passLen)
		if passLen > 0 {
			if _, err := io.ReadFull(r, password); err != nil {
				return ConnectBody{}, ErrTruncatedPayload
			}
		}
		body.Password = password
	}

	return body, nil
}
