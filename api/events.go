package api

import "github.com/axmq/mqttc/codec"

// EventKind discriminates the Event tagged union (spec.md §6.2).
type EventKind int

const (
	EvtConnected EventKind = iota
	EvtDisconnected
	EvtConnectionFailure
	EvtMessage
	EvtSubscribed
	EvtUnsubscribed
	EvtError
)

// ConnectionFailureReason enumerates why a connection attempt failed.
type ConnectionFailureReason int

const (
	ServerNotResponding ConnectionFailureReason = iota
	BadProtocolVersion
	IdentifierRejected
	ServerUnavailable
	BadUserNameOrPassword
	NotAuthorized
	TransportNotReady
)

// connackReturnCodeToReason maps the MQTT 3.1 Connack return code byte to
// the application-facing failure reason.
var connackReturnCodeToReason = map[byte]ConnectionFailureReason{
	0x01: BadProtocolVersion,
	0x02: IdentifierRejected,
	0x03: ServerUnavailable,
	0x04: BadUserNameOrPassword,
	0x05: NotAuthorized,
}

// ConnectionFailureReasonFromReturnCode translates a non-zero Connack
// return code into a ConnectionFailureReason, defaulting to
// ServerNotResponding for any value MQTT 3.1 does not define.
func ConnectionFailureReasonFromReturnCode(code byte) ConnectionFailureReason {
	if reason, ok := connackReturnCodeToReason[code]; ok {
		return reason
	}
	return ServerNotResponding
}

// ErrorKind enumerates the Error event's kind field.
type ErrorKind int

const (
	ErrKindNotConnected ErrorKind = iota
	ErrKindProtocolError
	ErrKindTransportNotReady
)

// Message is an inbound application-visible Publish delivery.
type Message struct {
	Topic   string
	Payload []byte
}

// Event is the outbound application event port (spec.md §6.2).
type Event struct {
	Kind               EventKind
	ConnectionFailure  ConnectionFailureReason
	Message            Message
	SubscribedQoS      []codec.QoS
	ErrorKind          ErrorKind
	ProtocolErrorCause error
}

func ConnectedEvent() Event    { return Event{Kind: EvtConnected} }
func DisconnectedEvent() Event { return Event{Kind: EvtDisconnected} }

func ConnectionFailureEvent(reason ConnectionFailureReason) Event {
	return Event{Kind: EvtConnectionFailure, ConnectionFailure: reason}
}

func MessageEvent(topic string, payload []byte) Event {
	return Event{Kind: EvtMessage, Message: Message{Topic: topic, Payload: payload}}
}

func SubscribedEvent(granted []codec.QoS) Event {
	return Event{Kind: EvtSubscribed, SubscribedQoS: granted}
}

func UnsubscribedEvent() Event { return Event{Kind: EvtUnsubscribed} }

func NotConnectedErrorEvent() Event {
	return Event{Kind: EvtError, ErrorKind: ErrKindNotConnected}
}

func ProtocolErrorEvent(cause error) Event {
	return Event{Kind: EvtError, ErrorKind: ErrKindProtocolError, ProtocolErrorCause: cause}
}

func TransportNotReadyErrorEvent() Event {
	return Event{Kind: EvtError, ErrorKind: ErrKindTransportNotReady}
}
