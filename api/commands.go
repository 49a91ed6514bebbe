// Package api defines the engine's application-facing command and event
// ports (spec.md §6.1, §6.2): the only surface a host application talks to.
package api

import "github.com/axmq/mqttc/codec"

// CommandKind discriminates the Command tagged union.
type CommandKind int

const (
	CmdStatus CommandKind = iota
	CmdConnect
	CmdDisconnect
	CmdSubscribe
	CmdUnsubscribe
	CmdPublish
)

// TopicFilter pairs a subscription filter with its requested QoS.
type TopicFilter struct {
	Filter string
	QoS    codec.QoS
}

// ConnectParams carries everything the Connect command needs to build a
// Connect frame.
type ConnectParams struct {
	RemoteAddr    string
	ClientID      string
	CleanSession  bool
	KeepAliveSecs uint16
	WillTopic     string
	WillMessage   []byte
	WillQoS       codec.QoS
	WillRetain    bool
	HasWill       bool
	Username      string
	HasUsername   bool
	Password      []byte
	HasPassword   bool
}

// PublishParams carries a Publish command's arguments.
type PublishParams struct {
	Topic   string
	Payload []byte
	QoS     codec.QoS
	Retain  bool
}

// Command is the inbound application command port (spec.md §6.1).
type Command struct {
	Kind        CommandKind
	Connect     ConnectParams
	Subscribe   []TopicFilter
	Unsubscribe []string
	Publish     PublishParams
}

// StatusCommand requests the engine's current connection state.
func StatusCommand() Command { return Command{Kind: CmdStatus} }

// ConnectCommand requests a new connection attempt.
func ConnectCommand(p ConnectParams) Command { return Command{Kind: CmdConnect, Connect: p} }

// DisconnectCommand requests a graceful disconnect.
func DisconnectCommand() Command { return Command{Kind: CmdDisconnect} }

// SubscribeCommand requests a Subscribe for the given filters.
func SubscribeCommand(filters []TopicFilter) Command {
	return Command{Kind: CmdSubscribe, Subscribe: filters}
}

// UnsubscribeCommand requests an Unsubscribe for the given filters.
func UnsubscribeCommand(filters []string) Command {
	return Command{Kind: CmdUnsubscribe, Unsubscribe: filters}
}

// PublishCommand requests a Publish of payload to topic.
func PublishCommand(p PublishParams) Command { return Command{Kind: CmdPublish, Publish: p} }
