package handlers

import (
	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
)

// BuildConnectAction turns a Connect command's parameters into the action
// sequence the engine stashes while NotConnected/Connecting and runs once
// the transport reports Connected (spec.md §4.3's Connect handling, §4.4's
// Connecting -> Connected transition).
func BuildConnectAction(p api.ConnectParams) Action {
	frame := codec.Frame{
		Type: codec.Connect,
		Body: codec.ConnectBody{
			ClientID:         p.ClientID,
			CleanSession:     p.CleanSession,
			KeepAliveSeconds: p.KeepAliveSecs,
			HasWill:          p.HasWill,
			WillTopic:        p.WillTopic,
			WillMessage:      p.WillMessage,
			WillQoS:          p.WillQoS,
			WillRetain:       p.WillRetain,
			HasUsername:      p.HasUsername,
			Username:         p.Username,
			HasPassword:      p.HasPassword,
			Password:         p.Password,
		},
	}

	keepAliveMs := int64(p.KeepAliveSecs) * 1000
	actions := []Action{SendToNetwork(frame), SetKeepAlive(keepAliveMs)}
	if keepAliveMs > 0 {
		actions = append(actions, StartPingRespTimer(keepAliveMs))
	}
	return Sequence(actions...)
}

// HandleConnack processes an inbound Connack frame (spec.md §4.3). On
// success it emits Connected; on failure it emits ConnectionFailure and
// forcibly closes the transport, mirroring §4.4's Connecting stimulus
// table for the connect-acknowledgement step.
func HandleConnack(body codec.ConnackBody) Action {
	if body.ReturnCode == 0 {
		return SendToClient(api.ConnectedEvent())
	}
	reason := api.ConnectionFailureReasonFromReturnCode(body.ReturnCode)
	return Sequence(
		SendToClient(api.ConnectionFailureEvent(reason)),
		ForciblyCloseTransport(),
	)
}
