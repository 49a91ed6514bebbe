package handlers

import (
	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/registers"
)

// HandleFrame dispatches one decoded inbound frame to its per-type
// transition (spec.md §4.3 "Frame-arrival handling"). nowMs is used for
// sent_in_flight bookkeeping on the PubRec path.
func HandleFrame(r registers.Registers, f codec.Frame, nowMs int64) (registers.Registers, Action) {
	switch f.Type {
	case codec.Connack:
		return r, HandleConnack(f.Body.(codec.ConnackBody))
	case codec.Publish:
		return HandleIncomingPublish(r, f.Body.(codec.PublishBody), f.QoS)
	case codec.PubAck:
		return HandlePubAck(r, f.Body.(codec.PacketIDBody).PacketID)
	case codec.PubRec:
		return HandlePubRec(r, f.Body.(codec.PacketIDBody).PacketID, nowMs)
	case codec.PubRel:
		return HandlePubRel(r, f.Body.(codec.PacketIDBody).PacketID)
	case codec.PubComp:
		return HandlePubComp(r, f.Body.(codec.PacketIDBody).PacketID)
	case codec.SubAck:
		return HandleSubAck(r, f.Body.(codec.SubAckBody))
	case codec.UnsubAck:
		return HandleUnsubAck(r, f.Body.(codec.PacketIDBody))
	case codec.PingResp:
		return HandlePingResp(r)
	default:
		// Connect/Subscribe/Unsubscribe/PingReq/Disconnect only ever
		// travel client-to-broker; an inbound copy is a protocol
		// violation the engine's caller surfaces via Error(ProtocolError)
		// before HandleFrame is even reached for frames the client
		// itself never expects to receive (see engine package).
		return r, None()
	}
}

// HandleConnectedCommand dispatches one API command while the engine is in
// the Connected state (spec.md §4.3's "API-command handling" header). The
// Connect command itself is handled by the engine directly, since it spans
// the NotConnected -> Connecting -> Connected transition rather than a
// single in-state step (spec.md §4.4); Status never needs handler state.
func HandleConnectedCommand(r registers.Registers, cmd api.Command, nextID uint16, nowMs int64) (registers.Registers, uint16, Action) {
	switch cmd.Kind {
	case api.CmdPublish:
		r, next, action := HandlePublishCommand(r, cmd.Publish, nextID, nowMs)
		return r, next, action
	case api.CmdSubscribe:
		return HandleSubscribeCommand(r, cmd.Subscribe, nextID, nowMs)
	case api.CmdUnsubscribe:
		return HandleUnsubscribeCommand(r, cmd.Unsubscribe, nextID, nowMs)
	case api.CmdDisconnect:
		return r, nextID, BuildDisconnectAction()
	default:
		return r, nextID, None()
	}
}

// BuildDisconnectAction builds the Disconnect command's outbound frame. The
// engine writes it and then drives the bounded graceful-close sequence
// itself (spec.md §4.4's Disconnect transition), rather than folding
// ForciblyCloseTransport into this pure action, so the timeout bookkeeping
// stays entirely in the engine.
func BuildDisconnectAction() Action {
	return SendToNetwork(codec.Frame{Type: codec.Disconnect})
}
