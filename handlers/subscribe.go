package handlers

import (
	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/registers"
)

// HandleSubscribeCommand implements the Subscribe command transition of
// spec.md §4.3: allocate a message id, emit the frame, and record it in
// sent_in_flight for retransmission semantics.
func HandleSubscribeCommand(r registers.Registers, filters []api.TopicFilter, nextID uint16, nowMs int64) (registers.Registers, uint16, Action) {
	id, nextAfter := r.AllocateMessageID(nextID)

	reqs := make([]codec.SubscriptionRequest, len(filters))
	for i, f := range filters {
		reqs[i] = codec.SubscriptionRequest{Filter: f.Filter, QoS: f.QoS}
	}
	frame := codec.Frame{
		Type: codec.Subscribe, QoS: codec.AtLeastOnce,
		Body: codec.SubscribeBody{PacketID: id, Filters: reqs},
	}
	msg := registers.NewPendingMessage(frame, nowMs)
	r = r.AddSentInFlight(id, msg)

	action := Sequence(SendToNetwork(frame), StoreSentInFlightFrame(id, msg))
	return r, nextAfter, action
}

// HandleUnsubscribeCommand implements the Unsubscribe command transition,
// symmetric to HandleSubscribeCommand.
func HandleUnsubscribeCommand(r registers.Registers, filters []string, nextID uint16, nowMs int64) (registers.Registers, uint16, Action) {
	id, nextAfter := r.AllocateMessageID(nextID)

	frame := codec.Frame{
		Type: codec.Unsubscribe, QoS: codec.AtLeastOnce,
		Body: codec.UnsubscribeBody{PacketID: id, Filters: filters},
	}
	msg := registers.NewPendingMessage(frame, nowMs)
	r = r.AddSentInFlight(id, msg)

	action := Sequence(SendToNetwork(frame), StoreSentInFlightFrame(id, msg))
	return r, nextAfter, action
}

// HandleSubAck implements the SubAck-arrival transition.
func HandleSubAck(r registers.Registers, body codec.SubAckBody) (registers.Registers, Action) {
	r = r.RemoveSentInFlight(body.PacketID)
	granted := make([]codec.QoS, len(body.ReturnCodes))
	for i, c := range body.ReturnCodes {
		granted[i] = codec.QoS(c &^ 0x80)
	}
	return r, Sequence(
		RemoveSentInFlightFrame(body.PacketID),
		SendToClient(api.SubscribedEvent(granted)),
	)
}

// HandleUnsubAck implements the UnsubAck-arrival transition.
func HandleUnsubAck(r registers.Registers, body codec.PacketIDBody) (registers.Registers, Action) {
	r = r.RemoveSentInFlight(body.PacketID)
	return r, Sequence(
		RemoveSentInFlightFrame(body.PacketID),
		SendToClient(api.UnsubscribedEvent()),
	)
}
