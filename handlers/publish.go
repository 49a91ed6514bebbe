package handlers

import (
	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/registers"
)

// HandlePublishCommand implements the Publish command transitions of
// spec.md §4.3: QoS 0 emits a single frame with no bookkeeping; QoS 1/2
// allocate a message id and record the frame in sent_in_flight.
func HandlePublishCommand(r registers.Registers, p api.PublishParams, nextID uint16, nowMs int64) (registers.Registers, uint16, Action) {
	if p.QoS == codec.AtMostOnce {
		frame := codec.Frame{
			Type: codec.Publish, QoS: p.QoS, Retain: p.Retain,
			Body: codec.PublishBody{Topic: p.Topic, Payload: p.Payload},
		}
		return r, nextID, SendToNetwork(frame)
	}

	id, nextAfter := r.AllocateMessageID(nextID)
	frame := codec.Frame{
		Type: codec.Publish, QoS: p.QoS, Retain: p.Retain,
		Body: codec.PublishBody{Topic: p.Topic, PacketID: id, Payload: p.Payload},
	}
	msg := registers.NewPendingMessage(frame, nowMs)
	r = r.AddSentInFlight(id, msg)

	action := Sequence(
		SendToNetwork(frame),
		StoreSentInFlightFrame(id, msg),
	)
	return r, nextAfter, action
}

// HandleIncomingPublish implements the three Publish-arrival cases of
// spec.md §4.3. For QoS 2 it also implements invariant I2 / property P6:
// a duplicate delivery (id already in recv_in_flight) re-acks without
// re-emitting the message to the application.
func HandleIncomingPublish(r registers.Registers, body codec.PublishBody, qos codec.QoS) (registers.Registers, Action) {
	switch qos {
	case codec.AtMostOnce:
		return r, SendToClient(api.MessageEvent(body.Topic, body.Payload))

	case codec.AtLeastOnce:
		ack := codec.Frame{Type: codec.PubAck, Body: codec.PacketIDBody{PacketID: body.PacketID}}
		return r, Sequence(
			SendToClient(api.MessageEvent(body.Topic, body.Payload)),
			SendToNetwork(ack),
		)

	case codec.ExactlyOnce:
		pubRec := codec.Frame{Type: codec.PubRec, Body: codec.PacketIDBody{PacketID: body.PacketID}}
		if r.HasRecvInFlight(body.PacketID) {
			// duplicate delivery: re-ack silently, do not re-emit.
			return r, SendToNetwork(pubRec)
		}
		r = r.AddRecvInFlight(body.PacketID)
		return r, Sequence(
			SendToClient(api.MessageEvent(body.Topic, body.Payload)),
			StoreRecvInFlightFrameID(body.PacketID),
			SendToNetwork(pubRec),
		)
	}
	return r, None()
}
