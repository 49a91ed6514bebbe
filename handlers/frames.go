package handlers

import (
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/registers"
)

// HandlePubAck implements the PubAck-arrival transition: remove the QoS 1
// frame from sent_in_flight. Acking an id that is not present is a silent
// no-op (spec.md §4.3, §7).
func HandlePubAck(r registers.Registers, id uint16) (registers.Registers, Action) {
	r = r.RemoveSentInFlight(id)
	return r, RemoveSentInFlightFrame(id)
}

// HandlePubRec implements the QoS 2 outbound handshake's second step
// (property P5): replace the stored QoS 2 Publish with a PubRel and write
// it.
func HandlePubRec(r registers.Registers, id uint16, nowMs int64) (registers.Registers, Action) {
	pubRel := codec.Frame{Type: codec.PubRel, QoS: codec.AtLeastOnce, Body: codec.PacketIDBody{PacketID: id}}
	msg := registers.NewPendingMessage(pubRel, nowMs)
	r = r.AddSentInFlight(id, msg)
	return r, Sequence(
		StoreSentInFlightFrame(id, msg),
		SendToNetwork(pubRel),
	)
}

// HandlePubRel implements the QoS 2 inbound handshake's completion: drop id
// from recv_in_flight and write PubComp.
func HandlePubRel(r registers.Registers, id uint16) (registers.Registers, Action) {
	r = r.RemoveRecvInFlight(id)
	pubComp := codec.Frame{Type: codec.PubComp, Body: codec.PacketIDBody{PacketID: id}}
	return r, Sequence(
		RemoveRecvInFlightFrameID(id),
		SendToNetwork(pubComp),
	)
}

// HandlePubComp implements the QoS 2 outbound handshake's final step:
// remove id from sent_in_flight.
func HandlePubComp(r registers.Registers, id uint16) (registers.Registers, Action) {
	r = r.RemoveSentInFlight(id)
	return r, RemoveSentInFlightFrame(id)
}

// HandlePingResp clears the pending-ping flag (invariant I4).
func HandlePingResp(r registers.Registers) (registers.Registers, Action) {
	r = r.SetPingPending(false)
	return r, SetPendingPingResponse(false)
}
