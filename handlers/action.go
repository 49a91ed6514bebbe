package handlers

import (
	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/registers"
)

// ActionKind discriminates the Action tagged union (spec.md §4.3).
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSequence
	ActionSendToNetwork
	ActionSendToClient
	ActionSetKeepAlive
	ActionStartPingRespTimer
	ActionSetPendingPingResponse
	ActionForciblyCloseTransport
	ActionStoreSentInFlightFrame
	ActionRemoveSentInFlightFrame
	ActionStoreRecvInFlightFrameID
	ActionRemoveRecvInFlightFrameID
)

// Action is a single member of the sum type handlers return describing what
// the engine must subsequently do. A handler never performs I/O itself;
// the engine is the sole interpreter of Action values.
type Action struct {
	Kind ActionKind

	Children []Action // ActionSequence

	Frame codec.Frame // ActionSendToNetwork
	Event api.Event   // ActionSendToClient

	KeepAliveMs int64 // ActionSetKeepAlive, ActionStartPingRespTimer
	Pending     bool  // ActionSetPendingPingResponse

	MessageID uint16                    // Action{Store,Remove}{Sent,Recv}InFlight*
	Pending16 registers.PendingMessage // ActionStoreSentInFlightFrame
}

func None() Action { return Action{Kind: ActionNone} }

// Sequence composes actions left to right. A nil/empty slice collapses to
// None so callers never have to special-case "zero actions".
func Sequence(actions ...Action) Action {
	if len(actions) == 0 {
		return None()
	}
	if len(actions) == 1 {
		return actions[0]
	}
	return Action{Kind: ActionSequence, Children: actions}
}

func SendToNetwork(f codec.Frame) Action {
	return Action{Kind: ActionSendToNetwork, Frame: f}
}

func SendToClient(e api.Event) Action {
	return Action{Kind: ActionSendToClient, Event: e}
}

func SetKeepAlive(ms int64) Action {
	return Action{Kind: ActionSetKeepAlive, KeepAliveMs: ms}
}

func StartPingRespTimer(ms int64) Action {
	return Action{Kind: ActionStartPingRespTimer, KeepAliveMs: ms}
}

func SetPendingPingResponse(pending bool) Action {
	return Action{Kind: ActionSetPendingPingResponse, Pending: pending}
}

func ForciblyCloseTransport() Action {
	return Action{Kind: ActionForciblyCloseTransport}
}

func StoreSentInFlightFrame(id uint16, msg registers.PendingMessage) Action {
	return Action{Kind: ActionStoreSentInFlightFrame, MessageID: id, Pending16: msg}
}

func RemoveSentInFlightFrame(id uint16) Action {
	return Action{Kind: ActionRemoveSentInFlightFrame, MessageID: id}
}

func StoreRecvInFlightFrameID(id uint16) Action {
	return Action{Kind: ActionStoreRecvInFlightFrameID, MessageID: id}
}

func RemoveRecvInFlightFrameID(id uint16) Action {
	return Action{Kind: ActionRemoveRecvInFlightFrameID, MessageID: id}
}
