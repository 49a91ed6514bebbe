package engine

import (
	"bytes"

	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/handlers"
	"github.com/axmq/mqttc/reassembler"
)

// execute interprets one Action, performing whatever I/O or Registers
// bookkeeping it names (spec.md §4.3 "a handler never performs I/O
// itself"). This is the engine's half of the contract: handlers describe,
// execute does.
func (e *Engine) execute(a handlers.Action) {
	switch a.Kind {
	case handlers.ActionNone:
		return

	case handlers.ActionSequence:
		for _, child := range a.Children {
			e.execute(child)
		}

	case handlers.ActionSendToNetwork:
		e.writeFrame(a.Frame)

	case handlers.ActionSendToClient:
		e.emit(a.Event)

	case handlers.ActionSetKeepAlive:
		e.registers = e.registers.SetKeepAlive(a.KeepAliveMs)

	case handlers.ActionStartPingRespTimer:
		e.armPingRespTimer(a.KeepAliveMs)

	case handlers.ActionSetPendingPingResponse:
		e.registers = e.registers.SetPingPending(a.Pending)

	case handlers.ActionForciblyCloseTransport:
		e.forciblyCloseTransport()

	case handlers.ActionStoreSentInFlightFrame,
		handlers.ActionRemoveSentInFlightFrame,
		handlers.ActionStoreRecvInFlightFrameID,
		handlers.ActionRemoveRecvInFlightFrameID:
		// The pure handler has already folded this bookkeeping into the
		// Registers value it returned; these variants exist so a handler's
		// intent is visible in its Action without re-deriving it from the
		// Registers diff. Nothing left to execute.

	default:
		e.logger.Warn("unhandled action kind", "kind", a.Kind)
	}
}

// writeFrame encodes f and writes it to the active transport, updating
// last_sent_at for keep-alive purposes (spec.md §4.5). A write error is
// logged and the frame is dropped; it is not treated as a protocol error
// and changes no engine state: the connection's loss is reported only when
// the transport delivers its own Closed or Terminated event.
func (e *Engine) writeFrame(f codec.Frame) {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		e.logger.Error("failed to encode outbound frame", "type", f.Type.String(), "err", err)
		return
	}
	if e.currentTransport == nil {
		return
	}
	if err := e.currentTransport.Write(buf.Bytes()); err != nil {
		e.logger.Warn("transport write failed", "type", f.Type.String(), "err", err)
		return
	}
	e.registers = e.registers.SetLastSentAt(nowMs())
}

// armPingRespTimer cancels any previously scheduled wakeup and schedules a
// new one ms from now, mirroring the at-most-one-timer invariant (I5).
func (e *Engine) armPingRespTimer(ms int64) {
	if e.registers.TimerHandle != nil {
		e.scheduler.Cancel(e.registers.TimerHandle)
	}
	handle := e.scheduler.ScheduleOnce(ms, func() {
		e.internalCh <- internalEvent{kind: internalTimerFired}
	})
	e.registers = e.registers.SetTimerHandle(handle)
}

// forciblyCloseTransport tears the connection down immediately and reports
// Disconnected only if the application had actually observed a Connected
// event for it — a Connack failure never got that far, so it relies solely
// on its own ConnectionFailure event instead (spec.md §4.4).
func (e *Engine) forciblyCloseTransport() {
	wasConnected := e.state == Connected
	e.abortAndResetTransportState()
	if wasConnected {
		e.emit(api.DisconnectedEvent())
	}
}

// abortAndResetTransportState tears down the active transport and timer and
// returns Registers/state to a fresh NotConnected baseline. Callers decide
// what, if anything, to emit afterward.
func (e *Engine) abortAndResetTransportState() {
	if e.currentTransport != nil {
		_ = e.currentTransport.Abort()
	}
	if e.registers.TimerHandle != nil {
		e.scheduler.Cancel(e.registers.TimerHandle)
	}
	if e.disconnectTimeoutHandle != nil {
		e.scheduler.Cancel(e.disconnectTimeoutHandle)
		e.disconnectTimeoutHandle = nil
	}
	e.registers = e.registers.CancelTimer().ClearInFlightTables().UnwatchTransport().SetPingPending(false)
	e.currentTransport = nil
	e.reasm = reassembler.New()
	e.state = NotConnected
	e.awaitingDisconnect = false
}

// handleProtocolError is the engine's reaction to a malformed frame or a
// frame that is structurally impossible in the current state (spec.md §7):
// the connection is unrecoverable, so the engine aborts it and reports the
// cause without also claiming a graceful Disconnected.
func (e *Engine) handleProtocolError(err error) {
	e.logger.Error("protocol error, aborting connection", "err", err)
	e.abortAndResetTransportState()
	e.emit(api.ProtocolErrorEvent(err))
}
