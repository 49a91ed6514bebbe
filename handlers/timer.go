package handlers

import (
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/registers"
)

// HandleTimerTick implements the keep-alive timer logic of spec.md §4.3: a
// missed ping response is fatal; otherwise either a PingReq is due now, or
// the timer is re-armed for the remaining portion of the interval.
func HandleTimerTick(r registers.Registers, nowMs int64) (registers.Registers, Action) {
	if r.PingResponsePending {
		return r, ForciblyCloseTransport()
	}

	elapsed := nowMs - r.LastSentAtMs
	if elapsed >= r.KeepAliveMs {
		r = r.SetPingPending(true)
		return r, Sequence(
			SendToNetwork(codec.Frame{Type: codec.PingReq}),
			SetPendingPingResponse(true),
			StartPingRespTimer(r.KeepAliveMs),
		)
	}

	remaining := r.KeepAliveMs - elapsed
	return r, StartPingRespTimer(remaining)
}
