// Package handlers implements the pure (Registers, Stimulus) -> (Registers,
// Action) transitions of spec.md §4.3. A handler never performs I/O or
// touches a transport directly; it only returns a description of what the
// engine must do next.
package handlers

import (
	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
)

// StimulusKind discriminates the Stimulus tagged union.
type StimulusKind int

const (
	StimulusCommand StimulusKind = iota
	StimulusFrame
	StimulusTimer
	StimulusTransport
)

// TransportEventKind mirrors transport.EventKind without handlers
// depending on the transport package, keeping handlers a leaf relative to
// it (spec.md §2's dependency order places Handlers below Engine, and
// Engine is the only thing that talks to transport directly).
type TransportEventKind int

const (
	TransportConnected TransportEventKind = iota
	TransportConnectFailed
	TransportClosed
	TransportTerminated
)

// Stimulus is one of Command, Frame, Timer, or Transport — the four things
// that can drive a handler transition (spec.md §2, §4.3).
type Stimulus struct {
	Kind      StimulusKind
	Command   api.Command
	Frame     codec.Frame
	NowMs     int64 // valid for StimulusTimer and StimulusFrame
	Transport TransportEventKind
}

func CommandStimulus(cmd api.Command) Stimulus {
	return Stimulus{Kind: StimulusCommand, Command: cmd}
}

func FrameStimulus(f codec.Frame, nowMs int64) Stimulus {
	return Stimulus{Kind: StimulusFrame, Frame: f, NowMs: nowMs}
}

func TimerStimulus(nowMs int64) Stimulus {
	return Stimulus{Kind: StimulusTimer, NowMs: nowMs}
}

func TransportStimulus(kind TransportEventKind) Stimulus {
	return Stimulus{Kind: StimulusTransport, Transport: kind}
}
