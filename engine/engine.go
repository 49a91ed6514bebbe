// Package engine is the top-level state machine of spec.md §4.4: it wires
// together the reassembler, handlers, and registers, dispatches actions to
// the transport and the application, and manages the keep-alive timer.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/handlers"
	"github.com/axmq/mqttc/reassembler"
	"github.com/axmq/mqttc/registers"
	"github.com/axmq/mqttc/timer"
	"github.com/axmq/mqttc/transport"
	"golang.org/x/sync/errgroup"
)

// defaultGracefulDisconnectTimeout bounds how long the Disconnect
// transition waits for the transport to confirm closure before the engine
// forces NotConnected regardless (adapted from axmq-ax's
// network.GracefulDisconnect timeout, trimmed to one connection).
const defaultGracefulDisconnectTimeout = 2 * time.Second

// transportHandle is the registers.TransportHandle identity the engine
// installs once a transport connects.
type transportHandle struct{ id string }

func (h transportHandle) ID() string { return h.id }

// internalEventKind discriminates the merged internal queue alongside
// application commands.
type internalEventKind int

const (
	internalTransportEvent internalEventKind = iota
	internalTimerFired
	internalDisconnectTimeout
)

type internalEvent struct {
	kind     internalEventKind
	transEvt transport.Event
}

// Engine is a single MQTT client connection's state machine. It owns its
// Registers exclusively (spec.md §5); the transport and scheduler are its
// only external collaborators.
type Engine struct {
	transportFactory func() transport.Transport
	scheduler        timer.Scheduler
	logger           *slog.Logger

	gracefulDisconnectTimeout time.Duration

	cmdCh      chan api.Command
	eventCh    chan api.Event
	internalCh chan internalEvent

	state                   State
	registers               registers.Registers
	reasm                   *reassembler.Reassembler
	nextMessageID           uint16
	pendingConnectAction    handlers.Action
	currentTransport        transport.Transport
	awaitingDisconnect      bool
	disconnectTimeoutHandle timer.Handle

	group goGroup
}

// goGroup is the one errgroup.Group method the engine needs, narrowed to an
// interface so tests can drive spawnPump without a real errgroup.Group
// spawning goroutines behind a synchronous test's back.
type goGroup interface {
	Go(func() error)
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the engine's logger (default: a discarding logger).
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithGracefulDisconnectTimeout overrides how long Disconnect waits for
// transport confirmation before forcing NotConnected anyway.
func WithGracefulDisconnectTimeout(d time.Duration) Option {
	return func(e *Engine) { e.gracefulDisconnectTimeout = d }
}

// New constructs an Engine in state NotConnected. transportFactory is
// invoked once per Connect command to obtain a fresh Transport (so
// reconnection after a lost connection gets a clean transport instance).
func New(transportFactory func() transport.Transport, scheduler timer.Scheduler, opts ...Option) *Engine {
	e := &Engine{
		transportFactory:          transportFactory,
		scheduler:                 scheduler,
		logger:                    slog.New(slog.DiscardHandler),
		gracefulDisconnectTimeout: defaultGracefulDisconnectTimeout,
		cmdCh:                     make(chan api.Command, 64),
		eventCh:                   make(chan api.Event, 64),
		internalCh:                make(chan internalEvent, 64),
		state:                     NotConnected,
		registers:                 registers.New(),
		reasm:                     reassembler.New(),
		nextMessageID:             1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit enqueues an application command. It never blocks the caller for
// long: the command channel is large enough that commands, whose rate is
// bounded by application logic, never pile up faster than the single
// dispatch loop can drain them in practice.
func (e *Engine) Submit(cmd api.Command) {
	e.cmdCh <- cmd
}

// Events is the outbound application event port.
func (e *Engine) Events() <-chan api.Event {
	return e.eventCh
}

// State reports the engine's current state. Safe to call only from within
// a Command/Event exchange with the running dispatch loop (e.g. in tests
// that drive the loop synchronously); concurrent callers should rely on
// the Status command instead.
func (e *Engine) State() State {
	return e.state
}

// Run drives the dispatch loop until ctx is cancelled. Exactly one
// goroutine processes stimuli at a time (spec.md §5); a second goroutine,
// spawned per active transport, forwards that transport's inbound events
// into the shared internal queue.
func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	e.group = g

	g.Go(func() error {
		return e.dispatchLoop(ctx)
	})

	return g.Wait()
}

func (e *Engine) dispatchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-e.cmdCh:
			e.processCommand(ctx, cmd)
		case ev := <-e.internalCh:
			e.processInternalEvent(ev)
		}
	}
}

func (e *Engine) emit(ev api.Event) {
	e.eventCh <- ev
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

// spawnPump forwards t's Events channel into the shared internal queue
// until it closes. One such goroutine runs per active transport instance.
func (e *Engine) spawnPump(t transport.Transport) {
	e.group.Go(func() error {
		for ev := range t.Events() {
			e.internalCh <- internalEvent{kind: internalTransportEvent, transEvt: ev}
		}
		return nil
	})
}

// processCommand dispatches one application command by current state
// (spec.md §4.4's transition table, read by row).
func (e *Engine) processCommand(ctx context.Context, cmd api.Command) {
	switch e.state {
	case NotConnected:
		e.processCommandNotConnected(ctx, cmd)
	case Connecting:
		// Every command here, Connect included, is the generic "API
		// command while not yet connected" row: the handshake in flight
		// owns the only Connect this attempt gets.
		e.emit(api.NotConnectedErrorEvent())
	case Connected:
		e.processCommandConnected(cmd)
	}
}

func (e *Engine) processCommandNotConnected(ctx context.Context, cmd api.Command) {
	switch cmd.Kind {
	case api.CmdStatus:
		e.emit(api.DisconnectedEvent())
	case api.CmdConnect:
		e.beginConnect(ctx, cmd.Connect)
	default:
		e.emit(api.NotConnectedErrorEvent())
	}
}

func (e *Engine) processCommandConnected(cmd api.Command) {
	switch cmd.Kind {
	case api.CmdStatus:
		e.emit(api.ConnectedEvent())
	case api.CmdConnect:
		// Already connected: a repeat Connect is silently absorbed rather
		// than fabricating an error kind the port doesn't define.
	case api.CmdDisconnect:
		e.execute(handlers.BuildDisconnectAction())
		e.beginGracefulDisconnect()
	default:
		r, next, action := handlers.HandleConnectedCommand(e.registers, cmd, e.nextMessageID, nowMs())
		e.registers = r
		e.nextMessageID = next
		e.execute(action)
	}
}

// beginConnect starts a new connection attempt: a fresh Registers and
// Reassembler (spec.md §4.4's NotConnected -> Connecting transition), a
// freshly-built transport from transportFactory, and the Connect frame
// stashed to run once the transport reports Connected.
func (e *Engine) beginConnect(ctx context.Context, p api.ConnectParams) {
	e.registers = registers.New()
	e.reasm = reassembler.New()
	e.nextMessageID = 1
	e.pendingConnectAction = handlers.BuildConnectAction(p)
	e.state = Connecting

	t := e.transportFactory()
	e.currentTransport = t
	e.spawnPump(t)

	if err := t.Connect(ctx, p.RemoteAddr); err != nil {
		e.currentTransport = nil
		e.state = NotConnected
		e.emit(api.TransportNotReadyErrorEvent())
	}
}

// beginGracefulDisconnect drives spec.md §4.4's Disconnect transition: ask
// the transport to close, then wait up to gracefulDisconnectTimeout for its
// Closed event before forcing NotConnected anyway.
func (e *Engine) beginGracefulDisconnect() {
	e.awaitingDisconnect = true
	if e.currentTransport != nil {
		_ = e.currentTransport.Close()
	}
	e.disconnectTimeoutHandle = e.scheduler.ScheduleOnce(e.gracefulDisconnectTimeout.Milliseconds(), func() {
		e.internalCh <- internalEvent{kind: internalDisconnectTimeout}
	})
}

// finishDisconnect completes a Disconnect transition, however it resolved
// (an on-time Closed event or the bounded timeout firing first).
func (e *Engine) finishDisconnect() {
	e.abortAndResetTransportState()
	e.emit(api.DisconnectedEvent())
}

func (e *Engine) processInternalEvent(ev internalEvent) {
	switch ev.kind {
	case internalTransportEvent:
		e.processTransportEvent(ev.transEvt)
	case internalTimerFired:
		e.processTimerFired()
	case internalDisconnectTimeout:
		if e.awaitingDisconnect {
			e.finishDisconnect()
		}
	}
}

func (e *Engine) processTimerFired() {
	if e.state != Connected {
		// A stale fire from a connection already torn down; the timer was
		// cancelled on teardown, but a fire already in the internal queue
		// can still slip through.
		return
	}
	r, action := handlers.HandleTimerTick(e.registers, nowMs())
	e.registers = r
	e.execute(action)
}

func (e *Engine) processTransportEvent(ev transport.Event) {
	switch e.state {
	case NotConnected:
		// A stray event from a transport already torn down synchronously
		// (e.g. a protocol-error abort); nothing left to react to.
	case Connecting:
		e.processTransportEventConnecting(ev)
	case Connected:
		e.processTransportEventConnected(ev)
	}
}

func (e *Engine) processTransportEventConnecting(ev transport.Event) {
	switch ev.Kind {
	case transport.EvtConnected:
		e.registers = e.registers.SetTransport(transportHandle{id: "primary"}).WatchTransport().SetLastSentAt(nowMs())
		action := e.pendingConnectAction
		e.pendingConnectAction = handlers.Action{}
		e.execute(action)
	case transport.EvtReceived:
		e.feedAndDispatch(ev.Received)
	case transport.EvtConnectFailed:
		e.currentTransport = nil
		e.state = NotConnected
		e.emit(api.ConnectionFailureEvent(api.TransportNotReady))
	case transport.EvtClosed, transport.EvtTerminated:
		e.abortAndResetTransportState()
		e.emit(api.ConnectionFailureEvent(api.ServerNotResponding))
	}
}

func (e *Engine) processTransportEventConnected(ev transport.Event) {
	switch ev.Kind {
	case transport.EvtReceived:
		e.feedAndDispatch(ev.Received)
	case transport.EvtClosed, transport.EvtTerminated:
		if e.awaitingDisconnect {
			e.finishDisconnect()
			return
		}
		e.abortAndResetTransportState()
		e.emit(api.DisconnectedEvent())
	case transport.EvtConnected, transport.EvtConnectFailed:
		// Duplicate notification from a transport already established;
		// ignored.
	}
}

// feedAndDispatch runs newly-arrived bytes through the reassembler and
// dispatches every whole frame it yields. A reassembly failure, or a frame
// type the client can never legally receive in the current state, is a
// protocol error (spec.md §7): the connection cannot be trusted further.
func (e *Engine) feedAndDispatch(chunk []byte) {
	frames, err := e.reasm.Feed(chunk)
	if err != nil {
		e.handleProtocolError(err)
		return
	}
	for _, f := range frames {
		if e.state == Connecting {
			if f.Type != codec.Connack {
				e.handleProtocolError(fmt.Errorf("%s frame is invalid before the handshake completes", f.Type))
				return
			}
			body, ok := f.Body.(codec.ConnackBody)
			if !ok {
				e.handleProtocolError(fmt.Errorf("malformed connack body"))
				return
			}
			if body.ReturnCode == 0 {
				e.state = Connected
			}
			e.execute(handlers.HandleConnack(body))
			continue
		}
		if e.state != Connected {
			return
		}
		r, action := handlers.HandleFrame(e.registers, f, nowMs())
		e.registers = r
		e.execute(action)
	}
}
