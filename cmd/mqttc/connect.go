package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/backoff"
	"github.com/axmq/mqttc/config"
	"github.com/axmq/mqttc/diag"
	"github.com/axmq/mqttc/engine"
	"github.com/axmq/mqttc/route"
	"github.com/axmq/mqttc/timer"
	"github.com/axmq/mqttc/transport"
)

// runAction wires an Engine to a TCP transport, connects, runs the
// subscribe/publish requested on the command line, and prints inbound
// messages until interrupted. Reconnection (spec.md's Non-goals exclude
// it from the engine itself) is handled here, in the application, with a
// backoff.Backoff driving a fresh Connect command after each lost
// connection.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	password, err := resolvePassword(cmd, cfg)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	ctx, cancel := notifyInterrupt()
	defer cancel()

	eng := engine.New(
		func() transport.Transport { return transport.NewTCPTransport() },
		timer.NewRealScheduler(),
		engine.WithLogger(logger),
		engine.WithGracefulDisconnectTimeout(time.Duration(cfg.Disconnect.GracefulTimeoutMs)*time.Millisecond),
	)

	router := route.NewRouter()
	hooks := diag.NewHookManager()
	if tracePath := cmd.String("trace-file"); tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			return fmt.Errorf("opening trace file %q: %w", tracePath, err)
		}
		defer f.Close()
		_ = hooks.Add(diag.NewRecorder(f))
	}

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- eng.Run(ctx) }()

	subs := subscriptionsFromFlags(cmd)
	pub := publishFromFlags(cmd)
	published := pub == nil

	bo, err := backoff.New(backoff.DefaultConfig())
	if err != nil {
		return err
	}

	connectParams := cfg.ConnectParamsWithPassword(password)
	eng.Submit(api.ConnectCommand(connectParams))

	connected := false
	for {
		select {
		case <-ctx.Done():
			if connected {
				eng.Submit(api.DisconnectCommand())
				drainUntilDisconnected(eng)
			}
			return nil
		case err := <-runErrCh:
			return err
		case ev, ok := <-eng.Events():
			if !ok {
				return nil
			}
			hooks.Dispatch(ev)
			switch ev.Kind {
			case api.EvtConnected:
				connected = true
				bo.Reset()
				logger.Info("connected", "broker", connectParams.RemoteAddr)
				if len(subs) > 0 {
					eng.Submit(api.SubscribeCommand(subs))
				}
				if !published {
					eng.Submit(api.PublishCommand(*pub))
					published = true
				}
			case api.EvtDisconnected, api.EvtConnectionFailure:
				connected = false
				logger.Warn("connection lost, scheduling reconnect", "reason", ev.ConnectionFailure)
				delay, ok := bo.Next()
				if !ok {
					return fmt.Errorf("mqttc: exceeded max reconnect attempts")
				}
				go scheduleReconnect(ctx, eng, connectParams, delay)
			case api.EvtMessage:
				if !router.Dispatch(ev.Message.Topic, ev.Message.Payload) {
					fmt.Printf("%s: %s\n", ev.Message.Topic, ev.Message.Payload)
				}
			case api.EvtSubscribed:
				logger.Info("subscribed", "granted", ev.SubscribedQoS)
			case api.EvtUnsubscribed:
				logger.Info("unsubscribed")
			case api.EvtError:
				logger.Warn("command rejected", "kind", ev.ErrorKind)
			}
		}
	}
}

// scheduleReconnect waits out one backoff interval, then resubmits a fresh
// Connect command unless ctx has already been cancelled.
func scheduleReconnect(ctx context.Context, eng *engine.Engine, params api.ConnectParams, delay time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(delay):
		eng.Submit(api.ConnectCommand(params))
	}
}

// drainUntilDisconnected blocks until the engine confirms the graceful
// Disconnect took effect, giving the transport a chance to flush before
// the process exits.
func drainUntilDisconnected(eng *engine.Engine) {
	for ev := range eng.Events() {
		if ev.Kind == api.EvtDisconnected {
			return
		}
	}
}

// resolvePassword returns the password for cfg.MQTT.Username: the
// --password flag if given, otherwise an interactive prompt, or "" if no
// username was configured at all.
func resolvePassword(cmd *cli.Command, cfg config.Config) (string, error) {
	if cfg.MQTT.Username == "" {
		return "", nil
	}
	if p := cmd.String("password"); p != "" {
		return p, nil
	}
	pw, err := promptPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return pw, nil
}

// promptPassword reads a password from the terminal without echoing it,
// falling back to a plain line read when stdin is not a terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
