// Command mqttc is a demonstration CLI for the engine package: connect,
// optionally subscribe to one or more filters, optionally publish one
// message, and print every inbound Message event until interrupted.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/axmq/mqttc/config"
	"github.com/axmq/mqttc/pkg/logger"
)

func main() {
	cmd := &cli.Command{
		Name:    "mqttc",
		Usage:   "MQTT 3.1 client",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file"},
			&cli.StringFlag{Name: "broker", Aliases: []string{"b"}, Usage: "broker host:port, overrides config"},
			&cli.StringFlag{Name: "client-id", Usage: "MQTT client id, overrides config"},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "username, omit for no auth"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "password (prompted interactively if username is set and this is omitted)"},
			&cli.StringSliceFlag{Name: "topic", Aliases: []string{"t"}, Usage: "topic filter to subscribe to (repeatable)"},
			&cli.StringFlag{Name: "publish-topic", Usage: "topic to publish a single message to, then keep running"},
			&cli.StringFlag{Name: "publish-payload", Usage: "payload for --publish-topic"},
			&cli.IntFlag{Name: "qos", Value: 0, Usage: "QoS for subscribe/publish (0, 1, or 2)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "enable debug logging"},
			&cli.StringFlag{Name: "trace-file", Usage: "record every engine event as CBOR to this file"},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads --config if given, otherwise falls back to an
// all-defaults Config so the CLI works with flags alone.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	path := cmd.String("config")
	if path == "" {
		var c config.Config
		c.ApplyDefaults()
		return c, applyFlagOverrides(&c, cmd)
	}
	c, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config %q: %w", path, err)
	}
	return c, applyFlagOverrides(&c, cmd)
}

func applyFlagOverrides(c *config.Config, cmd *cli.Command) error {
	if broker := cmd.String("broker"); broker != "" {
		host, port, err := splitHostPort(broker)
		if err != nil {
			return err
		}
		c.MQTT.Host, c.MQTT.Port = host, port
	}
	if id := cmd.String("client-id"); id != "" {
		c.MQTT.ClientID = id
	}
	if u := cmd.String("username"); u != "" {
		c.MQTT.Username = u
	}
	return nil
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	return logger.NewSlogLogger(level, os.Stderr).Logger()
}

func notifyInterrupt() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// splitHostPort parses a "host:port" string for --broker, reporting a
// usage-level error rather than letting a bad flag reach net.Dial far
// downstream.
func splitHostPort(hostport string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --broker %q: %w", hostport, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --broker port in %q: %w", hostport, err)
	}
	return host, port, nil
}
