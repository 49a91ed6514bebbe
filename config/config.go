// Package config loads the demonstration CLI's settings from YAML,
// applying defaults the same way as the retrieved corpus's own backend
// loader: unmarshal first, then fill in anything left zero.
package config

import (
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
)

// Config is the full set of settings cmd/mqttc reads from a YAML file.
type Config struct {
	MQTT struct {
		Host          string `yaml:"host"`
		Port          int    `yaml:"port"`
		ClientID      string `yaml:"client_id"`
		KeepAliveSecs int    `yaml:"keepalive_secs"`
		CleanSession  *bool  `yaml:"clean_session"`
		Username      string `yaml:"username"`
	} `yaml:"mqtt"`

	Backoff struct {
		BaseMs   int `yaml:"base_ms"`
		MaxMs    int `yaml:"max_ms"`
		MaxRetry int `yaml:"max_retry"` // 0 means unlimited
	} `yaml:"backoff"`

	Disconnect struct {
		GracefulTimeoutMs int `yaml:"graceful_timeout_ms"`
	} `yaml:"disconnect"`

	Log struct {
		Debug bool `yaml:"debug"`
	} `yaml:"log"`
}

// Load reads and parses the YAML file at path, then applies defaults to
// any field the file left zero.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	c.applyDefaults()
	return c, nil
}

// ApplyDefaults fills in any zero-valued field, the same way Load does for
// a file-backed Config — exported so callers building a Config entirely
// from flags (no YAML file at all) get the same defaults.
func (c *Config) ApplyDefaults() { c.applyDefaults() }

func (c *Config) applyDefaults() {
	if c.MQTT.Host == "" {
		c.MQTT.Host = "localhost"
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = 1883
	}
	if c.MQTT.KeepAliveSecs == 0 {
		c.MQTT.KeepAliveSecs = 60
	}
	if c.MQTT.CleanSession == nil {
		v := true
		c.MQTT.CleanSession = &v
	}
	if c.Backoff.BaseMs == 0 {
		c.Backoff.BaseMs = 200
	}
	if c.Backoff.MaxMs == 0 {
		c.Backoff.MaxMs = 30000
	}
	if c.Disconnect.GracefulTimeoutMs == 0 {
		c.Disconnect.GracefulTimeoutMs = 2000
	}
}

// RemoteAddr is the host:port pair the transport dials.
func (c Config) RemoteAddr() string {
	return net.JoinHostPort(c.MQTT.Host, strconv.Itoa(c.MQTT.Port))
}

// ConnectParams builds the Connect command's parameters from the loaded
// config.
func (c Config) ConnectParams() api.ConnectParams {
	cleanSession := true
	if c.MQTT.CleanSession != nil {
		cleanSession = *c.MQTT.CleanSession
	}
	return api.ConnectParams{
		RemoteAddr:    c.RemoteAddr(),
		ClientID:      c.MQTT.ClientID,
		CleanSession:  cleanSession,
		KeepAliveSecs: uint16(c.MQTT.KeepAliveSecs),
		Username:      c.MQTT.Username,
		HasUsername:   c.MQTT.Username != "",
		WillQoS:       codec.AtMostOnce,
	}
}

// ConnectParamsWithPassword is ConnectParams plus a password resolved
// outside the config file (interactively prompted, or from a flag) — the
// YAML loader never reads a plaintext password field, so it has nowhere to
// carry one on its own.
func (c Config) ConnectParamsWithPassword(password string) api.ConnectParams {
	p := c.ConnectParams()
	if p.HasUsername && password != "" {
		p.Password = []byte(password)
		p.HasPassword = true
	}
	return p
}
