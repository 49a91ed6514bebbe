package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mqtt:\n  client_id: test-client\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-client", c.MQTT.ClientID)
	assert.Equal(t, "localhost", c.MQTT.Host)
	assert.Equal(t, 1883, c.MQTT.Port)
	assert.Equal(t, 60, c.MQTT.KeepAliveSecs)
	require.NotNil(t, c.MQTT.CleanSession)
	assert.True(t, *c.MQTT.CleanSession)
	assert.Equal(t, 2000, c.Disconnect.GracefulTimeoutMs)
}

func TestLoadHonorsExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	yaml := "mqtt:\n  host: broker.example\n  port: 8883\n  clean_session: false\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "broker.example:8883", c.RemoteAddr())
	require.NotNil(t, c.MQTT.CleanSession)
	assert.False(t, *c.MQTT.CleanSession)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConnectParams(t *testing.T) {
	c := Config{}
	c.applyDefaults()
	c.MQTT.ClientID = "abc"
	p := c.ConnectParams()
	assert.Equal(t, "abc", p.ClientID)
	assert.True(t, p.CleanSession)
	assert.Equal(t, uint16(60), p.KeepAliveSecs)
}
