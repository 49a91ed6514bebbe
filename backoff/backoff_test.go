package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 200*time.Millisecond, c.InitialInterval)
	assert.Equal(t, 30*time.Second, c.MaxInterval)
	assert.Equal(t, 2.0, c.Multiplier)
	assert.Equal(t, 0, c.MaxRetries)
	assert.True(t, c.Jitter)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		expectErr bool
	}{
		{"valid", Config{InitialInterval: time.Second, MaxInterval: 10 * time.Second, Multiplier: 2.0, JitterFactor: 0.2}, false},
		{"zero initial interval", Config{InitialInterval: 0, MaxInterval: 10 * time.Second, Multiplier: 2.0}, true},
		{"max below initial", Config{InitialInterval: 10 * time.Second, MaxInterval: time.Second, Multiplier: 2.0}, true},
		{"zero multiplier", Config{InitialInterval: time.Second, MaxInterval: 10 * time.Second, Multiplier: 0}, true},
		{"negative jitter", Config{InitialInterval: time.Second, MaxInterval: 10 * time.Second, Multiplier: 2.0, JitterFactor: -0.1}, true},
		{"jitter too large", Config{InitialInterval: time.Second, MaxInterval: 10 * time.Second, Multiplier: 2.0, JitterFactor: 1.1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBackoffCapsAtMaxInterval(t *testing.T) {
	b, err := New(Config{InitialInterval: time.Second, MaxInterval: 2 * time.Second, Multiplier: 10, Jitter: false})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		d, ok := b.Next()
		require.True(t, ok)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}

func TestBackoffStopsAtMaxRetries(t *testing.T) {
	b, err := New(Config{InitialInterval: time.Millisecond, MaxInterval: time.Second, Multiplier: 2, MaxRetries: 3})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, ok := b.Next()
		require.True(t, ok)
	}
	_, ok := b.Next()
	assert.False(t, ok)
}

func TestBackoffReset(t *testing.T) {
	b, err := New(Config{InitialInterval: time.Millisecond, MaxInterval: time.Second, Multiplier: 2, MaxRetries: 1})
	require.NoError(t, err)

	_, ok := b.Next()
	require.True(t, ok)
	_, ok = b.Next()
	require.False(t, ok)

	b.Reset()
	assert.Equal(t, 0, b.Attempt())
	_, ok = b.Next()
	assert.True(t, ok)
}
