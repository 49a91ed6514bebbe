// Package backoff implements exponential backoff with jitter for
// cmd/mqttc's reconnect loop. The engine itself never reconnects
// automatically (spec.md's Non-goals) — this lives outside it, in the
// application driving Submit(ConnectCommand).
package backoff

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

var ErrInvalidConfig = errors.New("backoff: invalid config")

// Config tunes the interval sequence. Grounded in the teacher's
// BackoffConfig, trimmed of the health-check/auto-retry loop it hung
// inline, since that loop here belongs to the CLI rather than to the
// transport-agnostic library.
type Config struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxRetries      int // 0 means unlimited
	Jitter          bool
	JitterFactor    float64
}

// DefaultConfig matches common MQTT reconnect guidance: start at 200ms,
// double up to a 30s ceiling, +/-20% jitter, unlimited retries.
func DefaultConfig() Config {
	return Config{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		MaxRetries:      0,
		Jitter:          true,
		JitterFactor:    0.2,
	}
}

func (c Config) Validate() error {
	if c.InitialInterval <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxInterval < c.InitialInterval {
		return ErrInvalidConfig
	}
	if c.Multiplier <= 0 {
		return ErrInvalidConfig
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		return ErrInvalidConfig
	}
	return nil
}

// Backoff produces successive reconnect delays. Not safe for concurrent
// use by multiple goroutines; one Backoff belongs to one reconnect loop.
type Backoff struct {
	config  Config
	attempt int
}

// New validates config and returns a fresh Backoff at attempt 0.
func New(config Config) (*Backoff, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Backoff{config: config}, nil
}

// Next returns the delay before the next attempt and true, or (0, false)
// once MaxRetries has been reached.
func (b *Backoff) Next() (time.Duration, bool) {
	if b.config.MaxRetries > 0 && b.attempt >= b.config.MaxRetries {
		return 0, false
	}
	interval := b.calculate()
	b.attempt++
	return interval, true
}

func (b *Backoff) calculate() time.Duration {
	interval := float64(b.config.InitialInterval) * math.Pow(b.config.Multiplier, float64(b.attempt))
	if interval > float64(b.config.MaxInterval) {
		interval = float64(b.config.MaxInterval)
	}
	if b.config.Jitter {
		jitter := interval * b.config.JitterFactor
		interval = interval - jitter + (rand.Float64() * 2 * jitter)
	}
	return time.Duration(interval)
}

// Reset returns the sequence to attempt 0, e.g. after a successful
// connection.
func (b *Backoff) Reset() { b.attempt = 0 }

// Attempt reports how many delays have been issued so far.
func (b *Backoff) Attempt() int { return b.attempt }
