// Package diag offers optional, off-to-the-side observability for an
// engine: a copy-on-write hook registry for tapping every outbound event,
// and a CBOR-encoded trace recorder for capturing a session for later
// replay. Neither is required to drive the engine; spec.md's command and
// event ports are already complete without this package.
package diag

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/axmq/mqttc/api"
)

var (
	ErrEmptyHookID       = errors.New("diag: hook id cannot be empty")
	ErrHookAlreadyExists = errors.New("diag: hook already exists")
	ErrHookNotFound      = errors.New("diag: hook not found")
)

// Hook observes every event the engine emits. ID must be stable and unique
// within one HookManager.
type Hook interface {
	ID() string
	OnEvent(ev api.Event)
}

// HookManager fans one engine's event stream out to any number of
// registered Hooks, using the same copy-on-write atomic.Pointer pattern as
// the teacher's broker-side hook dispatcher: Dispatch never blocks on
// Add/Remove and never locks while calling out to a hook.
type HookManager struct {
	mu       sync.Mutex
	hooksPtr atomic.Pointer[[]Hook]
	index    map[string]int
}

// NewHookManager returns an empty HookManager.
func NewHookManager() *HookManager {
	m := &HookManager{index: make(map[string]int)}
	hooks := make([]Hook, 0)
	m.hooksPtr.Store(&hooks)
	return m
}

// Add registers hook. Re-registering an existing ID is an error.
func (m *HookManager) Add(hook Hook) error {
	if hook == nil || hook.ID() == "" {
		return ErrEmptyHookID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[hook.ID()]; exists {
		return ErrHookAlreadyExists
	}

	old := *m.hooksPtr.Load()
	next := make([]Hook, len(old)+1)
	copy(next, old)
	next[len(old)] = hook

	m.index[hook.ID()] = len(old)
	m.hooksPtr.Store(&next)
	return nil
}

// Remove unregisters the hook with the given id.
func (m *HookManager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, exists := m.index[id]
	if !exists {
		return ErrHookNotFound
	}

	old := *m.hooksPtr.Load()
	next := make([]Hook, len(old)-1)
	copy(next[:idx], old[:idx])
	copy(next[idx:], old[idx+1:])
	delete(m.index, id)
	for i := idx; i < len(next); i++ {
		m.index[next[i].ID()] = i
	}

	m.hooksPtr.Store(&next)
	return nil
}

// Dispatch invokes every registered hook with ev, in registration order.
// Safe to call concurrently with Add/Remove: it reads a single atomic
// snapshot of the hook slice and never blocks a concurrent mutation.
func (m *HookManager) Dispatch(ev api.Event) {
	for _, h := range *m.hooksPtr.Load() {
		h.OnEvent(ev)
	}
}

// Tap drains events from ch, calling Dispatch for each, until ch closes.
// Intended to run in its own goroutine alongside an engine's Run, reading
// from its Events() channel.
func (m *HookManager) Tap(ch <-chan api.Event) {
	for ev := range ch {
		m.Dispatch(ev)
	}
}
