package timer

import (
	"sync"
	"time"
)

// RealScheduler schedules wakeups against the wall clock via
// time.AfterFunc, the same primitive the teacher's background loops build
// on top of (grounded in axmq-ax's ticker-based keep-alive/retry loops,
// adapted here to the spec's single-shot reschedule contract rather than a
// repeating ticker).
type RealScheduler struct {
	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// NewRealScheduler returns a Scheduler backed by the real clock.
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{timers: make(map[*time.Timer]struct{})}
}

func (s *RealScheduler) ScheduleOnce(ms int64, fire func()) Handle {
	var t *time.Timer
	t = time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
		s.mu.Lock()
		delete(s.timers, t)
		s.mu.Unlock()
		fire()
	})

	s.mu.Lock()
	s.timers[t] = struct{}{}
	s.mu.Unlock()

	return t
}

func (s *RealScheduler) Cancel(h Handle) {
	t, ok := h.(*time.Timer)
	if !ok || t == nil {
		return
	}
	t.Stop()

	s.mu.Lock()
	delete(s.timers, t)
	s.mu.Unlock()
}
