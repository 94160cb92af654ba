package session

import (
	"sync"
	"time"
)

type timerKind string

const (
	timerReveal   timerKind = "reveal"
	timerDeadline timerKind = "deadline"
	timerCleanup  timerKind = "cleanup"
)

type timerKey struct {
	code string
	kind timerKind
}

// scheduler runs fn after d and returns a func that stops it.
type scheduler func(d time.Duration, fn func()) (stop func() bool)

func realScheduler(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

type timerEntry struct {
	id   uint64
	stop func() bool
}

// timerSet holds at most one pending timer per (game, kind). Scheduling
// replaces any pending timer; a replaced timer that already started firing
// sees its id is stale and does nothing.
type timerSet struct {
	mu     sync.Mutex
	after  scheduler
	nextID uint64
	timers map[timerKey]timerEntry
}

func newTimerSet(after scheduler) *timerSet {
	if after == nil {
		after = realScheduler
	}
	return &timerSet{after: after, timers: make(map[timerKey]timerEntry)}
}

func (t *timerSet) schedule(code string, kind timerKind, d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	key := timerKey{code: code, kind: kind}

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.timers[key]; ok {
		prev.stop()
	}
	t.nextID++
	id := t.nextID
	stop := t.after(d, func() {
		t.mu.Lock()
		current, ok := t.timers[key]
		if !ok || current.id != id {
			t.mu.Unlock()
			return
		}
		delete(t.timers, key)
		t.mu.Unlock()
		fn()
	})
	t.timers[key] = timerEntry{id: id, stop: stop}
}

// cancel is a no-op when nothing is pending.
func (t *timerSet) cancel(code string, kind timerKind) bool {
	key := timerKey{code: code, kind: kind}
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.timers[key]
	if !ok {
		return false
	}
	delete(t.timers, key)
	entry.stop()
	return true
}

func (t *timerSet) cancelAll(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, entry := range t.timers {
		if key.code == code {
			entry.stop()
			delete(t.timers, key)
		}
	}
}

func (t *timerSet) pending(code string, kind timerKind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[timerKey{code: code, kind: kind}]
	return ok
}

func (t *timerSet) stopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, entry := range t.timers {
		entry.stop()
		delete(t.timers, key)
	}
}
