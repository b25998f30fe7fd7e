package watch

import (
	"sync"
	"time"
)

// Limiter collapses editor write bursts and caps global event throughput.
// Admission depends only on the event key, its arrival time and prior
// admissions, so decisions are reproducible in tests via a fake clock.
type Limiter struct {
	debounce  time.Duration
	maxPerSec int
	now       func() time.Time

	mu        sync.Mutex
	lastByKey map[string]time.Time
	admitted  []time.Time
}

func NewLimiter(debounce time.Duration, maxPerSec int) *Limiter {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if maxPerSec <= 0 {
		maxPerSec = 10
	}
	return &Limiter{
		debounce:  debounce,
		maxPerSec: maxPerSec,
		now:       time.Now,
		lastByKey: make(map[string]time.Time),
	}
}

// Admit decides whether an event survives debouncing and the global rate
// cap. Rejected events are dropped, not queued: the next status poll will
// resync anything they would have signalled.
func (l *Limiter) Admit(ev Event) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if last, ok := l.lastByKey[ev.Key()]; ok && now.Sub(last) < l.debounce {
		return false
	}

	// Keys past their debounce window can never reject again; evict them
	// so a long session on a churning tree does not grow the map forever.
	for key, last := range l.lastByKey {
		if now.Sub(last) >= l.debounce {
			delete(l.lastByKey, key)
		}
	}

	cutoff := now.Add(-time.Second)
	kept := l.admitted[:0]
	for _, t := range l.admitted {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.admitted = kept

	if len(l.admitted) >= l.maxPerSec {
		return false
	}

	l.lastByKey[ev.Key()] = now
	l.admitted = append(l.admitted, now)
	return true
}
