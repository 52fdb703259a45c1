package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxAttempts = 3

	cleanupInterval = 5 * time.Minute
)

// Limiter is a sliding-window connection-attempt limiter keyed by source
// address. An attempt is admitted only while fewer than maxAttempts admitted
// timestamps remain inside the trailing window; denied attempts are not
// recorded. State is in-memory only and resets with the process.
type Limiter struct {
	window      time.Duration
	maxAttempts int

	mu       sync.Mutex
	attempts map[string][]time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewLimiter(window time.Duration, maxAttempts int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	l := &Limiter{
		window:      window,
		maxAttempts: maxAttempts,
		attempts:    make(map[string][]time.Time),
		stop:        make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Admit prunes timestamps older than now-window for addr, then either
// records now and admits, or denies when the window is already full.
func (l *Limiter) Admit(addr string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.attempts[addr], now.Add(-l.window))
	if len(kept) >= l.maxAttempts {
		l.attempts[addr] = kept
		return false
	}
	l.attempts[addr] = append(kept, now)
	return true
}

// Allow is the production entry point; tests drive Admit directly.
func (l *Limiter) Allow(addr string) bool {
	return l.Admit(addr, time.Now())
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// prune keeps only timestamps at or after cutoff. Entries are appended in
// time order, so the first surviving index closes the scan.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && ts[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append([]time.Time(nil), ts[i:]...)
}

// janitor drops addresses whose whole window has expired so idle sources
// do not accumulate.
func (l *Limiter) janitor() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			cutoff := now.Add(-l.window)
			l.mu.Lock()
			for addr, ts := range l.attempts {
				if kept := prune(ts, cutoff); len(kept) == 0 {
					delete(l.attempts, addr)
				} else {
					l.attempts[addr] = kept
				}
			}
			l.mu.Unlock()
		}
	}
}
