// Package audio enforces single-concurrent-playback across the application.
//
// Every feature that can start sound (the alarm ringer, recitation playback,
// the ambient sleep player) registers its session here; registering evicts
// whatever was playing before, so two sources can never overlap.
package audio

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// StopFunc is invoked exactly once when a registered session is forcibly
// stopped by a newer registration or by StopAll. It is not invoked on a
// graceful Unregister.
type StopFunc func()

// Arbiter tracks at most one active audio session. It is constructed once at
// composition root and passed to every component that plays sound.
type Arbiter struct {
	mu      sync.Mutex
	current string
	onStop  StopFunc
}

func NewArbiter() *Arbiter {
	return &Arbiter{}
}

// Register makes handle the active session, forcibly stopping the previous
// one (its StopFunc runs so the owning component can update its own state).
// Re-registering the current handle just replaces the stop callback.
func (a *Arbiter) Register(handle string, onForciblyStopped StopFunc) {
	a.mu.Lock()
	var evicted StopFunc
	if a.current != "" && a.current != handle {
		evicted = a.onStop
		log.Debug().Str("evicted", a.current).Str("handle", handle).Msg("audio session evicted")
	}
	a.current = handle
	a.onStop = onForciblyStopped
	a.mu.Unlock()

	// invoked outside the lock so a stop callback may re-enter the arbiter
	if evicted != nil {
		evicted()
	}
}

// Unregister clears the registration if handle is still the active session.
// Stale handles are a no-op: a component may tear down after it was already
// evicted.
func (a *Arbiter) Unregister(handle string) {
	a.mu.Lock()
	if a.current == handle {
		a.current = ""
		a.onStop = nil
	}
	a.mu.Unlock()
}

// StopAll forcibly stops the active session, if any.
func (a *Arbiter) StopAll() {
	a.mu.Lock()
	stop := a.onStop
	a.current = ""
	a.onStop = nil
	a.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Current returns the active session handle, or "" when nothing is playing.
func (a *Arbiter) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}
