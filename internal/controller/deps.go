// Package controller holds one controller per screen. Controllers own the
// screen state, talk to the API and the realtime channel, and publish a
// snapshot through View whenever something changes.
package controller

import (
	"codeclash/internal/logging"
	"codeclash/internal/session"
	"codeclash/internal/transport/rest"
	"codeclash/internal/transport/ws"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Navigator moves the shell to another screen (avoids an import cycle with
// the router)
type Navigator interface {
	Navigate(path string)
}

// Clock supplies the timers screens run. Tests swap in a manual clock.
type Clock interface {
	// Tick delivers a value every d until stop is called
	Tick(d time.Duration) (c <-chan time.Time, stop func())
	// AfterFunc runs f once after d unless stop is called first
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type systemClock struct{}

func (systemClock) Tick(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

func (systemClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// SystemClock is the wall clock
var SystemClock Clock = systemClock{}

// Deps are the collaborators every controller shares
type Deps struct {
	API      *rest.Client
	RT       ws.Realtime
	Sessions *session.Manager
	Nav      Navigator
	Log      *zap.Logger
	Clock    Clock
}

func (d Deps) named(name string) Deps {
	d.Log = logging.OrNop(d.Log).Named(name)
	if d.Clock == nil {
		d.Clock = SystemClock
	}
	return d
}

// base carries the snapshot, the change hook and the single-flight guard
type base[V any] struct {
	mu       sync.Mutex
	view     V
	onChange func()
	busy     bool
}

// View returns a snapshot of the screen state
func (b *base[V]) View() V {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// OnChange registers the hook run after every state change
func (b *base[V]) OnChange(f func()) {
	b.mu.Lock()
	b.onChange = f
	b.mu.Unlock()
}

func (b *base[V]) update(fn func(v *V)) {
	b.mu.Lock()
	fn(&b.view)
	f := b.onChange
	b.mu.Unlock()
	if f != nil {
		f()
	}
}

// begin claims the single-flight slot
func (b *base[V]) begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy {
		return ErrBusy
	}
	b.busy = true
	return nil
}

func (b *base[V]) end() {
	b.mu.Lock()
	b.busy = false
	b.mu.Unlock()
}
