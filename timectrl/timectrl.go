// Package timectrl drives playback time for time-tagged propagation
// data. A controller advances a simulation clock and notifies
// listeners, which typically forward the elapsed seconds to a profile
// manager so the active profile map tracks playback.
package timectrl

import (
	"context"
	"sync"
	"time"
)

// SimClock gives consumers read access to playback time without
// depending on the concrete controller.
type SimClock interface {
	// Now returns the current playback time.
	Now() time.Time
	// Elapsed returns seconds since playback start.
	Elapsed() float64
}

// Mode describes how a TimeController advances playback time.
type Mode int

const (
	// RealTime advances in step with wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as fast as the loop runs, one tick per pass.
	Accelerated
)

// TimeController advances playback time in fixed ticks and invokes
// registered listeners with the elapsed seconds after every step.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time

	listeners []func(elapsedSec float64)
}

// NewTimeController constructs a controller starting at start that
// steps by tick.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current playback time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// Elapsed returns seconds of playback since StartTime. Implements
// SimClock.
func (tc *TimeController) Elapsed() float64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime.Sub(tc.StartTime).Seconds()
}

// SetTime jumps playback to the given time, as when scrubbing. Safe to
// call while the controller is stopped; a running loop overwrites it on
// the next tick.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	tc.currentTime = t
	tc.mu.Unlock()
}

// AddListener registers a callback invoked after every tick with the
// elapsed playback seconds. Listeners must be registered before Start.
func (tc *TimeController) AddListener(fn func(elapsedSec float64)) {
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller until duration of playback time has passed
// or ctx is canceled, whichever comes first. A duration of zero runs
// until cancellation. The returned channel is closed when the loop
// exits.
func (tc *TimeController) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		simTime := tc.StartTime
		tc.currentTime = simTime
		tc.mu.Unlock()

		elapsed := time.Duration(0)

		var ticker *time.Ticker
		if tc.Mode == RealTime {
			ticker = time.NewTicker(tc.Tick)
			defer ticker.Stop()
		}

		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			if ticker != nil {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			} else if ctx.Err() != nil {
				return
			}

			simTime = simTime.Add(tc.Tick)
			elapsed += tc.Tick

			tc.mu.Lock()
			tc.currentTime = simTime
			tc.mu.Unlock()

			elapsedSec := simTime.Sub(tc.StartTime).Seconds()
			for _, fn := range tc.listeners {
				fn(elapsedSec)
			}
		}
	}()
	return done
}
