// Package engine provides the frame loop that drives per-frame editor updates
// (tooltip timers) and periodic autosave.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultInterval is roughly one frame at 60 Hz.
const DefaultInterval = 16 * time.Millisecond

// Loop calls its hooks once per frame until stopped.
type Loop struct {
	Frame         uint64        // frames stepped so far, monotonic
	Interval      time.Duration // time between frames
	AutosaveEvery time.Duration // 0 disables autosave

	// Hooks run synchronously on the loop goroutine.
	OnFrame    func(now time.Time)
	OnAutosave func(now time.Time)

	running  atomic.Bool
	lastSave time.Time
}

// NewLoop creates a loop with the default frame interval.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// Run steps the loop on every tick until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	l.running.Store(true)
	slog.Info("frame loop started", "interval", interval, "autosave", l.AutosaveEvery)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for l.running.Load() {
		select {
		case <-ctx.Done():
			l.running.Store(false)
		case now := <-ticker.C:
			l.Step(now)
		}
	}

	slog.Info("frame loop stopped", "frame", l.Frame)
}

// Stop halts the loop after the current frame.
func (l *Loop) Stop() {
	l.running.Store(false)
}

// Running reports whether Run is active.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Step advances one frame at now.
func (l *Loop) Step(now time.Time) {
	l.Frame++

	if l.OnFrame != nil {
		l.OnFrame(now)
	}

	if l.AutosaveEvery <= 0 || l.OnAutosave == nil {
		return
	}
	if l.lastSave.IsZero() {
		// first frame starts the autosave clock
		l.lastSave = now
		return
	}
	if now.Sub(l.lastSave) >= l.AutosaveEvery {
		l.lastSave = now
		l.OnAutosave(now)
	}
}
