// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package poll provides periodic background refresh for read-only views.
package poll

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// MESSAGES
// =============================================================================

// tickMsg asks a poller to fetch again.
type tickMsg struct {
	name       string
	generation uint64
}

// resultMsg carries the outcome of one fetch.
type resultMsg[T any] struct {
	name       string
	generation uint64
	value      T
	err        error
	at         time.Time
}

// =============================================================================
// POLLER
// =============================================================================

// FetchFunc loads one snapshot. It must honor ctx cancellation.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Poller keeps a snapshot fresh while its view is mounted.
//
// Poller is a value type in the bubbletea style: every method that changes
// state returns the updated poller. Messages are tagged with the poller name
// and a generation; anything from an older generation is ignored, so nothing
// is fetched after Stop.
type Poller[T any] struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fetch    FetchFunc[T]

	generation uint64
	active     bool
	loading    bool

	snapshot    T
	hasSnapshot bool
	err         error
	staleErr    error
	lastUpdated time.Time

	cancel context.CancelFunc
}

// New creates an inactive poller. The name must be unique among the pollers
// sharing one program.
func New[T any](name string, interval time.Duration, fetch FetchFunc[T]) Poller[T] {
	return Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
	}
}

// Name returns the poller name.
func (p Poller[T]) Name() string { return p.name }

// Interval returns the refresh period.
func (p Poller[T]) Interval() time.Duration { return p.interval }

// SetInterval changes the refresh period. It applies from the next tick.
func (p Poller[T]) SetInterval(d time.Duration) Poller[T] {
	if d > 0 {
		p.interval = d
	}
	return p
}

// Timeout returns the bound on one fetch: the value set with SetTimeout, or
// the interval when none was set.
func (p Poller[T]) Timeout() time.Duration {
	if p.timeout > 0 {
		return p.timeout
	}
	return p.interval
}

// SetTimeout bounds each fetch. Defaults to the interval.
func (p Poller[T]) SetTimeout(d time.Duration) Poller[T] {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start mounts the poller: it opens a new generation, shows the loading
// state and fetches immediately. Starting an active poller restarts it.
func (p Poller[T]) Start() (Poller[T], tea.Cmd) {
	if p.active {
		p, _ = p.Stop()
	}

	p.generation++
	p.active = true
	p.loading = true
	p.err = nil
	p.staleErr = nil

	var cmd tea.Cmd
	p, cmd = p.fetchCmd()
	return p, cmd
}

// Stop tears the poller down. It returns false when it was not active, so
// teardown happens at most once per Start.
func (p Poller[T]) Stop() (Poller[T], bool) {
	if !p.active {
		return p, false
	}

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	var zero T
	p.generation++
	p.active = false
	p.loading = false
	p.snapshot = zero
	p.hasSnapshot = false
	p.err = nil
	p.staleErr = nil
	return p, true
}

// Update handles the poller's own messages and ignores everything else.
func (p Poller[T]) Update(msg tea.Msg) (Poller[T], tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if !p.owns(msg.name, msg.generation) {
			return p, nil
		}
		return p.fetchCmd()

	case resultMsg[T]:
		if !p.owns(msg.name, msg.generation) {
			return p, nil
		}
		return p.handleResult(msg)
	}
	return p, nil
}

func (p Poller[T]) owns(name string, generation uint64) bool {
	return p.active && name == p.name && generation == p.generation
}

func (p Poller[T]) handleResult(msg resultMsg[T]) (Poller[T], tea.Cmd) {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.loading = false

	if msg.err != nil {
		if p.hasSnapshot {
			p.staleErr = msg.err
		} else {
			p.err = msg.err
		}
	} else {
		p.snapshot = msg.value
		p.hasSnapshot = true
		p.lastUpdated = msg.at
		p.err = nil
		p.staleErr = nil
	}

	return p, p.tickCmd()
}

// =============================================================================
// COMMANDS
// =============================================================================

func (p Poller[T]) fetchCmd() (Poller[T], tea.Cmd) {
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout())
	p.cancel = cancel

	name, generation, fetch := p.name, p.generation, p.fetch
	return p, func() tea.Msg {
		value, err := fetch(ctx)
		return resultMsg[T]{
			name:       name,
			generation: generation,
			value:      value,
			err:        err,
			at:         time.Now(),
		}
	}
}

func (p Poller[T]) tickCmd() tea.Cmd {
	name, generation := p.name, p.generation
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return tickMsg{name: name, generation: generation}
	})
}

// =============================================================================
// STATE
// =============================================================================

// Active reports whether the poller is mounted.
func (p Poller[T]) Active() bool { return p.active }

// Loading reports whether the first fetch of this mount is outstanding.
// Background refreshes never set it.
func (p Poller[T]) Loading() bool { return p.loading }

// Snapshot returns the last good snapshot and whether one exists.
func (p Poller[T]) Snapshot() (T, bool) { return p.snapshot, p.hasSnapshot }

// Err returns the error of a failed initial fetch.
func (p Poller[T]) Err() error { return p.err }

// StaleErr returns the error of the last failed background fetch.
// The snapshot is still the last good one.
func (p Poller[T]) StaleErr() error { return p.staleErr }

// LastUpdated returns when the snapshot was last replaced.
func (p Poller[T]) LastUpdated() time.Time { return p.lastUpdated }
