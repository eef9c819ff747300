// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Reload is one outcome of re-reading the watched file.
type Reload struct {
	Config *Config
	Err    error
}

// Watcher re-reads a config file whenever it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	out      chan Reload
	ctx      context.Context
	cancel   context.CancelFunc
}

// Watch starts watching path. Bursts of events within debounce collapse into
// one reload. The parent directory is watched so editors that replace the
// file on save are still seen.
func Watch(path string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     filepath.Clean(path),
		watcher:  fsw,
		debounce: debounce,
		out:      make(chan Reload),
		ctx:      ctx,
		cancel:   cancel,
	}

	go w.processEvents()
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Changes delivers one Reload per settled burst of changes.
func (w *Watcher) Changes() <-chan Reload { return w.out }

// Done is closed once the watcher stops.
func (w *Watcher) Done() <-chan struct{} { return w.ctx.Done() }

// Next blocks until the next reload or until the watcher stops.
// The second result is false once the watcher is closed.
func (w *Watcher) Next() (Reload, bool) {
	select {
	case r := <-w.out:
		return r, true
	case <-w.ctx.Done():
		return Reload{}, false
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// processEvents processes file system events
func (w *Watcher) processEvents() {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			cfg, err := LoadFromPath(w.path)
			if !w.deliver(Reload{Config: cfg, Err: err}) {
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if !w.deliver(Reload{Err: err}) {
				return
			}
		}
	}
}

func (w *Watcher) deliver(r Reload) bool {
	select {
	case w.out <- r:
		return true
	case <-w.ctx.Done():
		return false
	}
}
