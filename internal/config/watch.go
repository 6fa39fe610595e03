// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// FILE WATCHING
// =============================================================================

// Watcher re-reads the config file when it changes on disk and hands each
// successfully loaded Config to the callback. Invalid intermediate states
// (editors often write in two steps) are logged and skipped; the previous
// config stays in effect.
type Watcher struct {
	stop chan struct{}
	done chan error
}

// Watch starts watching path. The callback runs on the watcher goroutine,
// so it must not block for long.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	w := &Watcher{
		stop: make(chan struct{}),
		done: make(chan error),
	}

	go func() {
		for {
			select {
			case event := <-fw.Events:
				// Atomic saves surface as Create (rename over the target);
				// plain editors surface as Write.
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := LoadFromPath(path)
				if err != nil {
					log.Printf("config: reload failed, keeping previous: %v", err)
					continue
				}
				onChange(cfg)
			case err := <-fw.Errors:
				log.Printf("config: watch error: %v", err)
			case <-w.stop:
				w.done <- fw.Close()
				return
			}
		}
	}()

	return w, nil
}

// Close stops watching and releases the underlying notifier.
func (w *Watcher) Close() error {
	close(w.stop)
	return <-w.done
}
