package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// debouncer schedules one callback per quiet period.
type debouncer struct {
	duration time.Duration
	mu       sync.Mutex
	timer    *time.Timer
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Watch watches the config file and calls onChange with the re-parsed
// config and a line-level change summary whenever it is edited. The
// parent directory is watched too, so atomic rename-saves are seen.
// The returned function stops watching.
func Watch(path string, onChange func(*Config, ChangeSummary)) (func(), error) {
	if path == "" {
		path = DefaultPath()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	path = abs

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	// Watch the directory rather than the file: editors that replace
	// the file on save would otherwise drop the watch.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	var mu sync.Mutex
	prev, _ := os.ReadFile(path)

	deb := &debouncer{duration: DefaultDebounce}
	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			return
		}
		raw, _ := os.ReadFile(path)

		mu.Lock()
		sum := Summarize(string(prev), string(raw))
		prev = raw
		mu.Unlock()

		onChange(cfg, sum)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					deb.trigger(reload)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		deb.cancel()
		w.Close()
	}, nil
}
