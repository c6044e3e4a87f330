// Package watcher observes the repository working tree and coalesces
// bursts of filesystem events into single change signals.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"loupe/internal/log"
	"loupe/internal/pubsub"
)

// ErrWatchUnavailable means the watch could not be established. The app
// keeps running without live refresh when it sees this.
var ErrWatchUnavailable = errors.New("filesystem watch unavailable")

// DefaultDebounce is the quiescence window used when none is configured.
// A single editor save can emit several events; the window restarts on
// every event so a continuous stream produces no signal until it pauses.
const DefaultDebounce = 400 * time.Millisecond

// Signal is the opaque coalesced change notification. It carries no
// payload: consumers re-fetch fresh state rather than trusting events.
type Signal struct{}

// Config holds watcher options.
type Config struct {
	// Root is the repository working directory to observe.
	Root string
	// Debounce is the quiescence window; zero selects DefaultDebounce.
	Debounce time.Duration
}

// Watcher monitors the working tree. Events are filtered, debounced and
// published as Signals on the broker; the watcher never touches UI state.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	broker   *pubsub.Broker[Signal]
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for cfg.Root.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatchUnavailable, err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fsw:      fsw,
		root:     cfg.Root,
		debounce: debounce,
		broker:   pubsub.NewBroker[Signal](),
		done:     make(chan struct{}),
	}, nil
}

// Broker exposes the signal broker for subscription.
func (w *Watcher) Broker() *pubsub.Broker[Signal] { return w.broker }

// Start registers the directory tree and begins the event loop.
// fsnotify watches are not recursive, so every subdirectory is added
// individually and directories created later are added from the loop.
func (w *Watcher) Start() error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == gitDirName && path != w.root {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		_ = w.fsw.Close()
		return fmt.Errorf("%w: %v", ErrWatchUnavailable, err)
	}

	go w.loop()
	return nil
}

// Stop terminates the event loop and closes the broker.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.broker.Close()
	})
	return err
}

const gitDirName = ".git"

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)
	// nil-channel select arm until the first event arms the timer
	timerC := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debug(log.CatWatcher, "fs event", "op", ev.Op.String(), "path", ev.Name)

			// New directories must join the watch before their contents
			// produce events.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(ev.Name)
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-timerC():
			if pending {
				pending = false
				log.Debug(log.CatWatcher, "coalesced change signal")
				w.broker.Publish(pubsub.ChangedEvent, Signal{})
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are not fatal; live refresh degrades until the
			// next successful event.
			log.ErrorErr(log.CatWatcher, "fsnotify error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// relevant filters out version-control metadata and editor noise.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return !ignoredPath(ev.Name)
}

func ignoredPath(name string) bool {
	clean := filepath.ToSlash(name)
	if strings.Contains(clean, "/"+gitDirName+"/") || strings.HasSuffix(clean, "/"+gitDirName) {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lock", ".swp", ".swx", ".tmp":
		return true
	}
	return strings.HasSuffix(name, "~")
}
