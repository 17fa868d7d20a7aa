// Package watcher observes a single file and emits one event per settled
// save. Bursts of raw filesystem events are collapsed by a quiet window
// so a half-written save is never reported.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind identifies what happened to the watched file.
type Kind int

const (
	// EventChanged carries the previous and new settled content.
	EventChanged Kind = iota
	// EventLost is terminal: the file was deleted or moved away.
	EventLost
	// EventFailed is terminal: the file could not be read or watched.
	EventFailed
)

func (k Kind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventLost:
		return "lost"
	case EventFailed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Terminal reports whether no events follow this kind.
func (k Kind) Terminal() bool { return k != EventChanged }

// Event is one settled observation of the watched file. A save that left
// the content as it was has Old == New.
type Event struct {
	Kind Kind
	Path string
	Old  string
	New  string
	Err  error
	At   time.Time
}

// Config controls debouncing and failure tolerance.
type Config struct {
	// Debounce is the quiet window that must pass after the last raw
	// event before the file is read.
	Debounce time.Duration `yaml:"debounce" validate:"gt=0"`

	// ReadRetries is how many times a failed read is retried before a
	// terminal EventFailed.
	ReadRetries int           `yaml:"read_retries" validate:"gte=0"`
	RetryWait   time.Duration `yaml:"retry_wait" validate:"gte=0"`

	// ErrorBudget is how many fsnotify errors are tolerated.
	ErrorBudget int `yaml:"error_budget" validate:"gte=0"`

	// Resaves reports a write that left the content unchanged as an
	// EventChanged with Old == New. Attribute-only changes never are.
	Resaves bool `yaml:"resaves"`
}

// DefaultConfig returns the recommended watcher settings.
func DefaultConfig() Config {
	return Config{
		Debounce:    300 * time.Millisecond,
		ReadRetries: 3,
		RetryWait:   50 * time.Millisecond,
		ErrorBudget: 5,
		Resaves:     true,
	}
}

// Watcher watches one file. It watches the parent directory so editors that
// save by writing a temp file and renaming it over the target are followed.
type Watcher struct {
	path   string
	base   string
	cfg    Config
	logger *slog.Logger

	fsw  *fsnotify.Watcher
	out  chan Event
	done chan struct{}

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once

	// last is the most recent settled content. Owned by the run goroutine
	// once started.
	last     string
	readFile func(string) ([]byte, error)
}

// New creates a Watcher for path. The file must exist; its current content
// becomes the baseline for the first change.
func New(path string, cfg Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		path:     abs,
		base:     filepath.Base(abs),
		cfg:      cfg,
		logger:   logger.With("component", "watcher", "path", abs),
		fsw:      fsw,
		out:      make(chan Event),
		done:     make(chan struct{}),
		last:     string(data),
		readFile: os.ReadFile,
	}, nil
}

// Start begins watching. Events are delivered on Events until a terminal
// event, Stop, or ctx cancellation, after which the channel is closed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		w.fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.started = true
	go w.run(ctx)
	return nil
}

// Events returns the channel of settled events.
func (w *Watcher) Events() <-chan Event {
	return w.out
}

// Stop stops watching and releases the fsnotify handle. Safe to call more
// than once and before Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		started := w.started
		w.mu.Unlock()
		if !started {
			w.fsw.Close()
			close(w.out)
		}
	})
}

// run is the single goroutine that owns debouncing, reading and delivery.
// Settled events queue without bound so a slow consumer never loses one.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.out)
	defer w.fsw.Close()

	var (
		pending  []Event
		terminal bool
		timer    *time.Timer
		timerC   <-chan time.Time
		errCount int
		// wrote is set when the current burst wrote or recreated the file.
		wrote bool
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	defer stopTimer()

	for {
		if terminal && len(pending) == 0 {
			return
		}
		var sendC chan Event
		var next Event
		if len(pending) > 0 {
			sendC, next = w.out, pending[0]
		}

		// Once terminal, only deliver what is queued.
		fsEvents, fsErrors := w.fsw.Events, w.fsw.Errors
		if terminal {
			fsEvents, fsErrors = nil, nil
		}

		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case sendC <- next:
			pending = pending[1:]

		case ev, ok := <-fsEvents:
			if !ok {
				pending = append(pending, w.failed(errors.New("fsnotify event stream closed")))
				terminal = true
				continue
			}
			if filepath.Base(ev.Name) != w.base {
				continue
			}
			w.logger.Debug("raw event", "op", ev.Op.String())
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				wrote = true
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.cfg.Debounce)
			}

		case err, ok := <-fsErrors:
			if !ok {
				continue
			}
			errCount++
			w.logger.Warn("fsnotify error", "error", err, "count", errCount)
			if errCount > w.cfg.ErrorBudget {
				stopTimer()
				pending = append(pending, w.failed(fmt.Errorf("too many watch errors: %w", err)))
				terminal = true
			}

		case <-timerC:
			timer, timerC = nil, nil
			ev, ok := w.settle(ctx, wrote)
			wrote = false
			if !ok {
				continue
			}
			pending = append(pending, ev)
			terminal = ev.Kind.Terminal()
		}
	}
}

// settle reads the file after the quiet window. It returns false when the
// content did not change, unless the burst was a write and resaves are
// reported.
func (w *Watcher) settle(ctx context.Context, wrote bool) (Event, bool) {
	var lastErr error
	for attempt := 0; attempt <= w.cfg.ReadRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Event{}, false
			case <-w.done:
				return Event{}, false
			case <-time.After(w.cfg.RetryWait):
			}
		}

		data, err := w.readFile(w.path)
		if errors.Is(err, os.ErrNotExist) {
			w.logger.Info("watched file lost")
			return Event{Kind: EventLost, Path: w.path, Old: w.last, At: time.Now()}, true
		}
		if err != nil {
			lastErr = err
			w.logger.Warn("read failed", "attempt", attempt+1, "error", err)
			continue
		}

		content := string(data)
		if content == w.last {
			if !wrote || !w.cfg.Resaves {
				return Event{}, false
			}
			return Event{Kind: EventChanged, Path: w.path, Old: content, New: content, At: time.Now()}, true
		}
		ev := Event{Kind: EventChanged, Path: w.path, Old: w.last, New: content, At: time.Now()}
		w.last = content
		return ev, true
	}
	return w.failed(fmt.Errorf("read %s after %d retries: %w", w.path, w.cfg.ReadRetries, lastErr)), true
}

func (w *Watcher) failed(err error) Event {
	w.logger.Error("watch failed", "error", err)
	return Event{Kind: EventFailed, Path: w.path, Old: w.last, Err: err, At: time.Now()}
}
