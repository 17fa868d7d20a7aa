// Package runner ties one tutorial session together: it writes the
// exercise file, turns watcher events into reviewed attempts and answers
// learner commands until the exercise is finished or abandoned.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/sherpa/internal/adaptive"
	"github.com/abhisek/sherpa/internal/detect"
	"github.com/abhisek/sherpa/internal/llm"
	"github.com/abhisek/sherpa/internal/modes"
	"github.com/abhisek/sherpa/internal/paper"
	"github.com/abhisek/sherpa/internal/skeleton"
	"github.com/abhisek/sherpa/internal/store"
	"github.com/abhisek/sherpa/internal/tutor"
)

var (
	// ErrFileExists is returned by Start when the exercise file is already
	// present and Force is not set.
	ErrFileExists = errors.New("exercise file already exists")

	// ErrFileLost ends a run whose exercise file was deleted or moved away.
	ErrFileLost = errors.New("exercise file was removed")

	// ErrWatchFailed ends a run whose file could no longer be watched.
	ErrWatchFailed = errors.New("watching the exercise file failed")
)

// summaryTimeout bounds the closing summary call, which runs even after
// the session context is cancelled.
const summaryTimeout = 30 * time.Second

// Options configures Start.
type Options struct {
	Topic    string
	Paper    *paper.Text
	Language skeleton.Language
	Handler  modes.Handler

	// OutDir receives the exercise file. Defaults to the working directory.
	OutDir string
	// Force overwrites an existing exercise file.
	Force bool

	Thresholds adaptive.Thresholds
	Reporter   Reporter
	// Events records session history. Optional.
	Events store.EventRepo
	Logger *slog.Logger
}

// Runner is one tutorial session. Everything it owns is touched only from
// the goroutine calling Run.
type Runner struct {
	opts     Options
	info     StartInfo
	skel     *skeleton.Skeleton
	machine  *tutor.Machine
	detector *detect.Detector
	advisor  *adaptive.Advisor
	rec      *recorder
	reporter Reporter
	logger   *slog.Logger

	// lastSlot is the slot most recently attempted, the default target
	// for a bare "hint" command.
	lastSlot int
	nudged   map[int]bool
	text     string
	started  time.Time
	done     bool
}

// Start generates the exercise, writes it to disk and prepares the session.
func Start(ctx context.Context, opts Options) (*Runner, error) {
	if opts.Handler == nil {
		return nil, errors.New("runner: mode handler is required")
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Language.Name == "" {
		opts.Language = skeleton.Python
	}
	if opts.Thresholds == (adaptive.Thresholds{}) {
		opts.Thresholds = adaptive.DefaultThresholds()
	}
	if opts.Paper == nil {
		opts.Paper = paper.FromTopic(opts.Topic)
	}

	path := filepath.Join(opts.OutDir, skeleton.FileName(opts.Topic, opts.Language))
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%w: %s (use --force to overwrite)", ErrFileExists, path)
		}
	}

	gctx := llm.WithPurpose(ctx, llm.PurposeSkeleton)
	skel, err := opts.Handler.GenerateExercise(gctx, opts.Topic, opts.Paper, opts.Language)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	text := skeleton.Render(skel, opts.Handler.RenderOptions())
	skel.Path = path
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("write exercise: %w", err)
	}

	r := &Runner{
		opts:     opts,
		skel:     skel,
		machine:  tutor.NewMachine(skel),
		detector: detect.New(skel),
		advisor:  adaptive.NewAdvisor(string(opts.Handler.Mode()), opts.Thresholds),
		reporter: opts.Reporter,
		nudged:   map[int]bool{},
		text:     text,
		started:  time.Now(),
	}
	r.info = StartInfo{
		SessionID: uuid.NewString(),
		Topic:     opts.Topic,
		Title:     skel.Title,
		Mode:      string(opts.Handler.Mode()),
		Path:      path,
		Slots:     skel.Slots,
	}
	r.logger = opts.Logger.With("session", r.info.SessionID)
	r.rec = &recorder{repo: opts.Events, sessionID: r.info.SessionID, logger: r.logger}

	r.logger.Info("session started", "topic", opts.Topic, "mode", r.info.Mode, "path", path, "slots", len(skel.Slots))
	r.rec.session(ctx, store.SessionStarted, r.info, tutor.Metrics{}, 0)
	r.reporter.Started(r.info)
	return r, nil
}

// Path returns the exercise file path.
func (r *Runner) Path() string { return r.info.Path }

// SessionID returns the id under which session events are recorded.
func (r *Runner) SessionID() string { return r.info.SessionID }

// Skeleton returns the generated exercise.
func (r *Runner) Skeleton() *skeleton.Skeleton { return r.skel }

// Machine exposes the session state for inspection.
func (r *Runner) Machine() *tutor.Machine { return r.machine }
