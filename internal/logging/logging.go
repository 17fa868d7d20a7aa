// Package logging builds the process logger: readable text on stderr for
// the learner and a JSON file for later inspection.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/abhisek/sherpa/internal/store"
)

// Options configures New.
type Options struct {
	// Console receives text output. Defaults to os.Stderr.
	Console io.Writer
	// Verbose lowers the console level from warn to debug.
	Verbose bool
	// File is the JSON log path. Empty disables the file handler.
	File string
	// FileLevel is the minimum level written to File.
	FileLevel string
}

// New returns a logger fanning records out to every configured handler,
// and a close function for the log file.
func New(opts Options) (*slog.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleLevel := slog.LevelWarn
	if opts.Verbose {
		consoleLevel = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: consoleLevel}),
	}
	closeFn := func() error { return nil }

	if opts.File != "" {
		level, err := ParseLevel(opts.FileLevel)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureDir(opts.File); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closeFn = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}

// ParseLevel maps a level name to a slog.Level. The empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// DefaultFile returns the log path under the data directory.
func DefaultFile() (string, error) {
	dir, err := store.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sherpa.log"), nil
}
