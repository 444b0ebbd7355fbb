package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config describes how the application logger should behave.
type Config struct {
	Level       string
	Format      string
	OutputPaths []string
	Audit       AuditConfig
}

// AuditConfig controls the dedicated audit log channel. Audit entries record
// pipeline outcomes (enqueue, success, failure) and are always JSON.
type AuditConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
	auditLogger   *slog.Logger
	closers       []io.Closer
)

// Init configures the global logger instances. Repeated calls reconfigure the
// loggers; callers are expected to Init once during startup.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	handler, sinkClosers, err := newHandler(cfg)
	if err != nil {
		return err
	}
	defaultLogger = slog.New(handler)
	auditLogger = defaultLogger
	closers = sinkClosers

	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			return errors.New("audit log path cannot be empty when enabled")
		}
		writer, err := newRotatingWriter(cfg.Audit.Path,
			orDefault(cfg.Audit.MaxSizeMB, 100),
			orDefault(cfg.Audit.MaxBackups, 7),
			orDefault(cfg.Audit.MaxAgeDays, 30))
		if err != nil {
			return err
		}
		closers = append(closers, writer)
		auditLogger = slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return nil
}

func newHandler(cfg Config) (slog.Handler, []io.Closer, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level), AddSource: true}

	var sinks []io.Closer
	writers := make([]io.Writer, 0, len(cfg.OutputPaths)+1)
	for _, out := range cfg.OutputPaths {
		writer, closer, err := resolveSink(out)
		if err != nil {
			return nil, nil, err
		}
		if closer != nil {
			sinks = append(sinks, closer)
		}
		writers = append(writers, writer)
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	var writer io.Writer = writers[0]
	if len(writers) > 1 {
		writer = io.MultiWriter(writers...)
	}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(writer, opts), sinks, nil
	}
	return slog.NewTextHandler(writer, opts), sinks, nil
}

func resolveSink(path string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(path) {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, file, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

// L returns the structured logger instance, initialising a stdout text
// logger when Init has not been called.
func L() *slog.Logger {
	mu.Lock()
	ready := defaultLogger != nil
	mu.Unlock()
	if !ready {
		_ = Init(Config{})
	}
	return defaultLogger
}

// Audit returns the audit logger. It falls back to the default logger when
// no dedicated audit sink is configured.
func Audit() *slog.Logger {
	if auditLogger == nil {
		return L()
	}
	return auditLogger
}

// Sync closes any file-backed outputs.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	var err error
	for _, closer := range closers {
		err = errors.Join(err, closer.Close())
	}
	closers = nil
	return err
}

// Named returns a child logger grouping its attributes under the component
// name.
func Named(name string) *slog.Logger {
	return L().WithGroup(name)
}
