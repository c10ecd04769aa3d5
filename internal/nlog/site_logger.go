/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package nlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Name of the log file created inside the data folder
const LogFileName = "studybud.log"

type Logger interface {
	Logf(format string, v ...any)
}

type subsystemLogger struct {
	name   string
	logger *SiteLogger
}

func (s *subsystemLogger) Logf(format string, v ...any) {
	s.logger.Logf(s.name, format, v...)
}

// How the site logger writes its records
type Options struct {
	Enabled bool      // Whether records are written at all
	Level   string    // debug, info, warn or error. Empty means info
	Format  string    // text or json. Empty means text
	Output  io.Writer // Destination of the records. Nil means stderr
}

// SiteLogger multiplexes named subsystems (http, auth, rooms, storage) onto a single slog handler.
// Every record carries the subsystem name as an attribute.
type SiteLogger struct {
	base    *slog.Logger
	enabled bool

	lock       sync.RWMutex
	subsystems map[string]*slog.Logger

	closer io.Closer
}

func NewSiteLogger(opts Options) (*SiteLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	s := &SiteLogger{
		base:       slog.New(handler),
		enabled:    opts.Enabled,
		subsystems: make(map[string]*slog.Logger),
	}
	return s, nil
}

// OpenSiteLogger is NewSiteLogger writing to <folder>/studybud.log, the file is closed by Close.
func OpenSiteLogger(folder string, opts Options) (*SiteLogger, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(filepath.Join(folder, LogFileName), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}

	opts.Output = file
	s, err := NewSiteLogger(opts)
	if err != nil {
		file.Close()
		return nil, err
	}
	s.closer = file
	return s, nil
}

func (s *SiteLogger) RegisterSubsystem(name string) Logger {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subsystems[name]; !ok {
		s.subsystems[name] = s.base.With("subsystem", name)
	}
	return &subsystemLogger{name, s}
}

func (s *SiteLogger) Logf(name, format string, v ...any) {
	if !s.enabled {
		return
	}

	s.lock.RLock()
	logger, ok := s.subsystems[name]
	s.lock.RUnlock()
	if !ok {
		logger = s.base.With("subsystem", name)
	}
	msg := fmt.Sprintf(format, v...)
	logger.Log(context.Background(), severity(msg), msg)
}

// severity reads the level off a message prefix such as "FATAL:" or "WARN:", Info otherwise
func severity(msg string) slog.Level {
	switch {
	case strings.HasPrefix(msg, "FATAL:"), strings.HasPrefix(msg, "ERROR:"):
		return slog.LevelError
	case strings.HasPrefix(msg, "WARN:"):
		return slog.LevelWarn
	case strings.HasPrefix(msg, "DEBUG:"):
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (s *SiteLogger) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ParseLevel maps a config level name onto a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...any) {}

// Discard returns a Logger that drops everything
func Discard() Logger { return nopLogger{} }
