// Copyright 2025 The Gerkon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// HandlerType selects the output format.
type HandlerType string

const (
	// JSONHandler outputs structured JSON logs.
	JSONHandler HandlerType = "json"
	// TextHandler outputs key=value text logs.
	TextHandler HandlerType = "text"
	// ConsoleHandler outputs human-readable colored logs.
	ConsoleHandler HandlerType = "console"
)

// Level is a log level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel parses "debug", "info", "warn"/"warning" or "error",
// case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}

	return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// ParseHandlerType parses "json", "text", "console", or "none"/"off"
// for a disabled logger. The boolean reports whether logging is disabled.
func ParseHandlerType(s string) (HandlerType, bool, error) {
	switch t := HandlerType(strings.ToLower(strings.TrimSpace(s))); t {
	case JSONHandler, TextHandler, ConsoleHandler:
		return t, false, nil
	case "":
		return JSONHandler, false, nil
	case "none", "off", "disabled":
		return JSONHandler, true, nil
	default:
		return "", false, fmt.Errorf("%w: %q", ErrInvalidHandler, s)
	}
}

// Logger owns a configured *slog.Logger. All methods are safe for
// concurrent use.
type Logger struct {
	handlerType HandlerType
	output      io.Writer
	level       slog.LevelVar
	color       ColorMode

	serviceName    string
	serviceVersion string
	environment    string

	addSource   bool
	replaceAttr func(groups []string, a slog.Attr) slog.Attr

	customLogger *slog.Logger
	useCustom    bool
	disabled     bool

	registerGlobal bool

	slogger atomic.Pointer[slog.Logger]
}

// Option configures a Logger.
type Option func(*Logger)

func defaultLogger() *Logger {
	l := &Logger{
		handlerType: JSONHandler,
		output:      os.Stdout,
		color:       ColorAuto,
	}
	l.level.Set(LevelInfo)

	return l
}

// New creates a Logger. It does not replace the slog default logger
// unless WithGlobalLogger is given.
func New(opts ...Option) (*Logger, error) {
	l := defaultLogger()
	for _, opt := range opts {
		opt(l)
	}

	if err := l.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := l.build()
	l.slogger.Store(logger)
	if l.registerGlobal {
		slog.SetDefault(logger)
	}

	return l, nil
}

// MustNew creates a Logger or panics.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic("logging initialization failed: " + err.Error())
	}

	return l
}

func (l *Logger) validate() error {
	if l.useCustom && l.customLogger == nil {
		return ErrNilLogger
	}
	if l.output == nil {
		return ErrNilOutput
	}
	switch l.handlerType {
	case JSONHandler, TextHandler, ConsoleHandler:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidHandler, l.handlerType)
	}

	return nil
}

func (l *Logger) build() *slog.Logger {
	if l.useCustom {
		return l.customLogger
	}
	if l.disabled {
		return slog.New(slog.DiscardHandler)
	}

	opts := &slog.HandlerOptions{
		Level:       &l.level,
		AddSource:   l.addSource,
		ReplaceAttr: l.redact,
	}

	var handler slog.Handler
	switch l.handlerType {
	case TextHandler:
		handler = slog.NewTextHandler(l.output, opts)
	case ConsoleHandler:
		handler = newConsoleHandler(l.output, opts, useColor(l.output, l.color))
	default:
		handler = slog.NewJSONHandler(l.output, opts)
	}

	logger := slog.New(handler)

	var attrs []any
	if l.serviceName != "" {
		attrs = append(attrs, "service", l.serviceName)
	}
	if l.serviceVersion != "" {
		attrs = append(attrs, "version", l.serviceVersion)
	}
	if l.environment != "" {
		attrs = append(attrs, "env", l.environment)
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}

	return logger
}

// redact masks sensitive attributes, then applies the user replacer.
func (l *Logger) redact(groups []string, a slog.Attr) slog.Attr {
	switch strings.ToLower(a.Key) {
	case "password", "token", "secret", "api_key", "authorization":
		a = slog.String(a.Key, "***REDACTED***")
	}
	if l.replaceAttr != nil {
		return l.replaceAttr(groups, a)
	}

	return a
}

// Logger returns the underlying *slog.Logger.
func (l *Logger) Logger() *slog.Logger {
	return l.slogger.Load()
}

// With returns a *slog.Logger with additional attributes.
func (l *Logger) With(args ...any) *slog.Logger {
	return l.Logger().With(args...)
}

func (l *Logger) Debug(msg string, args ...any) { l.Logger().Debug(msg, args...) }

func (l *Logger) Info(msg string, args ...any) { l.Logger().Info(msg, args...) }

func (l *Logger) Warn(msg string, args ...any) { l.Logger().Warn(msg, args...) }

func (l *Logger) Error(msg string, args ...any) { l.Logger().Error(msg, args...) }

// SetLevel changes the minimum level at runtime. Loggers created with
// WithCustomLogger manage their own level.
func (l *Logger) SetLevel(level Level) error {
	if l.useCustom {
		return ErrCannotChangeLevel
	}
	l.level.Set(level)

	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	return l.level.Level()
}

// Enabled reports whether records are written at all.
func (l *Logger) Enabled() bool {
	return !l.disabled
}

// ServiceName returns the configured service name.
func (l *Logger) ServiceName() string {
	return l.serviceName
}

// Shutdown flushes the handler if it supports flushing.
func (l *Logger) Shutdown(_ context.Context) error {
	if f, ok := l.Logger().Handler().(interface{ Flush() error }); ok {
		return f.Flush()
	}

	return nil
}
