// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the structured logger of the engine. It builds on the go-ethereum
// logger and only adds handler setup and package scoped loggers.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes leveled key/value records.
type Logger interface {
	With(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

// WithContext returns a logger carrying ctx. It resolves the root logger on every
// record, so package level loggers pick up a handler installed later by SetDefault.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: ctx}
}

// Root returns the root logger.
func Root() ethlog.Logger {
	return ethlog.Root()
}

// SetDefault installs h as the root handler.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// DiscardHandler returns a handler dropping every record.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}

// Options configures the root handler.
type Options struct {
	// Verbosity 0-5: crit, error, warn, info, debug, trace.
	Verbosity int
	// JSON switches to the json format.
	JSON bool
	// File additionally writes records to a rotated log file.
	File string
}

// Setup builds the root handler from opts and installs it. The returned closer
// releases the log file, if any.
func Setup(w io.Writer, opts Options) (io.Closer, error) {
	if opts.Verbosity < 0 || opts.Verbosity > 5 {
		return nil, errors.Errorf("invalid verbosity %d", opts.Verbosity)
	}

	var closer io.Closer = nopCloser{}
	color := useColor(w)
	if opts.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(w, rotated)
		closer = rotated
		color = false
	}

	var handler slog.Handler
	if opts.JSON {
		handler = ethlog.JSONHandler(w)
	} else {
		handler = ethlog.NewTerminalHandler(w, color)
	}
	glog := ethlog.NewGlogHandler(handler)
	glog.Verbosity(ethlog.FromLegacyLevel(opts.Verbosity))

	SetDefault(glog)
	return closer, nil
}

// ParseLevel converts a level name into a verbosity.
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crit":
		return 0, nil
	case "error":
		return 1, nil
	case "warn", "warning":
		return 2, nil
	case "info", "":
		return 3, nil
	case "debug":
		return 4, nil
	case "trace":
		return 5, nil
	}
	return 0, errors.Errorf("unknown log level %q", s)
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type logger struct {
	ctx []any
}

func (l *logger) root() ethlog.Logger {
	return ethlog.Root().With(l.ctx...)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{ctx: append(append([]any{}, l.ctx...), ctx...)}
}

func (l *logger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...any)  { l.root().Crit(msg, ctx...) }
