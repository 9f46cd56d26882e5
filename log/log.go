// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log binds package loggers to whatever root logger is installed, at the time they log.
package log

import (
	"context"
	"log/slog"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
)

type Logger = ethlog.Logger

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// bumped by SetDefault, lazy loggers rebuild when it moves
var generation atomic.Uint64

// SetDefault installs l as the root logger.
func SetDefault(l Logger) {
	ethlog.SetDefault(l)
	generation.Add(1)
}

// Root returns the root logger.
func Root() Logger {
	return ethlog.Root()
}

// LevelString returns the lowercase name of lvl.
func LevelString(lvl slog.Level) string {
	return ethlog.LevelString(lvl)
}

// FromLegacyLevel maps a 0 (crit) to 5 (trace) verbosity to a level.
func FromLegacyLevel(lvl int) slog.Level {
	return ethlog.FromLegacyLevel(lvl)
}

// NewLogger returns a logger writing to h.
func NewLogger(h slog.Handler) Logger {
	return ethlog.NewLogger(h)
}

// WithContext returns a logger carrying ctx that follows the root logger,
// so it can be created before logging is configured.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type bound struct {
	gen    uint64
	logger Logger
}

type lazyLogger struct {
	ctx []any
	cur atomic.Pointer[bound]
}

func (l *lazyLogger) get() Logger {
	gen := generation.Load()
	if b := l.cur.Load(); b != nil && b.gen == gen {
		return b.logger
	}
	b := &bound{gen, ethlog.Root().With(l.ctx...)}
	l.cur.Store(b)
	return b.logger
}

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: append(append([]any{}, l.ctx...), ctx...)}
}

func (l *lazyLogger) New(ctx ...any) Logger { return l.With(ctx...) }

func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) { l.get().Log(level, msg, ctx...) }
func (l *lazyLogger) Trace(msg string, ctx ...any) { l.get().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.get().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any) { l.get().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any) { l.get().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.get().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any) { l.get().Crit(msg, ctx...) }

func (l *lazyLogger) Write(level slog.Level, msg string, attrs ...any) {
	l.get().Write(level, msg, attrs...)
}

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.get().Enabled(ctx, level)
}

func (l *lazyLogger) Handler() slog.Handler { return l.get().Handler() }

func Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any) { ethlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any) { ethlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any) { ethlog.Root().Crit(msg, ctx...) }
