/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log configures the application's slog logger: a console handler
// for humans, an optional rotating JSON file and document-aware context.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gocharmap/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization. FromEnv reads them from
// GCM_LOG_LEVEL (debug|info|warn|error), GCM_LOG_FORMAT (console|json),
// GCM_LOG_FILE and GCM_LOG_SOURCE. The config file's logging section maps
// onto the same fields.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string // rotated JSON log, empty disables

	// Console receives the human-readable stream. Nil means stderr.
	Console io.Writer
}

var (
	mu       sync.RWMutex
	current  *slog.Logger
	levelVar = new(slog.LevelVar)
	rotating *lj.Logger
)

// L returns the application logger, initializing it from the environment on
// first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init replaces the application logger and slog's default.
func Init(opts Options) {
	levelVar.Set(parseLevel(opts.Level))
	hopts := &slog.HandlerOptions{Level: levelVar, AddSource: opts.AddSource}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(out, hopts)
	} else {
		console = newConsoleHandler(out, hopts)
	}
	handlers := []slog.Handler{docHandler{next: console}}

	mu.Lock()
	if rotating != nil {
		_ = rotating.Close()
		rotating = nil
	}
	if f := strings.TrimSpace(opts.File); f != "" {
		rotating = &lj.Logger{Filename: f, MaxSize: 5, MaxBackups: 3, MaxAge: 14, Compress: true}
		handlers = append(handlers, docHandler{next: slog.NewJSONHandler(rotating, hopts)})
	}
	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = fanout(handlers)
	}
	current = slog.New(h).With(slog.String("app", "gocharmap"), slog.String("ver", version.Version))
	l := current
	mu.Unlock()
	slog.SetDefault(l)
}

// SetLevel changes the minimum level of the running logger.
func SetLevel(level string) { levelVar.Set(parseLevel(level)) }

// Level reports the current minimum level.
func Level() slog.Level { return levelVar.Level() }

// FromEnv builds Options from GCM_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("GCM_LOG_LEVEL", "info"),
		Format:    getenv("GCM_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("GCM_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("GCM_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger tagged with the subsystem name. The console
// handler prints it as a bracketed prefix.
func WithComponent(name string) *slog.Logger { return L().With(slog.String(componentKey, name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
