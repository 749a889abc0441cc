/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileLogIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gocharmap.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "console", File: path, Console: &console})
	t.Cleanup(func() { Init(Options{Level: "error", Console: &bytes.Buffer{}}) })

	l := WithOperation(WithComponent("storage"), "save")
	l.InfoContext(WithDocument(context.Background(), "/maps/a.json"), "document saved", slog.Int("characters", 3))

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	sc := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	want := map[string]any{"app": "gocharmap", "component": "storage", "op": "save", "msg": "document saved", "doc": "/maps/a.json", "characters": float64(3)}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s = %v, want %v (%v)", k, m[k], v, m)
		}
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if !strings.Contains(console.String(), "[storage] document saved") {
		t.Fatalf("console line missing: %q", console.String())
	}
}

func TestConsoleLine(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := slog.New(h).With(slog.String("app", "gocharmap"), slog.String(componentKey, "editor"))
	l.Debug("session start", slog.String("kind", "group-drag"), slog.Float64("dx", 2.5), slog.String("name", "A B"))

	out := buf.String()
	if !strings.Contains(out, " DBG [editor] session start kind=group-drag dx=2.5 name=\"A B\"") {
		t.Fatalf("unexpected line: %q", out)
	}
	if strings.Contains(out, "app=") {
		t.Fatalf("static attrs should stay out of the console: %q", out)
	}
}

func TestConsoleGroupsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info enabled at warn level")
	}
	l := slog.New(h).WithGroup("hint")
	l.Error("snap", slog.Int("guide", 45), slog.Group("at", slog.Int("x", 1)))

	out := buf.String()
	for _, s := range []string{" ERR snap", "hint.guide=45", "hint.at.x=1"} {
		if !strings.Contains(out, s) {
			t.Fatalf("missing %q in %q", s, out)
		}
	}
}

func TestFanoutRespectsLevels(t *testing.T) {
	var a, b bytes.Buffer
	f := fanout{
		newConsoleHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		newConsoleHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	l := slog.New(f)
	l.Info("only a")
	l.Error("both")
	if !strings.Contains(a.String(), "only a") || !strings.Contains(a.String(), "both") {
		t.Fatalf("a = %q", a.String())
	}
	if strings.Contains(b.String(), "only a") || !strings.Contains(b.String(), "both") {
		t.Fatalf("b = %q", b.String())
	}
}

func TestSetLevelAndEnv(t *testing.T) {
	t.Setenv("GCM_LOG_LEVEL", "warn")
	t.Setenv("GCM_LOG_FORMAT", "json")
	t.Setenv("GCM_LOG_SOURCE", "true")
	t.Setenv("GCM_LOG_FILE", "")
	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv = %+v", opts)
	}

	var buf bytes.Buffer
	Init(Options{Level: "warn", Console: &buf})
	t.Cleanup(func() { Init(Options{Level: "error", Console: &bytes.Buffer{}}) })
	if Level() != slog.LevelWarn {
		t.Fatalf("Level() = %v", Level())
	}
	L().Info("hidden")
	SetLevel("debug")
	L().Debug("shown", slog.Duration("took", 1500*time.Millisecond))
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown took=1.5s") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDocumentFrom(t *testing.T) {
	if _, ok := DocumentFrom(context.Background()); ok {
		t.Fatalf("empty context has a document")
	}
	p, ok := DocumentFrom(WithDocument(context.Background(), "x.json"))
	if !ok || p != "x.json" {
		t.Fatalf("DocumentFrom = %q %v", p, ok)
	}
}
