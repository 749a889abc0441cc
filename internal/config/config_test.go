/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"gocharmap/internal/interact"
	"gocharmap/internal/publish"
)

type memTokens map[string]string

func (m memTokens) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (m memTokens) Set(service, key, value string) error {
	m[service+"/"+key] = value
	return nil
}

func (m memTokens) Delete(service, key string) error {
	if _, ok := m[service+"/"+key]; !ok {
		return keyring.ErrNotFound
	}
	delete(m, service+"/"+key)
	return nil
}

// isolate points the config file at a temp dir and stubs the keyring.
func isolate(t *testing.T) (string, memTokens) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvPublishToken, "")
	mt := memTokens{}
	prev := SetTokenStore(mt)
	t.Cleanup(func() { SetTokenStore(prev) })
	return path, mt
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "" {
		t.Fatalf("unexpected token %q", tok)
	}
	if cfg.Canvas.GridUnit != 20 || cfg.Canvas.Width != 50 || cfg.Guides.ToleranceDeg != 6 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.Publish.Branch != "main" || cfg.Publish.Path != "data.json" {
		t.Fatalf("unexpected publish defaults: %#v", cfg.Publish)
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	path, _ := isolate(t)
	data := []byte("canvas:\n  width: 80\neditor:\n  drag_quantize: Discard\n  clamp_to_canvas: true\nguides:\n  angles: [0, 90]\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Canvas.Width != 80 || cfg.Canvas.Height != 40 {
		t.Fatalf("canvas = %#v", cfg.Canvas)
	}
	if cfg.Editor.DragQuantize != "discard" || !cfg.Editor.ClampToCanvas {
		t.Fatalf("editor = %#v", cfg.Editor)
	}
	if len(cfg.Guides.Angles) != 2 {
		t.Fatalf("angles = %v", cfg.Guides.Angles)
	}
	opts := cfg.EditorOptions()
	if opts.Quantize != interact.DragDiscard || opts.CanvasWidth != 80 || !opts.ClampToCanvas {
		t.Fatalf("editor options = %#v", opts)
	}
}

func TestInvalidFileIsRejected(t *testing.T) {
	path, _ := isolate(t)
	if err := os.WriteFile(path, []byte("editor:\n  drag_quantize: sideways\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := os.WriteFile(path, []byte("canvas: [not, a, map]\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverridesPublish(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPublishOwner, "octo")
	t.Setenv(EnvPublishRepo, "maps")
	t.Setenv(EnvPublishProvider, "GitHub")
	t.Setenv(EnvPublishToken, "tok")
	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Publish.Owner != "octo" || cfg.Publish.Repo != "maps" || cfg.Publish.Provider != "github" {
		t.Fatalf("publish = %#v", cfg.Publish)
	}
	if tok != "tok" {
		t.Fatalf("token = %q", tok)
	}
	if env, ok := EnvOverrideFor("publish.owner"); !ok || env != EnvPublishOwner {
		t.Fatalf("EnvOverrideFor = %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("publish.branch"); ok {
		t.Fatalf("branch is not overridden")
	}
	gh := cfg.GitHubOptions(tok)
	if gh.Owner != "octo" || gh.Token != "tok" || gh.Timeout != 10*time.Second {
		t.Fatalf("github options = %#v", gh)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/gcm.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/gcm.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
	lo := cfg.LogOptions()
	if lo.Level != "error" || !lo.AddSource {
		t.Fatalf("log options = %#v", lo)
	}
}

func TestSaveRoundTripAndKeyring(t *testing.T) {
	_, mt := isolate(t)
	cfg := Defaults()
	cfg.Canvas.Width = 64
	cfg.Editor.UndoMinIntervalMs = 250
	if err := Save(cfg, "secret-token"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Canvas.Width != 64 || tok != "secret-token" {
		t.Fatalf("round trip = %d %q", got.Canvas.Width, tok)
	}
	if got.UndoConfig().MinInterval != 250*time.Millisecond {
		t.Fatalf("undo config = %#v", got.UndoConfig())
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken twice: %v", err)
	}
	if len(mt) != 0 {
		t.Fatalf("keyring not empty: %v", mt)
	}

	bad := Defaults()
	bad.Canvas.GridUnit = 0
	if err := Save(bad, ""); err == nil {
		t.Fatalf("expected validation error on save")
	}
}

func TestEditPasswordHash(t *testing.T) {
	isolate(t)
	if h, err := EditPasswordHash(); h != "" || err != nil {
		t.Fatalf("empty keyring = %q %v", h, err)
	}
	if err := SaveEditPasswordHash("$2a$hash"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if h, _ := EditPasswordHash(); h != "$2a$hash" {
		t.Fatalf("hash = %q", h)
	}
	if err := SaveEditPasswordHash(""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if h, _ := EditPasswordHash(); h != "" {
		t.Fatalf("hash after clear = %q", h)
	}
}

func TestConversions(t *testing.T) {
	cfg := Defaults()
	if m := cfg.Metrics(); m.GridUnit != 20 || m.TileHeight != 160 {
		t.Fatalf("metrics = %#v", m)
	}
	h := cfg.HintOptions()
	h.Guides[0] = 99
	if cfg.Guides.Angles[0] != 0 {
		t.Fatalf("HintOptions must copy the angle list")
	}
	if lm := cfg.LabelMetrics(); lm.Height != 16 || lm.CharWidth != 6 {
		t.Fatalf("label metrics = %#v", lm)
	}
}

func TestOpenPublisher(t *testing.T) {
	cfg := Defaults()
	if _, _, err := cfg.OpenPublisher(context.Background(), ""); !errors.Is(err, publish.ErrNotConfigured) {
		t.Fatalf("no provider: err = %v", err)
	}
	cfg.Publish.Provider = "postgres"
	if _, _, err := cfg.OpenPublisher(context.Background(), ""); !errors.Is(err, publish.ErrNotConfigured) {
		t.Fatalf("postgres without dsn: err = %v", err)
	}
	cfg.Publish.Provider = "github"
	p, closeFn, err := cfg.OpenPublisher(context.Background(), "tok")
	if err != nil {
		t.Fatalf("github: %v", err)
	}
	if _, ok := p.(*publish.GitHubPublisher); !ok {
		t.Fatalf("publisher = %T", p)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPublishTimeout(t *testing.T) {
	cases := []struct {
		ms   int
		want time.Duration
	}{
		{0, 30 * time.Second},
		{200, time.Second},
		{10000, 10 * time.Second},
	}
	for _, c := range cases {
		cfg := Defaults()
		cfg.Publish.TimeoutMs = c.ms
		if got := cfg.PublishTimeout(); got != c.want {
			t.Fatalf("PublishTimeout(%d) = %v, want %v", c.ms, got, c.want)
		}
	}
}
