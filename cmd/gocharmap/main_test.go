/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"gocharmap/internal/config"
	"gocharmap/internal/domain"
	"gocharmap/internal/storage"
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

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigFile, filepath.Join(dir, "config.yaml"))
	t.Setenv(config.EnvPublishToken, "")
	t.Setenv(config.EnvDraftDB, filepath.Join(dir, "drafts.sqlite"))
	t.Setenv(config.EnvPublishProvider, "")
	t.Setenv(config.EnvLogLevel, "error")
	prev := config.SetTokenStore(memTokens{})
	t.Cleanup(func() { config.SetTokenStore(prev) })
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	code := run(args, &out)
	return code, out.String()
}

func writeMap(t *testing.T, dir string) string {
	t.Helper()
	doc := domain.NewDocument()
	doc.Nodes = []domain.Node{{ID: "a", Name: "Aria"}, {ID: "b", Name: "Bren", GridX: 10}}
	doc.Edges = []domain.Edge{
		{ID: "e1", From: "a", To: "b", Type: "love", StartSide: domain.SideRight, EndSide: domain.SideLeft},
		{ID: "e2", From: "a", To: "ghost", Type: "love", StartSide: domain.SideBottom, EndSide: domain.SideTop},
	}
	path := filepath.Join(dir, "map.json")
	if _, err := storage.Create(path, doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return path
}

func TestUsageAndVersion(t *testing.T) {
	setup(t)
	code, out := runCLI(t)
	if code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("no args: code=%d out=%q", code, out)
	}
	code, out = runCLI(t, "bogus")
	if code != 2 || !strings.Contains(out, "Usage:") {
		t.Fatalf("unknown command: code=%d out=%q", code, out)
	}
	code, out = runCLI(t, "--version")
	if code != 0 || !strings.Contains(out, "gocharmap") {
		t.Fatalf("version: code=%d out=%q", code, out)
	}
	code, out = runCLI(t, "info")
	if code != 2 || !strings.Contains(out, "info requires <file>") {
		t.Fatalf("missing arg: code=%d out=%q", code, out)
	}
}

func TestInitInfoValidate(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "new", "map.json")
	if code, out := runCLI(t, "init", path, "30", "20"); code != 0 {
		t.Fatalf("init: %d %q", code, out)
	}
	code, out := runCLI(t, "info", path)
	if code != 0 || !strings.Contains(out, "Canvas: 30x20") || !strings.Contains(out, "Characters: 0") {
		t.Fatalf("info: %d %q", code, out)
	}
	if code, out := runCLI(t, "validate", path); code != 0 || strings.TrimSpace(out) != "OK" {
		t.Fatalf("validate: %d %q", code, out)
	}
	if code, _ := runCLI(t, "init", filepath.Join(dir, "bad.json"), "x", "2"); code != 1 {
		t.Fatalf("bad size accepted")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"characters": 3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _ := runCLI(t, "validate", bad); code != 1 {
		t.Fatalf("invalid document passed validation")
	}
}

func TestInfoCountsDangling(t *testing.T) {
	dir := setup(t)
	path := writeMap(t, dir)
	code, out := runCLI(t, "info", path)
	if code != 0 || !strings.Contains(out, "Connections: 2") || !strings.Contains(out, "Dangling connections: 1") || !strings.Contains(out, "Extent: 300x160 px at (0,0)") {
		t.Fatalf("info: %d %q", code, out)
	}
}

func TestExport(t *testing.T) {
	dir := setup(t)
	path := writeMap(t, dir)
	out := filepath.Join(dir, "out", "map.svg")
	if code, msg := runCLI(t, "export", "svg", path, out, "--query", "aria", "--hints", "e1"); code != 0 {
		t.Fatalf("export: %d %q", code, msg)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(b), `id="edge-e1"`) || strings.Contains(string(b), `id="edge-e2"`) {
		t.Fatalf("unexpected svg: %s", b)
	}
	if code, _ := runCLI(t, "export", "gif", path, out); code != 1 {
		t.Fatalf("unknown format accepted")
	}
	if code, _ := runCLI(t, "export", "png", path, out, "--scale"); code != 1 {
		t.Fatalf("option without value accepted")
	}
	png := filepath.Join(dir, "map.png")
	if code, msg := runCLI(t, "export", "png", path, png, "--scale", "0.5"); code != 0 {
		t.Fatalf("png export: %d %q", code, msg)
	}
}

func TestDraftSaveListRestore(t *testing.T) {
	dir := setup(t)
	path := writeMap(t, dir)
	if code, out := runCLI(t, "draft", "list", path); code != 0 || !strings.Contains(out, "No drafts") {
		t.Fatalf("empty list: %d %q", code, out)
	}
	if code, out := runCLI(t, "draft", "save", path); code != 0 || !strings.Contains(out, "Saved draft") {
		t.Fatalf("save: %d %q", code, out)
	}

	h, err := storage.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	h.Document.Nodes = h.Document.Nodes[:1]
	if err := storage.Save(h); err != nil {
		t.Fatal(err)
	}
	if code, out := runCLI(t, "draft", "restore", path); code != 0 || !strings.Contains(out, "Restored draft") {
		t.Fatalf("restore: %d %q", code, out)
	}
	h, err = storage.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Document.Nodes) != 2 {
		t.Fatalf("restored nodes = %d", len(h.Document.Nodes))
	}
	if code, _ := runCLI(t, "draft", "shred", path); code != 1 {
		t.Fatalf("unknown draft action accepted")
	}
	if code, out := runCLI(t, "draft", "clear", path); code != 0 || !strings.Contains(out, "Cleared drafts") {
		t.Fatalf("clear: %d %q", code, out)
	}
	if code, out := runCLI(t, "draft", "list", path); code != 0 || !strings.Contains(out, "No drafts") {
		t.Fatalf("list after clear: %d %q", code, out)
	}
}

func TestPublishNotConfigured(t *testing.T) {
	dir := setup(t)
	path := writeMap(t, dir)
	if code, out := runCLI(t, "publish", path, "first", "cut"); code != 1 || !strings.Contains(out, "Error:") {
		t.Fatalf("publish: %d %q", code, out)
	}
	if code, _ := runCLI(t, "fetch", filepath.Join(dir, "remote.json")); code != 1 {
		t.Fatalf("fetch without provider succeeded")
	}
}

func TestPasswordChange(t *testing.T) {
	setup(t)
	if code, out := runCLI(t, "password", "first"); code != 0 || !strings.Contains(out, "updated") {
		t.Fatalf("set: %d %q", code, out)
	}
	if code, _ := runCLI(t, "password", "second", "wrong"); code != 1 {
		t.Fatalf("wrong current password accepted")
	}
	if code, _ := runCLI(t, "password", "second", "first"); code != 0 {
		t.Fatalf("change with current password failed")
	}
	hash, err := config.EditPasswordHash()
	if err != nil || hash == "" {
		t.Fatalf("hash not stored: %q %v", hash, err)
	}
	if code, _ := runCLI(t, "password", " "); code != 1 {
		t.Fatalf("blank password accepted")
	}
}
