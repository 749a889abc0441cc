/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gocharmap/internal/domain"
	applog "gocharmap/internal/log"
)

const (
	BackupsDirName = "backups"
	// MaxBackups is the number of timestamped backups kept per document.
	MaxBackups = 20

	backupStamp = "20060102-150405.000"
)

// Handle is a document loaded from or saved to a JSON file.
type Handle struct {
	Path     string
	Document domain.Document
}

// Create writes doc to path, creating parent directories, and returns a
// handle for it.
func Create(path string, doc domain.Document) (*Handle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("document path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	doc.Normalize()
	h := &Handle{Path: path, Document: doc}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads a document file. If it cannot be read or fails validation the
// latest backup is used instead.
func Open(path string) (*Handle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("path", path))
	b, err := os.ReadFile(path)
	if err == nil {
		var doc domain.Document
		if doc, err = Decode(b); err == nil {
			return &Handle{Path: path, Document: doc}, nil
		}
	}
	doc, berr := openFromLatestBackup(path)
	if berr != nil {
		return nil, fmt.Errorf("open document: %w; backup attempt: %v", err, berr)
	}
	l.Warn("opened from backup", slog.Any("err", err))
	return &Handle{Path: path, Document: doc}, nil
}

// Save writes the handle's document with transactional semantics and keeps a
// timestamped backup of the previous file.
func Save(h *Handle) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if h.Path == "" {
		return errors.New("invalid Handle: missing path")
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "save").With(slog.String("path", h.Path))
	var buf bytes.Buffer
	if err := Export(&buf, h.Document); err != nil {
		return err
	}

	dir := filepath.Dir(h.Path)
	bdir := filepath.Join(dir, BackupsDirName)
	if _, statErr := os.Stat(h.Path); statErr == nil {
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		bname := fmt.Sprintf("%s.%s.bak", filepath.Base(h.Path), time.Now().Format(backupStamp))
		if err := copyFile(h.Path, filepath.Join(bdir, bname)); err != nil {
			return fmt.Errorf("backup current document: %w", err)
		}
		pruneBackups(h.Path, MaxBackups)
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(h.Path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, buf.Bytes()); err != nil {
		return fmt.Errorf("write temp document: %w", err)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if err := os.Rename(temp, h.Path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", err)
	}
	l.Info("document saved", slog.Int("characters", len(h.Document.Nodes)), slog.Int("connections", len(h.Document.Edges)))
	return nil
}

// SaveAs writes the document to a new path and updates the handle.
func SaveAs(h *Handle, newPath string) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if newPath == "" {
		return errors.New("new path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	h.Path = newPath
	return Save(h)
}

// Import reads a document from r, validates it against the schema and
// normalizes it.
func Import(r io.Reader) (domain.Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read document: %w", err)
	}
	return Decode(b)
}

// Decode is Import over a byte slice.
func Decode(b []byte) (domain.Document, error) {
	if err := ValidateJSON(b); err != nil {
		return domain.Document{}, err
	}
	var doc domain.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	doc.Normalize()
	if err := ValidateDocument(doc); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

// Export writes doc as indented JSON.
func Export(w io.Writer, doc domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// backups lists the backups of path, oldest first.
func backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func pruneBackups(path string, keep int) {
	list, err := backups(path)
	if err != nil || len(list) <= keep {
		return
	}
	for _, p := range list[:len(list)-keep] {
		_ = os.Remove(p)
	}
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(path string) (domain.Document, error) {
	list, err := backups(path)
	if err != nil {
		return domain.Document{}, err
	}
	if len(list) == 0 {
		return domain.Document{}, errors.New("no backups found")
	}
	b, err := os.ReadFile(list[len(list)-1])
	if err != nil {
		return domain.Document{}, fmt.Errorf("read latest backup: %w", err)
	}
	doc, err := Decode(b)
	if err != nil {
		return domain.Document{}, fmt.Errorf("parse latest backup: %w", err)
	}
	return doc, nil
}

// AutosaveCrashSnapshot writes the in-memory document next to the backups
// without touching the document file itself. It returns the snapshot path.
func AutosaveCrashSnapshot(h *Handle) (string, error) {
	if h == nil || h.Path == "" {
		return "", errors.New("invalid Handle")
	}
	bdir := filepath.Join(filepath.Dir(h.Path), BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Export(&buf, h.Document); err != nil {
		return "", err
	}
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", filepath.Base(h.Path), time.Now().Format(backupStamp)))
	if err := writeFileSync(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}
