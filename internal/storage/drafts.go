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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocharmap/internal/domain"
	applog "gocharmap/internal/log"
	"gocharmap/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	DraftsFileName = "drafts.sqlite"
	// DefaultDraftKey namespaces drafts of the character map editor.
	DefaultDraftKey = "character-map-builder.v3"

	// draftsSchemaVersion tracks the drafts database schema. Bump it and add
	// a migration step for breaking changes.
	draftsSchemaVersion = 2
)

// ErrNoDraft is returned when no draft exists for the key.
var ErrNoDraft = errors.New("no draft")

// Drafts is a local SQLite store of document drafts. Drafts are disposable:
// a corrupt database is backed up and recreated on open.
type Drafts struct {
	db   *sql.DB
	path string
	key  string
	log  *slog.Logger
}

// Draft is one saved document state.
type Draft struct {
	ID       int64
	TS       time.Time
	Document domain.Document
}

// DraftInfo describes a draft without decoding it.
type DraftInfo struct {
	ID   int64
	TS   time.Time
	Size int
}

// DefaultDraftsPath returns the drafts database under the user cache dir.
func DefaultDraftsPath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gocharmap", DraftsFileName)
}

// OpenDrafts opens or creates the drafts database at path. An empty key
// uses DefaultDraftKey.
func OpenDrafts(ctx context.Context, path, key string) (*Drafts, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "drafts_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("drafts path is required")
	}
	if key == "" {
		key = DefaultDraftKey
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create drafts dir: %w", err)
	}
	db, err := openDraftsDB(ctx, path)
	if err != nil {
		l.Warn("drafts database unusable, recreating", slog.Any("err", err))
		backupDraftsFile(path)
		_ = os.Remove(path)
		if db, err = openDraftsDB(ctx, path); err != nil {
			l.Error("recreate drafts database failed", slog.Any("err", err))
			return nil, err
		}
	}
	l.Debug("drafts ready")
	return &Drafts{db: db, path: path, key: key, log: applog.WithComponent("drafts")}, nil
}

func openDraftsDB(ctx context.Context, path string) (*sql.DB, error) {
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		_ = db.Close()
		return nil, fmt.Errorf("quick_check failed: %q %v", chk, err)
	}
	for _, step := range []func(context.Context, *sql.DB) error{ensureMetaAndVersion, ensureDraftsSchema, runMigrations} {
		if err := step(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, draftsSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureDraftsSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS drafts (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			key  TEXT    NOT NULL,
			ts   INTEGER NOT NULL,
			blob BLOB    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_key_ts ON drafts(key, ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure drafts schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to draftsSchemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < draftsSchemaVersion {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		var stmts []string
		switch next {
		case 2:
			// v1 databases stored the timestamp as RFC 3339 text
			stmts = []string{
				`UPDATE drafts SET ts = CAST(strftime('%s', ts) AS INTEGER) * 1000000000 WHERE typeof(ts) = 'text';`,
				`INSERT OR REPLACE INTO meta(key, value) VALUES('ts_unit', 'ns');`,
			}
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// backupDraftsFile copies the database file into a timestamped backup next to it.
func backupDraftsFile(path string) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), time.Now().Format(backupStamp)))
	if data, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// Key returns the namespace drafts are stored under.
func (d *Drafts) Key() string { return d.key }

func (d *Drafts) Close() error { return d.db.Close() }

// SaveDraft stores doc as the newest draft.
func (d *Drafts) SaveDraft(ctx context.Context, doc domain.Document) (int64, error) {
	var buf bytes.Buffer
	if err := Export(&buf, doc); err != nil {
		return 0, err
	}
	res, err := d.db.ExecContext(ctx, `INSERT INTO drafts(key, ts, blob) VALUES (?, ?, ?)`, d.key, time.Now().UnixNano(), buf.Bytes())
	if err != nil {
		return 0, fmt.Errorf("insert draft: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("draft id: %w", err)
	}
	d.log.Debug("draft saved", slog.Int64("id", id), slog.Int("bytes", buf.Len()))
	return id, nil
}

// LatestDraft returns the newest draft, or ErrNoDraft.
func (d *Drafts) LatestDraft(ctx context.Context) (Draft, error) {
	row := d.db.QueryRowContext(ctx, `SELECT id, ts, blob FROM drafts WHERE key = ? ORDER BY ts DESC, id DESC LIMIT 1`, d.key)
	return scanDraft(row)
}

// LoadDraft returns the draft with id, or ErrNoDraft.
func (d *Drafts) LoadDraft(ctx context.Context, id int64) (Draft, error) {
	row := d.db.QueryRowContext(ctx, `SELECT id, ts, blob FROM drafts WHERE key = ? AND id = ?`, d.key, id)
	return scanDraft(row)
}

func scanDraft(row *sql.Row) (Draft, error) {
	var (
		dr   Draft
		ts   int64
		blob []byte
	)
	if err := row.Scan(&dr.ID, &ts, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Draft{}, ErrNoDraft
		}
		return Draft{}, fmt.Errorf("query draft: %w", err)
	}
	doc, err := Decode(blob)
	if err != nil {
		return Draft{}, fmt.Errorf("decode draft %d: %w", dr.ID, err)
	}
	dr.TS = time.Unix(0, ts)
	dr.Document = doc
	return dr, nil
}

// ListDrafts returns up to limit drafts, newest first. A non-positive limit
// lists all.
func (d *Drafts) ListDrafts(ctx context.Context, limit int) ([]DraftInfo, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.QueryContext(ctx, `SELECT id, ts, length(blob) FROM drafts WHERE key = ? ORDER BY ts DESC, id DESC LIMIT ?`, d.key, limit)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()
	var out []DraftInfo
	for rows.Next() {
		var (
			info DraftInfo
			ts   int64
		)
		if err := rows.Scan(&info.ID, &ts, &info.Size); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		info.TS = time.Unix(0, ts)
		out = append(out, info)
	}
	return out, rows.Err()
}

// PruneDrafts keeps the newest keepLast drafts and returns how many were
// removed.
func (d *Drafts) PruneDrafts(ctx context.Context, keepLast int) (int64, error) {
	if keepLast < 0 {
		keepLast = 0
	}
	res, err := d.db.ExecContext(ctx, `DELETE FROM drafts WHERE key = ? AND id NOT IN (
		SELECT id FROM drafts WHERE key = ? ORDER BY ts DESC, id DESC LIMIT ?
	)`, d.key, d.key, keepLast)
	if err != nil {
		return 0, fmt.Errorf("prune drafts: %w", err)
	}
	return res.RowsAffected()
}

// ClearDrafts removes all drafts of the key.
func (d *Drafts) ClearDrafts(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, d.key); err != nil {
		return fmt.Errorf("clear drafts: %w", err)
	}
	return nil
}
