/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package publish

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gocharmap/internal/domain"
	applog "gocharmap/internal/log"
	"gocharmap/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DefaultSnapshotName is the snapshot series used when none is configured.
const DefaultSnapshotName = "default"

// PostgresPublisher keeps every published version of a document in the
// shared_snapshots table.
type PostgresPublisher struct {
	db   *sql.DB
	name string
	log  *slog.Logger
}

// SnapshotInfo describes one published version.
type SnapshotInfo struct {
	Version   int64
	Message   string
	CreatedAt time.Time
}

// OpenPostgres connects to dsn and applies the embedded migrations.
func OpenPostgres(ctx context.Context, dsn, name string) (*PostgresPublisher, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrNotConfigured
	}
	if name == "" {
		name = DefaultSnapshotName
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(pctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresPublisher{
		db:   db,
		name: name,
		log:  applog.WithComponent("publish").With(slog.String("target", "postgres"), slog.String("name", name)),
	}, nil
}

func (p *PostgresPublisher) Close() error { return p.db.Close() }

// Publish inserts doc as the next version of the series.
func (p *PostgresPublisher) Publish(ctx context.Context, doc domain.Document, message string) error {
	if message == "" {
		message = DefaultMessage
	}
	var buf bytes.Buffer
	if err := storage.Export(&buf, doc); err != nil {
		return err
	}
	var version int64
	err := p.db.QueryRowContext(ctx, `INSERT INTO shared_snapshots(name, version, snapshot, message)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2::jsonb, $3 FROM shared_snapshots WHERE name = $1
		RETURNING version`, p.name, buf.String(), message).Scan(&version)
	if err != nil {
		p.log.Error("publish failed", slog.Any("err", err))
		return fmt.Errorf("insert snapshot: %w", err)
	}
	p.log.Info("published", slog.Int64("version", version))
	return nil
}

// Fetch returns the latest published version.
func (p *PostgresPublisher) Fetch(ctx context.Context) (domain.Document, error) {
	var snap []byte
	err := p.db.QueryRowContext(ctx, `SELECT snapshot FROM shared_snapshots WHERE name = $1 ORDER BY version DESC, id DESC LIMIT 1`, p.name).Scan(&snap)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.Document{}, ErrNoSnapshot
	case err != nil:
		return domain.Document{}, fmt.Errorf("select snapshot: %w", err)
	}
	return storage.Decode(snap)
}

// History lists up to limit published versions, newest first.
func (p *PostgresPublisher) History(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `SELECT version, message, created_at FROM shared_snapshots WHERE name = $1 ORDER BY version DESC LIMIT $2`, p.name, limit)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	defer rows.Close()
	var out []SnapshotInfo
	for rows.Next() {
		var s SnapshotInfo
		if err := rows.Scan(&s.Version, &s.Message, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// applyMigrations applies embedded SQL migrations in filename order.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	if err := rows.Close(); err != nil {
		return err
	}

	l := applog.WithOperation(applog.WithComponent("publish"), "migrate")
	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		l.Info("applying migration", slog.String("file", fname))
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`, version, fname); err != nil {
			return fmt.Errorf("record %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	parts := strings.SplitN(base, "_", 2)
	if len(parts) < 2 {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}
