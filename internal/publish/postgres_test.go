/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package publish

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openPGForTest(t *testing.T) *PostgresPublisher {
	t.Helper()
	dsn := os.Getenv("GCM_PG_DSN")
	if dsn == "" {
		t.Skip("GCM_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p, err := OpenPostgres(ctx, dsn, "test-"+time.Now().Format("150405.000000"))
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() {
		_, _ = p.db.Exec(`DELETE FROM shared_snapshots WHERE name = $1`, p.name)
		_ = p.Close()
	})
	return p
}

func TestPostgresPublishFetch(t *testing.T) {
	p := openPGForTest(t)
	ctx := context.Background()
	if _, err := p.Fetch(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Fetch on empty series err = %v", err)
	}
	doc := testDocument()
	if err := p.Publish(ctx, doc, "first"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	doc.Nodes[1].GridX = 12
	if err := p.Publish(ctx, doc, ""); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got, err := p.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	require.Equal(t, 12, got.Nodes[1].GridX)

	hist, err := p.History(ctx, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	require.Len(t, hist, 2)
	require.EqualValues(t, 2, hist[0].Version)
	require.Equal(t, "first", hist[1].Message)
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), " ", ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
