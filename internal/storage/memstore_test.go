/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gocharmap/internal/domain"
	"gocharmap/internal/interact"
	"gocharmap/internal/vector"
)

var (
	_ interact.Store         = (*MemoryStore)(nil)
	_ interact.SelectionSink = (*MemoryStore)(nil)
)

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore(sampleDocument())
	nodes := s.ListNodes()
	nodes[0].Name = "mutated"
	nodes[0].Titles[0] = "mutated"
	require.Equal(t, "Aria", s.ListNodes()[0].Name)
	require.Equal(t, "Queen", s.ListNodes()[0].Titles[0])

	edges := s.ListEdges()
	edges[0].Waypoints[0].X = 1
	s.ReplaceEdges(edges)
	edges[0].Waypoints[0].X = 2
	require.Equal(t, 1.0, s.ListEdges()[0].Waypoints[0].X)
}

func TestMemoryStoreNotifiesAndSelects(t *testing.T) {
	s := NewMemoryStore(sampleDocument())
	calls := 0
	s.OnChange(func() { calls++ })
	s.ReplaceNodes(s.ListNodes())
	s.ReplaceEdges(s.ListEdges())
	require.Equal(t, 2, calls)

	s.SetSelection([]string{"a"})
	require.Equal(t, []string{"a"}, s.Selection())
	s.SetDocument(domain.NewDocument())
	require.Equal(t, 3, calls)
	require.Empty(t, s.Selection())
	require.Empty(t, s.Document().Nodes)
}

func TestEditorOverMemoryStore(t *testing.T) {
	s := NewMemoryStore(sampleDocument())
	ed := interact.NewEditor(s, interact.Options{})
	ed.SetEditing(true)
	ed.KeyDown("a", interact.Modifiers{Ctrl: true})
	require.Equal(t, []string{"a", "b"}, s.Selection())

	ed.PointerDownTile("a", vector.Pt{X: 50, Y: 80}, interact.Modifiers{})
	ed.PointerMove(vector.Pt{X: 95, Y: 75})
	ed.PointerUp()

	doc := s.Document()
	require.Equal(t, 2, doc.Nodes[0].GridX)
	require.Equal(t, 12, doc.Nodes[1].GridX)
	require.Len(t, doc.Legend.Lines, 5, "legend survives edits")
}
