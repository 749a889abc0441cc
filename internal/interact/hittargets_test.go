/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gocharmap/internal/diagram"
	"gocharmap/internal/domain"
	"gocharmap/internal/vector"
)

func sceneOf(s *testStore) diagram.Scene {
	return diagram.Layout(domain.Document{Nodes: s.nodes, Edges: s.edges}, diagram.Options{})
}

func TestViewModeHasNoHandles(t *testing.T) {
	s := twoNodeStore(domain.Point{X: 150, Y: 80})
	targets := BuildTargets(sceneOf(s), false, "e1")
	for _, tg := range targets {
		switch tg.Kind {
		case TargetAddWaypoint, TargetDeleteWaypoint, TargetWaypoint:
			t.Fatalf("unexpected edit handle %v in view mode", tg.Kind)
		}
	}
	hit, ok := HitTest(targets, vector.Pt{X: 120, Y: 80})
	require.True(t, ok)
	require.Equal(t, TargetPath, hit.Kind)
	require.Equal(t, "e1", hit.EdgeID)

	_, ok = HitTest(targets, vector.Pt{X: 120, Y: 84})
	require.False(t, ok)
}

func TestSelectedEdgeHandles(t *testing.T) {
	s := twoNodeStore(domain.Point{X: 150, Y: 80})
	targets := BuildTargets(sceneOf(s), true, "e1")

	cases := []struct {
		p     vector.Pt
		kind  TargetKind
		index int
	}{
		{vector.Pt{X: 150, Y: 80}, TargetWaypoint, 0},
		{vector.Pt{X: 162, Y: 68}, TargetDeleteWaypoint, 0},
		{vector.Pt{X: 125, Y: 80}, TargetAddWaypoint, 0},
		{vector.Pt{X: 175, Y: 81}, TargetAddWaypoint, 1},
		{vector.Pt{X: 140, Y: 74}, TargetPath, 0},
	}
	for _, c := range cases {
		hit, ok := HitTest(targets, c.p)
		if !ok || hit.Kind != c.kind || hit.Index != c.index {
			t.Fatalf("hit at %v = %+v (ok=%v), want kind %v index %d", c.p, hit, ok, c.kind, c.index)
		}
	}
}

func TestLabelsAboveTilesAndLastTileOnTop(t *testing.T) {
	s := twoNodeStore()
	s.nodes = append(s.nodes, domain.Node{ID: "C", Name: "C", GridX: 2, GridY: 0})
	targets := BuildTargets(sceneOf(s), false, "")

	// the start label box spans x 86..134, y 85..101 and overlaps tile A
	hit, ok := HitTest(targets, vector.Pt{X: 95, Y: 93})
	require.True(t, ok)
	require.Equal(t, TargetLabel, hit.Kind)
	require.Equal(t, diagram.StartLabelID, hit.LabelID)

	hit, ok = HitTest(targets, vector.Pt{X: 50, Y: 150})
	require.True(t, ok)
	require.Equal(t, TargetTile, hit.Kind)
	require.Equal(t, "C", hit.NodeID)

	hit, _ = HitTest(targets, vector.Pt{X: 10, Y: 150})
	require.Equal(t, "A", hit.NodeID)
}

func TestFatPathWidth(t *testing.T) {
	require.Equal(t, 14.0, FatPathWidth(2))
	require.Equal(t, 20.0, FatPathWidth(5))
	require.Equal(t, 14.0, FatPathWidth(0))
}
