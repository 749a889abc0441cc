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

	"gocharmap/internal/domain"
)

type testStore struct {
	nodes    []domain.Node
	edges    []domain.Edge
	selected []string
	writes   int
}

func (s *testStore) ListNodes() []domain.Node { return s.nodes }
func (s *testStore) ListEdges() []domain.Edge { return s.edges }
func (s *testStore) ReplaceNodes(n []domain.Node) {
	s.nodes = n
	s.writes++
}
func (s *testStore) ReplaceEdges(e []domain.Edge) {
	s.edges = e
	s.writes++
}
func (s *testStore) SetSelection(ids []string) { s.selected = ids }

// twoNodeStore holds A at grid (0,0) and B at grid (10,0) joined by e1 from
// A's right side to B's left side, i.e. pixels (100,80) to (200,80).
func twoNodeStore(waypoints ...domain.Point) *testStore {
	return &testStore{
		nodes: []domain.Node{
			{ID: "A", Name: "A", GridX: 0, GridY: 0},
			{ID: "B", Name: "B", GridX: 10, GridY: 0},
		},
		edges: []domain.Edge{{
			ID: "e1", From: "A", To: "B", Type: "love",
			StartSide: domain.SideRight, EndSide: domain.SideLeft,
			Waypoints: waypoints,
		}},
	}
}

func TestInsertWaypointBounds(t *testing.T) {
	s := twoNodeStore(domain.Point{X: 150, Y: 80})
	InsertWaypoint{EdgeID: "e1", Index: 2, Point: domain.Point{X: 1, Y: 1}}.Apply(s)
	require.Equal(t, 0, s.writes)
	InsertWaypoint{EdgeID: "e1", Index: -1, Point: domain.Point{X: 1, Y: 1}}.Apply(s)
	InsertWaypoint{EdgeID: "nope", Index: 0, Point: domain.Point{X: 1, Y: 1}}.Apply(s)
	require.Equal(t, 0, s.writes)

	InsertWaypoint{EdgeID: "e1", Index: 1, Point: domain.Point{X: 170, Y: 80}}.Apply(s)
	require.Equal(t, []domain.Point{{X: 150, Y: 80}, {X: 170, Y: 80}}, s.edges[0].Waypoints)
	InsertWaypoint{EdgeID: "e1", Index: 0, Point: domain.Point{X: 120, Y: 80}}.Apply(s)
	require.Equal(t, []domain.Point{{X: 120, Y: 80}, {X: 150, Y: 80}, {X: 170, Y: 80}}, s.edges[0].Waypoints)
}

func TestInsertWaypointDoesNotAliasPreviousList(t *testing.T) {
	s := twoNodeStore(domain.Point{X: 150, Y: 80})
	before := s.edges
	InsertWaypoint{EdgeID: "e1", Index: 0, Point: domain.Point{X: 120, Y: 80}}.Apply(s)
	require.Len(t, before[0].Waypoints, 1)
	require.Len(t, s.edges[0].Waypoints, 2)
}

func TestMoveAndDeleteWaypoint(t *testing.T) {
	s := twoNodeStore(domain.Point{X: 150, Y: 80}, domain.Point{X: 170, Y: 80})
	MoveWaypoint{EdgeID: "e1", Index: 2, Point: domain.Point{X: 0, Y: 0}}.Apply(s)
	DeleteWaypoint{EdgeID: "e1", Index: 2}.Apply(s)
	require.Equal(t, 0, s.writes)

	MoveWaypoint{EdgeID: "e1", Index: 1, Point: domain.Point{X: 170, Y: 40}}.Apply(s)
	require.Equal(t, domain.Point{X: 170, Y: 40}, s.edges[0].Waypoints[1])

	DeleteWaypoint{EdgeID: "e1", Index: 0}.Apply(s)
	require.Equal(t, []domain.Point{{X: 170, Y: 40}}, s.edges[0].Waypoints)
}

func TestDeleteWaypointReindexesLabels(t *testing.T) {
	s := twoNodeStore(domain.Point{X: 150, Y: 80})
	s.edges[0].Labels = []domain.Label{{ID: "end", SegmentIndex: 1, T: 0.5}}
	DeleteWaypoint{EdgeID: "e1", Index: 0, Reindex: true, JoinRatio: 0.5}.Apply(s)
	require.Equal(t, 0, s.edges[0].Labels[0].SegmentIndex)
	require.InDelta(t, 0.75, s.edges[0].Labels[0].T, 1e-9)
}

func TestMoveLabelUnknownIsNoop(t *testing.T) {
	s := twoNodeStore()
	MoveLabel{EdgeID: "e1", LabelID: "start", SegmentIndex: 0, T: 0.5}.Apply(s)
	require.Equal(t, 0, s.writes)

	s.edges[0].Labels = []domain.Label{{ID: "start", SegmentIndex: 0, T: 0.1}}
	MoveLabel{EdgeID: "e1", LabelID: "start", SegmentIndex: 0, T: 0.5}.Apply(s)
	require.Equal(t, 1, s.writes)
	require.Equal(t, 0.5, s.edges[0].Labels[0].T)
}

func TestMaterializeKeepsStoredLabels(t *testing.T) {
	s := twoNodeStore()
	s.edges[0].Labels = []domain.Label{{ID: "mine", T: 0.3}}
	MaterializeDefaultLabels{EdgeID: "e1", Labels: []domain.Label{{ID: "start"}, {ID: "end"}}}.Apply(s)
	require.Equal(t, 0, s.writes)
	require.Len(t, s.edges[0].Labels, 1)
}

func TestTranslateNodesFloorAndClamp(t *testing.T) {
	s := twoNodeStore()
	TranslateNodes{IDs: []string{"A", "B"}, DX: -3, DY: 2}.Apply(s)
	require.Equal(t, 0, s.nodes[0].GridX)
	require.Equal(t, 2, s.nodes[0].GridY)
	require.Equal(t, 7, s.nodes[1].GridX)

	TranslateNodes{IDs: []string{"B"}, DX: 10, ClampToCanvas: true, MaxX: 11, MaxY: 5}.Apply(s)
	require.Equal(t, 11, s.nodes[1].GridX)
	require.Equal(t, 0, s.nodes[0].GridX)
}

func TestSetSelectionReachesSink(t *testing.T) {
	s := twoNodeStore()
	ids := []string{"A"}
	SetSelection{IDs: ids}.Apply(s)
	ids[0] = "changed"
	require.Equal(t, []string{"A"}, s.selected)
}
