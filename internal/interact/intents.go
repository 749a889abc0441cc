/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"gocharmap/internal/diagram"
	"gocharmap/internal/domain"
)

// Intent is a single mutation of the store. Unknown ids and out-of-range
// indices make an intent a no-op.
type Intent interface {
	Apply(s Store)
}

func editEdge(s Store, id string, fn func(e *domain.Edge) bool) bool {
	edges := domain.CloneEdges(s.ListEdges())
	for i := range edges {
		if edges[i].ID != id {
			continue
		}
		if !fn(&edges[i]) {
			return false
		}
		s.ReplaceEdges(edges)
		return true
	}
	return false
}

// InsertWaypoint inserts Point at waypoint index Index, splitting path
// segment Index. Valid indices are 0..len(waypoints).
type InsertWaypoint struct {
	EdgeID string
	Index  int
	Point  domain.Point
	// Reindex shifts stored labels so they stay on their segment; SplitT is
	// the parameter of Point on the split segment.
	Reindex bool
	SplitT  float64
}

func (in InsertWaypoint) Apply(s Store) {
	editEdge(s, in.EdgeID, func(e *domain.Edge) bool {
		if in.Index < 0 || in.Index > len(e.Waypoints) {
			return false
		}
		wps := make([]domain.Point, 0, len(e.Waypoints)+1)
		wps = append(wps, e.Waypoints[:in.Index]...)
		wps = append(wps, in.Point)
		wps = append(wps, e.Waypoints[in.Index:]...)
		e.Waypoints = wps
		if in.Reindex {
			e.Labels = diagram.ShiftLabelsForInsert(e.Labels, in.Index, in.SplitT)
		}
		return true
	})
}

// MoveWaypoint sets waypoint Index to Point.
type MoveWaypoint struct {
	EdgeID string
	Index  int
	Point  domain.Point
}

func (in MoveWaypoint) Apply(s Store) {
	editEdge(s, in.EdgeID, func(e *domain.Edge) bool {
		if in.Index < 0 || in.Index >= len(e.Waypoints) {
			return false
		}
		if e.Waypoints[in.Index] == in.Point {
			return false
		}
		e.Waypoints[in.Index] = in.Point
		return true
	})
}

// DeleteWaypoint removes waypoint Index.
type DeleteWaypoint struct {
	EdgeID string
	Index  int
	// Reindex merges labels of the two joined segments; JoinRatio is the
	// length share of the first of them.
	Reindex   bool
	JoinRatio float64
}

func (in DeleteWaypoint) Apply(s Store) {
	editEdge(s, in.EdgeID, func(e *domain.Edge) bool {
		if in.Index < 0 || in.Index >= len(e.Waypoints) {
			return false
		}
		e.Waypoints = append(e.Waypoints[:in.Index:in.Index], e.Waypoints[in.Index+1:]...)
		if in.Reindex {
			e.Labels = diagram.ShiftLabelsForDelete(e.Labels, in.Index, in.JoinRatio)
		}
		return true
	})
}

// MoveLabel retargets a stored label to a segment and parameter.
type MoveLabel struct {
	EdgeID       string
	LabelID      string
	SegmentIndex int
	T            float64
}

func (in MoveLabel) Apply(s Store) {
	editEdge(s, in.EdgeID, func(e *domain.Edge) bool {
		for i := range e.Labels {
			l := &e.Labels[i]
			if l.ID != in.LabelID {
				continue
			}
			if l.SegmentIndex == in.SegmentIndex && l.T == in.T {
				return false
			}
			l.SegmentIndex = in.SegmentIndex
			l.T = in.T
			return true
		}
		return false
	})
}

// MaterializeDefaultLabels stores Labels on an edge that has none.
type MaterializeDefaultLabels struct {
	EdgeID string
	Labels []domain.Label
}

func (in MaterializeDefaultLabels) Apply(s Store) {
	editEdge(s, in.EdgeID, func(e *domain.Edge) bool {
		if len(e.Labels) > 0 || len(in.Labels) == 0 {
			return false
		}
		e.Labels = append([]domain.Label{}, in.Labels...)
		return true
	})
}

// TranslateNodes moves nodes by whole grid steps. Coordinates are floored at
// zero and, with ClampToCanvas, capped at MaxX/MaxY.
type TranslateNodes struct {
	IDs    []string
	DX, DY int

	ClampToCanvas bool
	MaxX, MaxY    int
}

func (in TranslateNodes) Apply(s Store) {
	if (in.DX == 0 && in.DY == 0) || len(in.IDs) == 0 {
		return
	}
	group := make(map[string]bool, len(in.IDs))
	for _, id := range in.IDs {
		group[id] = true
	}
	nodes := domain.CloneNodes(s.ListNodes())
	changed := false
	for i := range nodes {
		n := &nodes[i]
		if !group[n.ID] {
			continue
		}
		x := max(0, n.GridX+in.DX)
		y := max(0, n.GridY+in.DY)
		if in.ClampToCanvas {
			x = min(x, max(0, in.MaxX))
			y = min(y, max(0, in.MaxY))
		}
		if x != n.GridX || y != n.GridY {
			n.GridX, n.GridY = x, y
			changed = true
		}
	}
	if changed {
		s.ReplaceNodes(nodes)
	}
}

// SetSelection forwards the tile selection to stores implementing
// SelectionSink.
type SetSelection struct {
	IDs []string
}

func (in SetSelection) Apply(s Store) {
	if sink, ok := s.(SelectionSink); ok {
		sink.SetSelection(append([]string(nil), in.IDs...))
	}
}
