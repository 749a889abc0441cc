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
	"gocharmap/internal/vector"
)

// TargetKind identifies what a pointer hit.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetLabel
	TargetDeleteWaypoint
	TargetWaypoint
	TargetAddWaypoint
	TargetPath
	TargetTile
)

// Handle geometry in canvas pixels.
const (
	WaypointHandleRadius = 6.0
	DeleteButtonRadius   = 8.0
	DeleteButtonOffset   = 12.0 // right and up from the waypoint
	AddButtonRadius      = 5.0
	MinPathHitWidth      = 14.0
)

// Target is one hit-testable element of the scene.
type Target struct {
	Kind    TargetKind
	EdgeID  string
	NodeID  string
	LabelID string
	Index   int // waypoint index or segment index
	Shape   vector.Node
}

// FatPathWidth is the stroke width of the clickable area over an edge in
// edit mode.
func FatPathWidth(thickness float64) float64 {
	if thickness <= 0 {
		thickness = 2
	}
	return max(MinPathHitWidth, thickness*4)
}

// BuildTargets returns hit targets in z-order, top-most first. Edit handles
// only exist for the selected edge in edit mode. Angle hints are never
// targets.
func BuildTargets(sc diagram.Scene, editing bool, selectedEdge string) []Target {
	var out []Target
	for _, ev := range sc.Edges {
		for _, lv := range ev.Labels {
			out = append(out, Target{Kind: TargetLabel, EdgeID: ev.Edge.ID, LabelID: lv.Label.ID, Shape: vector.NewRect(lv.Box.Rect())})
		}
	}
	if ev, ok := sc.Edge(selectedEdge); ok && editing {
		for i, s := range ev.Path.Segments() {
			out = append(out, Target{Kind: TargetAddWaypoint, EdgeID: ev.Edge.ID, Index: i, Shape: vector.NewCircle(s.Midpoint(), AddButtonRadius)})
		}
		for i, w := range ev.Edge.Waypoints {
			c := vector.Pt{X: w.X + DeleteButtonOffset, Y: w.Y - DeleteButtonOffset}
			out = append(out, Target{Kind: TargetDeleteWaypoint, EdgeID: ev.Edge.ID, Index: i, Shape: vector.NewCircle(c, DeleteButtonRadius)})
		}
		for i, w := range ev.Edge.Waypoints {
			out = append(out, Target{Kind: TargetWaypoint, EdgeID: ev.Edge.ID, Index: i, Shape: vector.NewCircle(vector.Pt{X: w.X, Y: w.Y}, WaypointHandleRadius)})
		}
	}
	for _, ev := range sc.Edges {
		w := ev.Style.Thickness
		if editing && ev.Edge.ID == selectedEdge {
			w = FatPathWidth(w)
		}
		out = append(out, Target{Kind: TargetPath, EdgeID: ev.Edge.ID, Shape: vector.NewStroke(ev.Path.Points, w)})
	}
	for i := len(sc.Tiles) - 1; i >= 0; i-- {
		tv := sc.Tiles[i]
		out = append(out, Target{Kind: TargetTile, NodeID: tv.Node.ID, Shape: vector.NewRect(tv.Rect)})
	}
	return out
}

// HitTest returns the first target containing p.
func HitTest(targets []Target, p vector.Pt) (Target, bool) {
	for _, t := range targets {
		if t.Shape != nil && t.Shape.Hit(p) {
			return t, true
		}
	}
	return Target{}, false
}
