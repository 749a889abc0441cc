/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diagram

import (
	"errors"

	"gocharmap/internal/domain"
	"gocharmap/internal/vector"
)

// ErrDegenerateGeometry is returned by geometric queries on a path with fewer
// than two points. Callers render nothing for such an edge.
var ErrDegenerateGeometry = errors.New("diagram: path has fewer than two points")

// Path is the derived polyline of an edge: start anchor, waypoints, end
// anchor. It is never stored and is rebuilt from the current node and edge
// lists on every read.
type Path struct {
	Points []vector.Pt
}

// IndexNodes maps node ids to nodes. Later duplicates win.
func IndexNodes(nodes []domain.Node) map[string]domain.Node {
	out := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n
	}
	return out
}

// BuildPath assembles the polyline of an edge. When either endpoint id does
// not resolve the result is the empty Path.
func BuildPath(e domain.Edge, nodes map[string]domain.Node, m Metrics) Path {
	from, ok := nodes[e.From]
	if !ok {
		return Path{}
	}
	to, ok := nodes[e.To]
	if !ok {
		return Path{}
	}
	pts := make([]vector.Pt, 0, len(e.Waypoints)+2)
	pts = append(pts, AnchorPoint(from, e.StartSide, m))
	for _, w := range e.Waypoints {
		pts = append(pts, vector.Pt{X: w.X, Y: w.Y})
	}
	pts = append(pts, AnchorPoint(to, e.EndSide, m))
	return Path{Points: pts}
}

// Empty reports whether the path has no points (dangling edge).
func (p Path) Empty() bool { return len(p.Points) == 0 }

// SegmentCount is max(0, len(points)-1).
func (p Path) SegmentCount() int { return max(0, len(p.Points)-1) }

// Segment returns segment i. The index must be in [0, SegmentCount).
func (p Path) Segment(i int) vector.Segment {
	return vector.Seg(p.Points[i], p.Points[i+1])
}

// Segments returns all consecutive point pairs.
func (p Path) Segments() []vector.Segment {
	n := p.SegmentCount()
	out := make([]vector.Segment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, p.Segment(i))
	}
	return out
}

// Validate returns ErrDegenerateGeometry when the path cannot carry segments.
func (p Path) Validate() error {
	if len(p.Points) < 2 {
		return ErrDegenerateGeometry
	}
	return nil
}

// ClampSegment maps a possibly stale segment index into [0, SegmentCount-1].
func (p Path) ClampSegment(i int) int {
	last := p.SegmentCount() - 1
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Polyline converts the path to vector path commands for rendering.
func (p Path) Polyline() vector.Path { return vector.Polyline(p.Points) }
