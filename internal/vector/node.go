/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Node is a hit-testable shape in canvas coordinates.
type Node interface {
	Bounds() Rect
	Hit(p Pt) bool
}

// RectNode is an axis-aligned rectangle.
type RectNode struct{ Rect Rect }

func NewRect(r Rect) *RectNode { return &RectNode{Rect: r} }

func (n *RectNode) Bounds() Rect  { return n.Rect }
func (n *RectNode) Hit(p Pt) bool { return n.Rect.Contains(p) }

// CircleNode is a disc, used for handles and buttons.
type CircleNode struct {
	C Pt
	R float64
}

func NewCircle(c Pt, r float64) *CircleNode { return &CircleNode{C: c, R: r} }

func (n *CircleNode) Bounds() Rect  { return RectAround(n.C, 2*n.R, 2*n.R) }
func (n *CircleNode) Hit(p Pt) bool { return n.R > 0 && p.Dist2(n.C) <= n.R*n.R }

// StrokeNode is a polyline widened to Width. A point hits when it lies within
// Width/2 of any segment.
type StrokeNode struct {
	Pts   []Pt
	Width float64
}

func NewStroke(pts []Pt, width float64) *StrokeNode { return &StrokeNode{Pts: pts, Width: width} }

func (n *StrokeNode) Bounds() Rect {
	p := Polyline(n.Pts)
	b := p.Bounds()
	return b.Inset(-n.Width/2, -n.Width/2)
}

func (n *StrokeNode) Hit(p Pt) bool {
	if len(n.Pts) < 2 {
		return false
	}
	r := n.Width / 2
	r2 := r * r
	for i := 0; i+1 < len(n.Pts); i++ {
		if ProjectPointToSegment(p, n.Pts[i], n.Pts[i+1]).DistanceSquared <= r2 {
			return true
		}
	}
	return false
}
