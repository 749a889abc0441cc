/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Segment is the straight line between two points of a polyline.
type Segment struct{ A, B Pt }

func Seg(a, b Pt) Segment { return Segment{A: a, B: b} }

func (s Segment) Vector() Pt         { return s.B.Sub(s.A) }
func (s Segment) Len() float64       { return s.Vector().Len() }
func (s Segment) Midpoint() Pt       { return s.A.Lerp(s.B, 0.5) }
func (s Segment) At(t float64) Pt    { return s.A.Lerp(s.B, t) }
func (s Segment) Tangent() Pt        { return s.Vector().Normalize() }
func (s Segment) AngleDeg() float64  { return AngleDeg(s.A, s.B) }
func (s Segment) Degenerate() bool   { return s.A == s.B }

// Projection is the closest point of a segment to a query point.
// T is the clamped segment parameter in [0,1].
type Projection struct {
	T               float64
	Point           Pt
	DistanceSquared float64
}

// ProjectPointToSegment projects q onto the segment a-b.
// For a zero-length segment the denominator is treated as 1, which forces
// T to 0 and the closest point to a.
func ProjectPointToSegment(q, a, b Pt) Projection {
	ab := b.Sub(a)
	ab2 := ab.Dot(ab)
	if ab2 == 0 {
		ab2 = 1
	}
	t := Clamp(q.Sub(a).Dot(ab)/ab2, 0, 1)
	c := a.Add(ab.Scale(t))
	return Projection{T: t, Point: c, DistanceSquared: q.Dist2(c)}
}

// Project is ProjectPointToSegment for s.
func (s Segment) Project(q Pt) Projection { return ProjectPointToSegment(q, s.A, s.B) }
