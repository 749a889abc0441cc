/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diagram

import (
	"math"

	"gocharmap/internal/vector"
)

// Hit is the closest location on a path to a query point.
type Hit struct {
	SegmentIndex    int
	T               float64
	Point           vector.Pt
	DistanceSquared float64
}

// NearestPointOnPath scans every segment and returns the global minimum of
// the squared distance to q. On ties the lowest segment index wins.
func NearestPointOnPath(p Path, q vector.Pt) (Hit, error) {
	if err := p.Validate(); err != nil {
		return Hit{}, err
	}
	best := Hit{DistanceSquared: math.Inf(1)}
	for i := 0; i < p.SegmentCount(); i++ {
		pr := vector.ProjectPointToSegment(q, p.Points[i], p.Points[i+1])
		if pr.DistanceSquared < best.DistanceSquared {
			best = Hit{SegmentIndex: i, T: pr.T, Point: pr.Point, DistanceSquared: pr.DistanceSquared}
		}
	}
	return best, nil
}
