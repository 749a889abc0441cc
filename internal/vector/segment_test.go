/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProjectPointToSegment(t *testing.T) {
	cases := []struct {
		name  string
		q     Pt
		a, b  Pt
		wantT float64
		wantP Pt
		wantD float64
	}{
		{"interior", Pt{150, 80}, Pt{100, 80}, Pt{200, 80}, 0.5, Pt{150, 80}, 0},
		{"above", Pt{125, 70}, Pt{100, 80}, Pt{200, 80}, 0.25, Pt{125, 80}, 100},
		{"before start clamps", Pt{50, 80}, Pt{100, 80}, Pt{200, 80}, 0, Pt{100, 80}, 2500},
		{"past end clamps", Pt{260, 80}, Pt{100, 80}, Pt{200, 80}, 1, Pt{200, 80}, 3600},
		{"zero length", Pt{3, 4}, Pt{0, 0}, Pt{0, 0}, 0, Pt{0, 0}, 25},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ProjectPointToSegment(c.q, c.a, c.b)
			if got.T != c.wantT || got.Point != c.wantP || got.DistanceSquared != c.wantD {
				t.Fatalf("got %+v, want t=%v p=%+v d2=%v", got, c.wantT, c.wantP, c.wantD)
			}
		})
	}
}

func TestSegmentTangentZeroLength(t *testing.T) {
	s := Seg(Pt{5, 5}, Pt{5, 5})
	if !s.Degenerate() || s.Tangent() != (Pt{}) {
		t.Fatalf("expected degenerate segment with zero tangent, got %+v", s.Tangent())
	}
}

func TestProjectionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	coord := gen.Float64Range(-500, 500)

	properties.Property("t is clamped to [0,1]", prop.ForAll(
		func(qx, qy, ax, ay, bx, by float64) bool {
			p := ProjectPointToSegment(Pt{qx, qy}, Pt{ax, ay}, Pt{bx, by})
			return p.T >= 0 && p.T <= 1
		},
		coord, coord, coord, coord, coord, coord,
	))

	properties.Property("projection is not farther than either endpoint", prop.ForAll(
		func(qx, qy, ax, ay, bx, by float64) bool {
			q, a, b := Pt{qx, qy}, Pt{ax, ay}, Pt{bx, by}
			p := ProjectPointToSegment(q, a, b)
			eps := 1e-6 * (1 + q.Dist2(a) + q.Dist2(b))
			return p.DistanceSquared <= q.Dist2(a)+eps && p.DistanceSquared <= q.Dist2(b)+eps
		},
		coord, coord, coord, coord, coord, coord,
	))

	properties.TestingRun(t)
}
