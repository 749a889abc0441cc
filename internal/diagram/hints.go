/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diagram

import "gocharmap/internal/vector"

// Hint is an advisory guide for one path segment that is close to a guide
// angle. Hints never change data and are not pointer targets.
type Hint struct {
	SegmentIndex int
	vector.AngleGuide
}

// HintOptions tunes the angle advisor. Zero values fall back to defaults.
type HintOptions struct {
	ToleranceDeg float64
	Guides       []float64
	HalfLength   float64
}

// AngleHints returns one hint per segment whose direction is within
// toleranceDeg of the nearest guide angle. The tolerance is used as given.
func AngleHints(p Path, toleranceDeg float64, guides []float64) []Hint {
	return angleHints(p, toleranceDeg, guides, 0)
}

// Hints is AngleHints with a configurable guide line length. A non-positive
// ToleranceDeg uses vector.DefaultAngleTolerance.
func (o HintOptions) Hints(p Path) []Hint {
	tol := o.ToleranceDeg
	if tol <= 0 {
		tol = vector.DefaultAngleTolerance
	}
	return angleHints(p, tol, o.Guides, o.HalfLength)
}

func angleHints(p Path, tol float64, guides []float64, halfLength float64) []Hint {
	var out []Hint
	for i, s := range p.Segments() {
		if g, ok := vector.SnapSegment(s, guides, tol, halfLength); ok {
			out = append(out, Hint{SegmentIndex: i, AngleGuide: g})
		}
	}
	return out
}
