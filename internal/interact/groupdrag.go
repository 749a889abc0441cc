/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"math"
	"strings"

	"gocharmap/internal/vector"
)

// QuantizeMode decides how the drag reference advances after a move.
type QuantizeMode uint8

const (
	// DragCarry advances the reference by the whole steps applied, so
	// sub-grid motion accumulates across events.
	DragCarry QuantizeMode = iota
	// DragDiscard moves the reference to the raw pointer whenever a step is
	// applied, dropping the remainder.
	DragDiscard
)

func (m QuantizeMode) String() string {
	if m == DragDiscard {
		return "discard"
	}
	return "carry"
}

// ParseQuantizeMode maps "carry" or "discard"; anything else is DragCarry.
func ParseQuantizeMode(s string) QuantizeMode {
	if strings.EqualFold(strings.TrimSpace(s), "discard") {
		return DragDiscard
	}
	return DragCarry
}

// GridSteps converts a pixel delta to whole grid steps, rounding half up.
func GridSteps(d, grid float64) int {
	if grid <= 0 {
		return 0
	}
	return int(math.Floor(d/grid + 0.5))
}

// Advance computes the step delta for pointer position p and the next drag
// state.
func (g GroupDrag) Advance(p vector.Pt, grid float64, mode QuantizeMode) (dx, dy int, next GroupDrag) {
	d := p.Sub(g.Ref)
	dx = GridSteps(d.X, grid)
	dy = GridSteps(d.Y, grid)
	next = g
	switch mode {
	case DragDiscard:
		// Sub-step motion is dropped: the reference follows the pointer.
		next.Ref = p
	default:
		next.Ref = g.Ref.Add(vector.Pt{X: float64(dx) * grid, Y: float64(dy) * grid})
	}
	if dx != 0 || dy != 0 {
		next.Moved = true
	}
	return dx, dy, next
}
