/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diagram

import (
	"gocharmap/internal/domain"
	"gocharmap/internal/vector"
)

// Metrics holds the fixed grid and tile geometry shared by all nodes.
type Metrics struct {
	GridUnit   float64 // pixels per grid step
	TileWidth  float64
	TileHeight float64
}

// DefaultMetrics are 20 px grid steps and 100×160 px tiles.
var DefaultMetrics = Metrics{GridUnit: 20, TileWidth: 100, TileHeight: 160}

func (m Metrics) orDefault() Metrics {
	if m.GridUnit <= 0 || m.TileWidth <= 0 || m.TileHeight <= 0 {
		return DefaultMetrics
	}
	return m
}

// TileRect returns the pixel rectangle occupied by a node.
func TileRect(n domain.Node, m Metrics) vector.Rect {
	m = m.orDefault()
	return vector.R(float64(n.GridX)*m.GridUnit, float64(n.GridY)*m.GridUnit, m.TileWidth, m.TileHeight)
}

// AnchorPoint resolves the attachment point of side on the node's tile:
// the center, the midpoint of the top or bottom edge, or the midpoint of the
// left or right edge.
func AnchorPoint(n domain.Node, side domain.AnchorSide, m Metrics) vector.Pt {
	r := TileRect(n, m)
	c := r.Center()
	switch side {
	case domain.SideTop:
		return vector.Pt{X: c.X, Y: r.Y}
	case domain.SideBottom:
		return vector.Pt{X: c.X, Y: r.Y + r.H}
	case domain.SideLeft:
		return vector.Pt{X: r.X, Y: c.Y}
	case domain.SideRight:
		return vector.Pt{X: r.X + r.W, Y: c.Y}
	default:
		return c
	}
}
