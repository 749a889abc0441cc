/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"strconv"
	"strings"
)

// Path commands. Diagram lines are strictly polylines so only move/line/close
// are supported.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	Close
)

type PathCmd struct {
	Op PathOp
	P  Pt
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, P: Pt{x, y}}) }
func (p *Path) LineTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, P: Pt{x, y}}) }
func (p *Path) Close()              { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Polyline builds an open path through pts.
func Polyline(pts []Pt) Path {
	var p Path
	for i, q := range pts {
		if i == 0 {
			p.MoveTo(q.X, q.Y)
			continue
		}
		p.LineTo(q.X, q.Y)
	}
	return p
}

// Points returns the vertices of the path in order.
func (p *Path) Points() []Pt {
	out := make([]Pt, 0, len(p.Cmds))
	for _, c := range p.Cmds {
		if c.Op != Close {
			out = append(out, c.P)
		}
	}
	return out
}

// SVGData renders the path as the value of an SVG "d" attribute.
func (p *Path) SVGData() string {
	var b strings.Builder
	for i, c := range p.Cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch c.Op {
		case MoveTo:
			b.WriteString("M ")
		case LineTo:
			b.WriteString("L ")
		case Close:
			b.WriteString("Z")
			continue
		}
		b.WriteString(fmtNum(c.P.X))
		b.WriteByte(' ')
		b.WriteString(fmtNum(c.P.Y))
	}
	return b.String()
}

// Bounds returns the axis-aligned bounding box of the path vertices.
func (p *Path) Bounds() Rect {
	minX, minY := +1e18, +1e18
	maxX, maxY := -1e18, -1e18
	for _, c := range p.Cmds {
		if c.Op == Close {
			continue
		}
		minX = min(minX, c.P.X)
		minY = min(minY, c.P.Y)
		maxX = max(maxX, c.P.X)
		maxY = max(maxY, c.P.Y)
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(FloatRound(v, 3), 'f', -1, 64)
}
