/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diagram

import (
	"unicode/utf8"

	"gocharmap/internal/domain"
	"gocharmap/internal/vector"
)

// LabelMetrics controls the size estimate and offset of label boxes.
// Widths are estimates; no text shaping is performed.
type LabelMetrics struct {
	Height     float64
	PaddingX   float64 // per side
	EdgeOffset float64 // gap between line and nearest box edge
	MinWidth   float64
	CharWidth  float64
}

var DefaultLabelMetrics = LabelMetrics{Height: 16, PaddingX: 4, EdgeOffset: 5, MinWidth: 40, CharWidth: 6}

func (lm LabelMetrics) orDefault() LabelMetrics {
	if lm.Height <= 0 {
		return DefaultLabelMetrics
	}
	return lm
}

// Box is an axis-aligned label box given by its center.
type Box struct {
	Center vector.Pt
	Width  float64
	Height float64
}

func (b Box) Rect() vector.Rect { return vector.RectAround(b.Center, b.Width, b.Height) }

// LabelText is the text every label of an edge shows.
func LabelText(fromName, toName string) string { return fromName + " → " + toName }

// EstimateWidth returns the padded box width for text.
func EstimateWidth(text string, lm LabelMetrics) float64 {
	lm = lm.orDefault()
	w := max(lm.MinWidth, float64(utf8.RuneCountInString(text))*lm.CharWidth)
	return w + 2*lm.PaddingX
}

// LabelBox places a label on path. Segment index and t are clamped, so stale
// descriptors still resolve to a valid position.
func LabelBox(p Path, l domain.Label, text string, lm LabelMetrics) (Box, error) {
	if err := p.Validate(); err != nil {
		return Box{}, err
	}
	lm = lm.orDefault()
	seg := p.Segment(p.ClampSegment(l.SegmentIndex))
	base := seg.At(vector.Clamp(l.T, 0, 1))
	normal := seg.Tangent().Perp()

	w := EstimateWidth(text, lm)
	yOff := lm.EdgeOffset + lm.Height/2
	xOff := lm.EdgeOffset + w/2

	c := base
	switch l.Side {
	case domain.LabelTop:
		c.Y -= yOff
	case domain.LabelBottom:
		c.Y += yOff
	case domain.LabelLeft:
		c.X -= xOff
	case domain.LabelRight:
		c.X += xOff
	default:
		c = base.Add(normal.Scale(yOff))
	}
	return Box{Center: c, Width: w, Height: lm.Height}, nil
}

// Default label ids.
const (
	StartLabelID = "start"
	EndLabelID   = "end"
)

// DefaultLabels returns the two labels shown for an edge that has none:
// near the start of the first segment and near the end of the last one.
func DefaultLabels(p Path) []domain.Label {
	last := max(0, p.SegmentCount()-1)
	return []domain.Label{
		{ID: StartLabelID, SegmentIndex: 0, T: 0.1, Side: domain.LabelAuto},
		{ID: EndLabelID, SegmentIndex: last, T: 0.9, Side: domain.LabelAuto},
	}
}

// EffectiveLabels returns the stored labels or, when there are none, the
// defaults for display.
func EffectiveLabels(e domain.Edge, p Path) []domain.Label {
	if len(e.Labels) > 0 {
		return e.Labels
	}
	return DefaultLabels(p)
}
