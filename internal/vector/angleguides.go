/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Angle guides for line editing. A segment whose direction lies within a
// tolerance of one of the guide angles gets a visual guide line through its
// midpoint. These utilities are UI-agnostic and deterministic to enable unit
// testing and reuse across different frontends.

import (
	"math"
	"strconv"
)

// DefaultGuideAngles are the eight compass directions in degrees.
var DefaultGuideAngles = []float64{0, 45, 90, 135, 180, 225, 270, 315}

const (
	// DefaultAngleTolerance is the maximum circular distance in degrees for a
	// segment to be considered aligned with a guide.
	DefaultAngleTolerance = 6.0
	// DefaultHintLength is the half-length of the rendered guide line.
	DefaultHintLength = 2000.0

	badgeW   = 34.0
	badgeH   = 16.0
	badgeDX  = 8.0
	badgeDY  = -10.0
	anglePre = 6
)

// NormalizeDeg maps an angle in degrees into [0,360).
func NormalizeDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// AngleDeg returns the direction of a->b in degrees, [0,360), measured with
// atan2 in canvas coordinates (y down, so 90 points downwards).
func AngleDeg(a, b Pt) float64 {
	d := b.Sub(a)
	return NormalizeDeg(math.Atan2(d.Y, d.X) * 180 / math.Pi)
}

// CircularDiff returns the shortest distance between two angles in degrees,
// in [0,180].
func CircularDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// WithinTolerance reports whether diff is at most tolerance once both are
// rounded to 6 decimal places, so a diff on the boundary compares as such.
func WithinTolerance(diff, tolerance float64) bool {
	return FloatRound(diff, anglePre) <= FloatRound(tolerance, anglePre)
}

// NearestGuide returns the guide closest to angle and the circular distance to
// it. On ties the earlier guide wins. ok is false when guides is empty.
func NearestGuide(angle float64, guides []float64) (guide, diff float64, ok bool) {
	best := math.Inf(1)
	for _, g := range guides {
		d := CircularDiff(angle, g)
		if d < best {
			best = d
			guide = g
			ok = true
		}
	}
	return guide, best, ok
}

// AngleGuide describes a guide line drawn through a point at a guide angle.
// For deterministic behavior, coordinates are rounded to 3 decimal places.
type AngleGuide struct {
	Guide    float64
	Midpoint Pt
	From     Pt
	To       Pt
	Badge    Rect
}

// BadgeText is the label rendered inside the badge, e.g. "45°".
func (g AngleGuide) BadgeText() string {
	return strconv.FormatFloat(g.Guide, 'f', -1, 64) + "°"
}

// GuideThrough builds the guide line of the given angle through mid, spanning
// halfLength in both directions. A non-positive halfLength uses the default.
func GuideThrough(mid Pt, guide, halfLength float64) AngleGuide {
	if halfLength <= 0 {
		halfLength = DefaultHintLength
	}
	rad := guide * math.Pi / 180
	dir := Pt{math.Cos(rad), math.Sin(rad)}
	from := mid.Sub(dir.Scale(halfLength))
	to := mid.Add(dir.Scale(halfLength))
	return AngleGuide{
		Guide:    guide,
		Midpoint: mid,
		From:     Pt{FloatRound(from.X, 3), FloatRound(from.Y, 3)},
		To:       Pt{FloatRound(to.X, 3), FloatRound(to.Y, 3)},
		Badge:    Rect{X: mid.X + badgeDX, Y: mid.Y + badgeDY, W: badgeW, H: badgeH},
	}
}

// SnapSegment tests a segment against the guides. It returns the guide for the
// nearest guide angle when the circular distance is within tolerance. A zero
// tolerance only accepts exact alignment. Nil guides use DefaultGuideAngles.
func SnapSegment(s Segment, guides []float64, tolerance, halfLength float64) (AngleGuide, bool) {
	if guides == nil {
		guides = DefaultGuideAngles
	}
	g, d, ok := NearestGuide(s.AngleDeg(), guides)
	if !ok || !WithinTolerance(d, tolerance) {
		return AngleGuide{}, false
	}
	return GuideThrough(s.Midpoint(), g, halfLength), true
}
