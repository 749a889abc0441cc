/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diagram

import (
	"errors"
	"math"
	"testing"

	"gocharmap/internal/domain"
	"gocharmap/internal/vector"
)

func horizontal() Path {
	return Path{Points: []vector.Pt{{X: 100, Y: 80}, {X: 200, Y: 80}}}
}

func TestLabelBoxSides(t *testing.T) {
	text := LabelText("A", "B")
	cases := []struct {
		side domain.LabelSide
		want vector.Pt
	}{
		{domain.LabelAuto, vector.Pt{X: 150, Y: 93}},
		{domain.LabelTop, vector.Pt{X: 150, Y: 67}},
		{domain.LabelBottom, vector.Pt{X: 150, Y: 93}},
		{domain.LabelLeft, vector.Pt{X: 121, Y: 80}},
		{domain.LabelRight, vector.Pt{X: 179, Y: 80}},
	}
	for _, c := range cases {
		b, err := LabelBox(horizontal(), domain.Label{T: 0.5, Side: c.side}, text, DefaultLabelMetrics)
		if err != nil {
			t.Fatalf("label box: %v", err)
		}
		if b.Center != c.want || b.Width != 48 || b.Height != 16 {
			t.Fatalf("side %v: got %+v want center %+v", c.side, b, c.want)
		}
	}
}

func TestAutoLabelSitsOnLeftNormal(t *testing.T) {
	p := Path{Points: []vector.Pt{{X: 0, Y: 0}, {X: 0, Y: 100}}}
	b, err := LabelBox(p, domain.Label{T: 0.5}, "x", DefaultLabelMetrics)
	if err != nil {
		t.Fatalf("label box: %v", err)
	}
	// tangent (0,1), normal (-1,0)
	if b.Center != (vector.Pt{X: -13, Y: 50}) {
		t.Fatalf("unexpected center %+v", b.Center)
	}
	d := math.Hypot(b.Center.X-0, b.Center.Y-50)
	if d != 13 {
		t.Fatalf("expected distance 13, got %v", d)
	}
}

func TestLabelBoxClampsStaleDescriptor(t *testing.T) {
	b, err := LabelBox(horizontal(), domain.Label{SegmentIndex: 7, T: 2, Side: domain.LabelTop}, "", DefaultLabelMetrics)
	if err != nil {
		t.Fatalf("label box: %v", err)
	}
	if b.Center != (vector.Pt{X: 200, Y: 67}) {
		t.Fatalf("expected clamp to end of last segment, got %+v", b.Center)
	}
	b, _ = LabelBox(horizontal(), domain.Label{SegmentIndex: -2, T: -1, Side: domain.LabelTop}, "", DefaultLabelMetrics)
	if b.Center != (vector.Pt{X: 100, Y: 67}) {
		t.Fatalf("expected clamp to start, got %+v", b.Center)
	}
}

func TestLabelBoxZeroLengthSegment(t *testing.T) {
	p := Path{Points: []vector.Pt{{X: 10, Y: 10}, {X: 10, Y: 10}}}
	b, err := LabelBox(p, domain.Label{T: 0.3}, "", DefaultLabelMetrics)
	if err != nil || b.Center != (vector.Pt{X: 10, Y: 10}) {
		t.Fatalf("expected box centered on the point, got %+v err %v", b, err)
	}
	if _, err := LabelBox(Path{}, domain.Label{}, "", DefaultLabelMetrics); !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestEstimateWidthCountsRunes(t *testing.T) {
	if w := EstimateWidth(LabelText("Wei Wuxian", "Lan Wangji"), DefaultLabelMetrics); w != 146 {
		t.Fatalf("expected 146, got %v", w)
	}
	if w := EstimateWidth("", DefaultLabelMetrics); w != 48 {
		t.Fatalf("expected minimum width 48, got %v", w)
	}
}

func TestDefaultLabels(t *testing.T) {
	p := Path{Points: []vector.Pt{{}, {X: 10}, {X: 20}, {X: 30}}}
	ls := DefaultLabels(p)
	if len(ls) != 2 || ls[0].ID != StartLabelID || ls[0].T != 0.1 || ls[1].SegmentIndex != 2 || ls[1].T != 0.9 {
		t.Fatalf("unexpected defaults %+v", ls)
	}
	e := domain.Edge{Labels: []domain.Label{}}
	if got := EffectiveLabels(e, p); len(got) != 2 {
		t.Fatalf("empty label list must show defaults, got %+v", got)
	}
	e.Labels = []domain.Label{{ID: "x"}}
	if got := EffectiveLabels(e, p); len(got) != 1 || got[0].ID != "x" {
		t.Fatalf("stored labels must win, got %+v", got)
	}
}
