/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"gocharmap/internal/diagram"
)

func TestSVGContent(t *testing.T) {
	sc := sampleScene(t, diagram.Options{HintEdge: "e1"})
	var buf bytes.Buffer
	if err := ExportSVG(&buf, sc, Options{Title: "Map & Co"}); err != nil {
		t.Fatalf("ExportSVG error: %v", err)
	}
	s := buf.String()
	for _, want := range []string{
		`viewBox="0 0 1000 800"`,
		`<title>Map &amp; Co</title>`,
		`<path id="edge-e1" d="M 100 80 L 200 80" fill="none" stroke="#ff1493" stroke-width="3"`,
		`stroke-dasharray="8 4"`,
		`Aria → Bren`,
		`A&amp;B &lt;x&gt;`,
		`stroke="#3366ff"`,
		`data-label="start"`,
		`data-label="end"`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("svg missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "edge-dangling") {
		t.Fatalf("dangling edge must not be drawn")
	}
	if strings.Contains(s, `class="hint"`) {
		t.Fatalf("hints drawn without the option")
	}

	buf.Reset()
	if err := ExportSVG(&buf, sc, Options{Hints: true}); err != nil {
		t.Fatalf("ExportSVG error: %v", err)
	}
	if !strings.Contains(buf.String(), `class="hint"`) || !strings.Contains(buf.String(), "0°") {
		t.Fatalf("hint overlay missing")
	}
}

func TestSVGDimsNonMatchingTiles(t *testing.T) {
	sc := sampleScene(t, diagram.Options{Query: "aria"})
	var buf bytes.Buffer
	if err := ExportSVG(&buf, sc, Options{}); err != nil {
		t.Fatalf("ExportSVG error: %v", err)
	}
	s := buf.String()
	if strings.Contains(s, `<g id="tile-a" opacity`) {
		t.Fatalf("matching tile must not be dimmed")
	}
	if !strings.Contains(s, `<g id="tile-b" opacity="0.35">`) {
		t.Fatalf("non-matching tile must be dimmed")
	}
}

func TestPNGPixels(t *testing.T) {
	sc := sampleScene(t, diagram.Options{Query: "aria"})
	img := Rasterize(sc, Options{})
	if b := img.Bounds(); b.Dx() != 1000 || b.Dy() != 800 {
		t.Fatalf("bounds = %v", b)
	}
	cases := []struct {
		name string
		x, y int
		want any
	}{
		{"background", 500, 500, toRGBA(background)},
		{"tile interior", 50, 20, toRGBA(tileFill)},
		{"highlighted border", 0, 0, toRGBA(matchStroke)},
		{"edge midpoint", 150, 80, toRGBA(edgeStroke(sc.Edges[0]).Color)},
		{"dimmed tile", 250, 20, fade(toRGBA(tileFill), background)},
	}
	for _, c := range cases {
		if got := img.RGBAAt(c.x, c.y); got != c.want {
			t.Fatalf("%s at (%d,%d) = %v, want %v", c.name, c.x, c.y, got, c.want)
		}
	}

	// label text is drawn inside its box
	box := sc.Edges[0].Labels[0].Box.Rect()
	found := false
	for y := int(box.Y); y < int(box.Y+box.H) && !found; y++ {
		for x := int(box.X); x < int(box.X+box.W); x++ {
			if img.RGBAAt(x, y) == toRGBA(textColor) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("no label text pixels inside %v", box)
	}
}

func TestPNGDashedEdgeHasGaps(t *testing.T) {
	sc := sampleScene(t, diagram.Options{})
	ev, ok := sc.Edge("e2")
	if !ok {
		t.Fatalf("edge e2 missing")
	}
	img := Rasterize(sc, Options{})
	col := toRGBA(edgeStroke(ev).Color)
	// e2 runs straight down from (50,160) to (50,400); sample a stretch
	// without labels.
	on, off := 0, 0
	for y := 200; y < 260; y++ {
		if img.RGBAAt(50, y) == col {
			on++
		} else {
			off++
		}
	}
	if on == 0 || off == 0 {
		t.Fatalf("dashed edge on=%d off=%d", on, off)
	}
}

func TestPNGEncodeScale(t *testing.T) {
	sc := sampleScene(t, diagram.Options{})
	var buf bytes.Buffer
	if err := ExportPNG(&buf, sc, Options{Scale: 0.5}); err != nil {
		t.Fatalf("ExportPNG error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 500 || b.Dy() != 400 {
		t.Fatalf("bounds = %v", b)
	}
}
