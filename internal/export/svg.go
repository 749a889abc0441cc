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
	"fmt"
	"io"
	"strconv"
	"strings"

	"gocharmap/internal/diagram"
)

const (
	fontFamily  = "Helvetica, Arial, sans-serif"
	captionSize = 12.0
	labelSize   = 10.0
	badgeSize   = 9.0
)

// ExportSVG writes the scene as a standalone SVG document in canvas pixels.
func ExportSVG(w io.Writer, sc diagram.Scene, opt Options) error {
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", sc.Width, sc.Height, sc.Width, sc.Height)
	if opt.Title != "" {
		wf("  <title>%s</title>\n", escText(opt.Title))
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", sc.Width, sc.Height, background.Hex())

	// Edges below tiles, labels above both.
	for _, ev := range sc.Edges {
		st := edgeStroke(ev)
		pl := ev.Path.Polyline()
		wf("  <path id=\"edge-%s\" d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\" stroke-linecap=\"round\" stroke-linejoin=\"round\"%s/>\n",
			escAttr(ev.Edge.ID), pl.SVGData(), st.Color.Hex(), st.Width, dashAttr(st.Dash))
	}

	for _, tv := range sc.Tiles {
		r := tv.Rect
		b := tileBorder(tv)
		opacity := ""
		if tv.Dimmed {
			opacity = fmt.Sprintf(" opacity=\"%g\"", dimmedAlpha)
		}
		wf("  <g id=\"tile-%s\"%s>\n", escAttr(tv.Node.ID), opacity)
		wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" rx=\"6\" ry=\"6\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
			r.X, r.Y, r.W, r.H, tileFill.Hex(), b.Color.Hex(), b.Width)
		wf("    <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\">%s</text>\n",
			r.X+r.W/2, r.Y+r.H-captionSize, fontFamily, captionSize, captionColor.Hex(), escText(tileCaption(tv.Node)))
		wf("  </g>\n")
	}

	for _, ev := range sc.Edges {
		st := edgeStroke(ev)
		for _, lv := range ev.Labels {
			r := lv.Box.Rect()
			wf("  <g class=\"label\" data-edge=\"%s\" data-label=\"%s\">\n", escAttr(ev.Edge.ID), escAttr(lv.Label.ID))
			wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" rx=\"3\" ry=\"3\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\"/>\n",
				r.X, r.Y, r.W, r.H, labelFill.Hex(), st.Color.Hex())
			wf("    <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" dominant-baseline=\"central\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\">%s</text>\n",
				lv.Box.Center.X, lv.Box.Center.Y, fontFamily, labelSize, textColor.Hex(), escText(lv.Text))
			wf("  </g>\n")
		}
	}

	if opt.Hints {
		for _, ev := range sc.Edges {
			for _, h := range ev.Hints {
				wf("  <line class=\"hint\" x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"1\"%s/>\n",
					h.From.X, h.From.Y, h.To.X, h.To.Y, hintColor.Hex(), dashAttr(hintDash))
				b := h.Badge
				wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" rx=\"3\" ry=\"3\" fill=\"%s\"/>\n", b.X, b.Y, b.W, b.H, hintColor.Hex())
				wf("  <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" dominant-baseline=\"central\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\">%s</text>\n",
					b.X+b.W/2, b.Y+b.H/2, fontFamily, badgeSize, textColor.Hex(), escText(h.BadgeText()))
			}
		}
	}

	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func dashAttr(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = strconv.FormatFloat(d, 'f', -1, 64)
	}
	return " stroke-dasharray=\"" + strings.Join(parts, " ") + "\""
}

func escAttr(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch ch {
		case '"':
			b.WriteString("&quot;")
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '\n':
			b.WriteByte(' ')
		case '\r':
			// skip
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func escText(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch ch {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

