/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"gocharmap/internal/diagram"
	"gocharmap/internal/vector"
)

// ExportPDF writes the scene as a single-page PDF. One canvas pixel maps to
// one point; the page is sized to the canvas. Text uses the built-in
// Helvetica so nothing is embedded.
func ExportPDF(w io.Writer, sc diagram.Scene, opt Options) error {
	size := gofpdf.SizeType{Wd: max(sc.Width, 1), Ht: max(sc.Height, 1)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("GoCharMap", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	setFillColor(pdf, background)
	pdf.Rect(0, 0, size.Wd, size.Ht, "F")

	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	for _, ev := range sc.Edges {
		st := edgeStroke(ev)
		setDrawColor(pdf, st.Color)
		pdf.SetLineWidth(st.Width)
		pdf.SetDashPattern(st.Dash, 0)
		polyline(pdf, ev.Path.Points)
	}
	pdf.SetDashPattern(nil, 0)

	pdf.SetFont("Helvetica", "", captionSize)
	for _, tv := range sc.Tiles {
		if tv.Dimmed {
			pdf.SetAlpha(dimmedAlpha, "Normal")
		}
		b := tileBorder(tv)
		r := tv.Rect
		setFillColor(pdf, tileFill)
		setDrawColor(pdf, b.Color)
		pdf.SetLineWidth(b.Width)
		pdf.Rect(r.X, r.Y, r.W, r.H, "FD")
		setTextColor(pdf, captionColor)
		centeredText(pdf, r.X+r.W/2, r.Y+r.H-captionSize, tr(asciiText(tileCaption(tv.Node))))
		if tv.Dimmed {
			pdf.SetAlpha(1, "Normal")
		}
	}

	pdf.SetFont("Helvetica", "", labelSize)
	for _, ev := range sc.Edges {
		st := edgeStroke(ev)
		for _, lv := range ev.Labels {
			r := lv.Box.Rect()
			setFillColor(pdf, labelFill)
			setDrawColor(pdf, st.Color)
			pdf.SetLineWidth(1)
			pdf.Rect(r.X, r.Y, r.W, r.H, "FD")
			setTextColor(pdf, textColor)
			centeredText(pdf, lv.Box.Center.X, lv.Box.Center.Y+labelSize/3, tr(asciiText(lv.Text)))
		}
	}

	if opt.Hints {
		pdf.SetFont("Helvetica", "", badgeSize)
		for _, ev := range sc.Edges {
			for _, h := range ev.Hints {
				setDrawColor(pdf, hintColor)
				pdf.SetLineWidth(1)
				pdf.SetDashPattern(hintDash, 0)
				pdf.Line(h.From.X, h.From.Y, h.To.X, h.To.Y)
				pdf.SetDashPattern(nil, 0)
				b := h.Badge
				setFillColor(pdf, hintColor)
				pdf.Rect(b.X, b.Y, b.W, b.H, "F")
				setTextColor(pdf, textColor)
				centeredText(pdf, b.X+b.W/2, b.Y+b.H/2+badgeSize/3, tr(h.BadgeText()))
			}
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func polyline(pdf *gofpdf.Fpdf, pts []vector.Pt) {
	if len(pts) < 2 {
		return
	}
	pdf.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		pdf.LineTo(p.X, p.Y)
	}
	pdf.DrawPath("D")
}

func centeredText(pdf *gofpdf.Fpdf, cx, baseline float64, s string) {
	pdf.Text(cx-pdf.GetStringWidth(s)/2, baseline, s)
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
