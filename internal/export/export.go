/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a laid-out character map to SVG, PNG and PDF.
// All three formats draw the same diagram.Scene: tiles, edges as polylines
// in their legend color and dash style, label boxes with text, and
// optionally the angle hint overlays.
package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gocharmap/internal/diagram"
	"gocharmap/internal/domain"
	applog "gocharmap/internal/log"
	"gocharmap/internal/vector"
)

type Format uint8

const (
	FormatSVG Format = iota
	FormatPNG
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatPDF:
		return "pdf"
	default:
		return "svg"
	}
}

// ParseFormat accepts "svg", "png" or "pdf" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return FormatSVG, fmt.Errorf("unknown export format %q", s)
}

// Options controls rendering. Zero values give a plain export without hints
// at scale 1.
//
//nolint:revive // clarity is preferred
type Options struct {
	// Hints draws the angle hints the scene carries.
	Hints bool
	// Scale multiplies pixel output (PNG only); <= 0 means 1.
	Scale float64
	Title string
}

// Palette used by all exporters.
var (
	background     = vector.Color{R: 17, G: 24, B: 39, A: 255}
	tileFill       = vector.Color{R: 55, G: 65, B: 81, A: 255}
	captionColor   = vector.White
	tileStroke     = vector.Gray
	selectedStroke = vector.Color{R: 37, G: 99, B: 235, A: 255}
	matchStroke    = vector.Color{R: 245, G: 158, B: 11, A: 255}
	labelFill      = vector.White
	textColor      = vector.Color{R: 17, G: 24, B: 39, A: 255}
	hintColor      = vector.Color{R: 156, G: 163, B: 175, A: 255}
	hintDash       = []float64{4, 4}
)

const dimmedAlpha = 0.35

// tileBorder returns the stroke for a tile: selection wins over a search
// match, which wins over the group color.
func tileBorder(tv diagram.TileView) vector.Stroke {
	s := vector.Stroke{Color: tileStroke, Width: 1}
	if tv.GroupColor != "" {
		s.Color, _ = vector.ParseHexColor(tv.GroupColor, tileStroke)
		s.Width = 2
	}
	if tv.Highlighted {
		s = vector.Stroke{Color: matchStroke, Width: 3}
	}
	if tv.Selected {
		s = vector.Stroke{Color: selectedStroke, Width: 3}
	}
	return s
}

// edgeStroke resolves the legend style of an edge.
func edgeStroke(ev diagram.EdgeView) vector.Stroke {
	c, _ := vector.ParseHexColor(ev.Style.Color, vector.Gray)
	w := ev.Style.Thickness
	if w <= 0 {
		w = domain.DefaultLineStyle.Thickness
	}
	return vector.Stroke{Color: c, Width: w, Cap: vector.CapRound, Dash: vector.DashFor(ev.Style.Style)}
}

// asciiText replaces glyphs the built-in PDF and bitmap fonts lack.
func asciiText(s string) string {
	return strings.ReplaceAll(s, "→", "->")
}

// tileCaption is the text printed at the bottom of a tile.
func tileCaption(n domain.Node) string {
	if n.Name == "" {
		return n.ID
	}
	return n.Name
}

// Write renders sc in format f to w.
func Write(w io.Writer, f Format, sc diagram.Scene, opt Options) error {
	switch f {
	case FormatPNG:
		return ExportPNG(w, sc, opt)
	case FormatPDF:
		return ExportPDF(w, sc, opt)
	default:
		return ExportSVG(w, sc, opt)
	}
}

// ToFile renders sc into path, creating parent directories.
func ToFile(path string, f Format, sc diagram.Scene, opt Options) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("export path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, sc, opt); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	applog.WithComponent("export").Info("exported",
		slog.String("format", f.String()), slog.String("path", path),
		slog.Int("tiles", len(sc.Tiles)), slog.Int("edges", len(sc.Edges)))
	return nil
}
