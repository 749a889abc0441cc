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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"gocharmap/internal/diagram"
	"gocharmap/internal/vector"
)

// ExportPNG rasterizes the scene. Output size is the canvas size times
// opt.Scale. Text uses the built-in 7x13 bitmap face.
func ExportPNG(w io.Writer, sc diagram.Scene, opt Options) error {
	img := Rasterize(sc, opt)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Rasterize draws the scene into a new RGBA image.
func Rasterize(sc diagram.Scene, opt Options) *image.RGBA {
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	pixW := max(1, int(math.Round(sc.Width*scale)))
	pixH := max(1, int(math.Round(sc.Height*scale)))
	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: toRGBA(background)}, image.Point{}, draw.Src)

	rs := raster{img: img, scale: scale}
	for _, ev := range sc.Edges {
		st := edgeStroke(ev)
		rs.polyline(ev.Path.Points, st.Width, st.Dash, toRGBA(st.Color))
	}
	for _, tv := range sc.Tiles {
		b := tileBorder(tv)
		fill, stroke, caption := toRGBA(tileFill), toRGBA(b.Color), toRGBA(captionColor)
		if tv.Dimmed {
			fill, stroke, caption = fade(fill, background), fade(stroke, background), fade(caption, background)
		}
		rs.fillRect(tv.Rect, fill)
		rs.strokeRect(tv.Rect, b.Width, stroke)
		r := tv.Rect
		rs.text(vector.Pt{X: r.X + r.W/2, Y: r.Y + r.H - captionSize}, tileCaption(tv.Node), caption)
	}
	for _, ev := range sc.Edges {
		st := edgeStroke(ev)
		for _, lv := range ev.Labels {
			r := lv.Box.Rect()
			rs.fillRect(r, toRGBA(labelFill))
			rs.strokeRect(r, 1, toRGBA(st.Color))
			rs.text(lv.Box.Center, lv.Text, toRGBA(textColor))
		}
	}
	if opt.Hints {
		for _, ev := range sc.Edges {
			for _, h := range ev.Hints {
				rs.polyline([]vector.Pt{h.From, h.To}, 1, hintDash, toRGBA(hintColor))
				rs.fillRect(h.Badge, toRGBA(hintColor))
				rs.text(h.Badge.Center(), h.BadgeText(), toRGBA(textColor))
			}
		}
	}
	return img
}

func toRGBA(c vector.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// fade blends c toward bg as if drawn at dimmedAlpha.
func fade(c color.RGBA, bg vector.Color) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a)*dimmedAlpha + float64(b)*(1-dimmedAlpha)))
	}
	return color.RGBA{R: mix(c.R, bg.R), G: mix(c.G, bg.G), B: mix(c.B, bg.B), A: 255}
}

// raster paints canvas-space shapes into pixel space.
type raster struct {
	img   *image.RGBA
	scale float64
}

func (r raster) px(v float64) int { return int(math.Round(v * r.scale)) }

func (r raster) fillRect(rc vector.Rect, col color.RGBA) {
	x0, y0 := r.px(rc.X), r.px(rc.Y)
	x1, y1 := r.px(rc.X+rc.W)-1, r.px(rc.Y+rc.H)-1
	fillRect(r.img, x0, y0, x1, y1, col)
}

func (r raster) strokeRect(rc vector.Rect, width float64, col color.RGBA) {
	t := max(1, int(math.Round(width*r.scale)))
	x0, y0 := r.px(rc.X), r.px(rc.Y)
	x1, y1 := r.px(rc.X+rc.W)-1, r.px(rc.Y+rc.H)-1
	for i := 0; i < t; i++ {
		strokeRect(r.img, x0+i, y0+i, x1-i, y1-i, col)
	}
}

// polyline stamps discs along each segment. Dash lengths are measured along
// the whole polyline so patterns continue across vertices.
func (r raster) polyline(pts []vector.Pt, width float64, dash []float64, col color.RGBA) {
	rad := max(0.5, width*r.scale/2)
	var period float64
	for _, d := range dash {
		period += d * r.scale
	}
	travelled := 0.0
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1].Scale(r.scale), pts[i].Scale(r.scale)
		length := a.Sub(b).Len()
		steps := max(1, int(math.Ceil(length*2)))
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			if period > 0 && !dashOn(travelled+length*t, dash, r.scale, period) {
				continue
			}
			disc(r.img, a.Lerp(b, t), rad, col)
		}
		travelled += length
	}
}

func dashOn(d float64, dash []float64, scale, period float64) bool {
	pos := math.Mod(d, period)
	for i, seg := range dash {
		seg *= scale
		if pos < seg {
			return i%2 == 0
		}
		pos -= seg
	}
	return true
}

func disc(img *image.RGBA, c vector.Pt, rad float64, col color.RGBA) {
	r2 := rad * rad
	for y := int(math.Floor(c.Y - rad)); y <= int(math.Ceil(c.Y+rad)); y++ {
		for x := int(math.Floor(c.X - rad)); x <= int(math.Ceil(c.X+rad)); x++ {
			dx, dy := float64(x)+0.5-c.X, float64(y)+0.5-c.Y
			if dx*dx+dy*dy <= r2 {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// text draws s centered on c in the bitmap face.
func (r raster) text(c vector.Pt, s string, col color.RGBA) {
	face := basicfont.Face7x13
	s = asciiText(s)
	d := &font.Drawer{Dst: r.img, Src: image.NewUniform(col), Face: face}
	adv := d.MeasureString(s)
	cx, cy := c.X*r.scale, c.Y*r.scale
	m := face.Metrics()
	baseline := cy + float64(m.Ascent.Round()-m.Descent.Round())/2
	d.Dot = fixed.Point26_6{
		X: fixed.I(int(math.Round(cx))) - adv/2,
		Y: fixed.I(int(math.Round(baseline))),
	}
	d.DrawString(s)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 || y1 < y0 {
		return
	}
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
