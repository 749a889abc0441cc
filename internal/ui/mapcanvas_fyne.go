//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"gocharmap/internal/diagram"
	"gocharmap/internal/domain"
	"gocharmap/internal/interact"
	"gocharmap/internal/vector"
)

// Canvas palette.
var (
	bgColor       = color.RGBA{R: 17, G: 24, B: 39, A: 255}
	tileColor     = color.RGBA{R: 55, G: 65, B: 81, A: 255}
	tileBorder    = color.RGBA{R: 107, G: 114, B: 128, A: 255}
	selectColor   = color.RGBA{R: 37, G: 99, B: 235, A: 255}
	matchColor    = color.RGBA{R: 245, G: 158, B: 11, A: 255}
	labelColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	inkColor      = color.RGBA{R: 17, G: 24, B: 39, A: 255}
	hintLineColor = color.RGBA{R: 156, G: 163, B: 175, A: 255}
	handleColor   = color.RGBA{R: 59, G: 130, B: 246, A: 255}
	deleteColor   = color.RGBA{R: 220, G: 38, B: 38, A: 255}
	addColor      = color.RGBA{R: 34, G: 197, B: 94, A: 255}
)

// MapCanvas draws the character map and forwards pointer input to the
// editor. The secondary button pans, the wheel zooms.
type MapCanvas struct {
	widget.BaseWidget

	ctl     *Controller
	view    Viewport
	panning bool

	// OnChanged runs after any interaction that may have changed the
	// document or the selection.
	OnChanged func()
}

func NewMapCanvas(ctl *Controller) *MapCanvas {
	m := &MapCanvas{ctl: ctl, view: NewViewport()}
	m.view.Pan(24, 24)
	m.ExtendBaseWidget(m)
	return m
}

func (m *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &mapRenderer{m: m}
	r.rebuild(fyne.NewSize(800, 600))
	return r
}

// ResetView restores zoom 1 with a small margin.
func (m *MapCanvas) ResetView() {
	m.view = NewViewport()
	m.view.Pan(24, 24)
	m.Refresh()
}

func (m *MapCanvas) canvasPoint(pos fyne.Position) vector.Pt {
	return m.view.ToCanvas(float64(pos.X), float64(pos.Y))
}

func (m *MapCanvas) changed() {
	m.Refresh()
	if m.OnChanged != nil {
		m.OnChanged()
	}
}

func (m *MapCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonSecondary {
		m.panning = true
		return
	}
	m.ctl.Editor().PointerDown(m.canvasPoint(e.Position), modifiers(e.Modifier))
	m.changed()
}

func (m *MapCanvas) MouseUp(*desktop.MouseEvent) {
	m.panning = false
	m.ctl.Editor().PointerUp()
	m.changed()
}

func (m *MapCanvas) Dragged(e *fyne.DragEvent) {
	if m.panning {
		m.view.Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
		m.Refresh()
		return
	}
	if m.ctl.Editor().Session().Kind() == interact.SessionIdle {
		return
	}
	m.ctl.Editor().PointerMove(m.canvasPoint(e.Position))
	m.changed()
}

func (m *MapCanvas) DragEnd() {
	m.panning = false
	m.ctl.Editor().PointerUp()
	m.changed()
}

// Scrolled zooms around the pointer.
func (m *MapCanvas) Scrolled(e *fyne.ScrollEvent) {
	factor := 1.1
	if e.Scrolled.DY < 0 {
		factor = 1 / factor
	}
	m.view.ZoomAt(float64(e.Position.X), float64(e.Position.Y), factor)
	m.Refresh()
}

func modifiers(k fyne.KeyModifier) interact.Modifiers {
	return interact.Modifiers{
		Shift: k&fyne.KeyModifierShift != 0,
		Ctrl:  k&fyne.KeyModifierControl != 0,
		Meta:  k&fyne.KeyModifierSuper != 0,
	}
}

// mapRenderer rebuilds its objects from the scene on every refresh. Maps are
// small enough that diffing is not worth it.
type mapRenderer struct {
	m       *MapCanvas
	objects []fyne.CanvasObject
}

func (r *mapRenderer) Destroy()                     {}
func (r *mapRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *mapRenderer) MinSize() fyne.Size           { return fyne.NewSize(400, 300) }
func (r *mapRenderer) Layout(size fyne.Size)        { r.rebuild(size) }
func (r *mapRenderer) Refresh() {
	r.rebuild(r.m.Size())
	canvas.Refresh(r.m)
}

func (r *mapRenderer) rebuild(size fyne.Size) {
	m := r.m
	sc := m.ctl.Scene()
	ed := m.ctl.Editor()
	z := float32(m.view.Zoom)

	bg := canvas.NewRectangle(bgColor)
	bg.Resize(size)
	objs := []fyne.CanvasObject{bg}

	sheet := canvas.NewRectangle(color.Transparent)
	sheet.StrokeColor = tileBorder
	sheet.StrokeWidth = 1
	r.place(sheet, vector.R(0, 0, sc.Width, sc.Height))
	objs = append(objs, sheet)

	for _, ev := range sc.Edges {
		col, w := edgeColor(ev)
		if ev.Selected && ed.Editing() {
			w *= 1.5
		}
		for _, s := range DashSegments(ev.Path.Points, vector.DashFor(ev.Style.Style)) {
			objs = append(objs, r.line(s, col, w))
		}
	}

	for _, tv := range sc.Tiles {
		objs = append(objs, r.tile(tv)...)
	}

	for _, ev := range sc.Edges {
		col, _ := edgeColor(ev)
		for _, lv := range ev.Labels {
			box := canvas.NewRectangle(labelColor)
			box.StrokeColor = col
			box.StrokeWidth = 1
			box.CornerRadius = 3 * z
			rc := lv.Box.Rect()
			r.place(box, rc)
			objs = append(objs, box, r.text(lv.Text, rc, inkColor, 10))
		}
	}

	for _, h := range ed.Hints() {
		for _, s := range DashSegments([]vector.Pt{h.From, h.To}, []float64{4, 4}) {
			objs = append(objs, r.line(s, hintLineColor, 1))
		}
		badge := canvas.NewRectangle(hintLineColor)
		badge.CornerRadius = 3 * z
		r.place(badge, h.Badge)
		objs = append(objs, badge, r.text(h.BadgeText(), h.Badge, inkColor, 9))
	}

	if ev, ok := sc.Edge(ed.SelectedEdge()); ok && ed.Editing() {
		objs = append(objs, r.handles(ev)...)
	}
	r.objects = objs
}

func (r *mapRenderer) tile(tv diagram.TileView) []fyne.CanvasObject {
	z := float32(r.m.view.Zoom)
	var fill, border, caption color.Color = tileColor, tileBorder, color.White
	width := float32(1)
	if tv.GroupColor != "" {
		border, width = rgba(tv.GroupColor, tileBorder), 2
	}
	if tv.Highlighted {
		border, width = matchColor, 3
	}
	if tv.Selected {
		border, width = selectColor, 3
	}
	if tv.Dimmed {
		fill, border, caption = dim(fill), dim(border), dim(caption)
	}
	rect := canvas.NewRectangle(fill)
	rect.StrokeColor = border
	rect.StrokeWidth = width * z
	rect.CornerRadius = 6 * z
	r.place(rect, tv.Rect)
	rc := tv.Rect
	capRect := vector.R(rc.X, rc.Y+rc.H-28, rc.W, 24)
	return []fyne.CanvasObject{rect, r.text(tileName(tv.Node), capRect, caption, 12)}
}

func (r *mapRenderer) handles(ev diagram.EdgeView) []fyne.CanvasObject {
	var objs []fyne.CanvasObject
	for _, s := range ev.Path.Segments() {
		objs = append(objs, r.circle(s.Midpoint(), interact.AddButtonRadius, addColor))
	}
	for _, w := range ev.Edge.Waypoints {
		objs = append(objs, r.circle(vector.Pt{X: w.X, Y: w.Y}, interact.WaypointHandleRadius, handleColor))
		c := vector.Pt{X: w.X + interact.DeleteButtonOffset, Y: w.Y - interact.DeleteButtonOffset}
		objs = append(objs, r.circle(c, interact.DeleteButtonRadius, deleteColor))
		d := interact.DeleteButtonRadius
		objs = append(objs, r.text("×", vector.R(c.X-d, c.Y-d, 2*d, 2*d), labelColor, 11))
	}
	return objs
}

func (r *mapRenderer) pos(p vector.Pt) fyne.Position {
	x, y := r.m.view.ToScreen(p)
	return fyne.NewPos(float32(x), float32(y))
}

func (r *mapRenderer) place(o fyne.CanvasObject, rc vector.Rect) {
	z := float32(r.m.view.Zoom)
	o.Move(r.pos(rc.Min()))
	o.Resize(fyne.NewSize(float32(rc.W)*z, float32(rc.H)*z))
}

func (r *mapRenderer) line(s vector.Segment, col color.Color, width float64) *canvas.Line {
	l := canvas.NewLine(col)
	l.StrokeWidth = float32(width * r.m.view.Zoom)
	l.Position1 = r.pos(s.A)
	l.Position2 = r.pos(s.B)
	return l
}

func (r *mapRenderer) circle(c vector.Pt, radius float64, col color.Color) *canvas.Circle {
	o := canvas.NewCircle(col)
	o.Position1 = r.pos(vector.Pt{X: c.X - radius, Y: c.Y - radius})
	o.Position2 = r.pos(vector.Pt{X: c.X + radius, Y: c.Y + radius})
	return o
}

// text centers s inside rc.
func (r *mapRenderer) text(s string, rc vector.Rect, col color.Color, size float32) *canvas.Text {
	t := canvas.NewText(s, col)
	t.TextSize = size * float32(r.m.view.Zoom)
	t.Alignment = fyne.TextAlignCenter
	r.place(t, rc)
	return t
}

func edgeColor(ev diagram.EdgeView) (color.RGBA, float64) {
	w := ev.Style.Thickness
	if w <= 0 {
		w = domain.DefaultLineStyle.Thickness
	}
	return rgba(ev.Style.Color, tileBorder), w
}

func rgba(hex string, fallback color.RGBA) color.RGBA {
	fb := vector.Color{R: fallback.R, G: fallback.G, B: fallback.B, A: fallback.A}
	c, _ := vector.ParseHexColor(hex, fb)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func dim(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A) * 0.35)
	return n
}

func tileName(n domain.Node) string {
	if n.Name == "" {
		return n.ID
	}
	return n.Name
}
