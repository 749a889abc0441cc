//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne canvas widget. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"gocharmap/internal/config"
	"gocharmap/internal/interact"
)

func countObjects[T any](objs []fyne.CanvasObject) int {
	n := 0
	for _, o := range objs {
		if _, ok := o.(T); ok {
			n++
		}
	}
	return n
}

func openedCanvas(t *testing.T) (*Controller, *MapCanvas, *mapRenderer) {
	t.Helper()
	test.NewTempApp(t)
	ctl := NewController(config.Defaults(), "", nil)
	if err := ctl.Open(twoTileFile(t)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	mc := NewMapCanvas(ctl)
	r, ok := mc.CreateRenderer().(*mapRenderer)
	if !ok {
		t.Fatalf("expected mapRenderer, got %T", mc.CreateRenderer())
	}
	mc.Resize(fyne.NewSize(1000, 800))
	r.Layout(fyne.NewSize(1000, 800))
	return ctl, mc, r
}

func TestMapCanvas_DrawsScene(t *testing.T) {
	_, _, r := openedCanvas(t)
	// background, sheet, two tiles, two label boxes
	if got := countObjects[*canvas.Rectangle](r.Objects()); got != 6 {
		t.Fatalf("rectangles = %d", got)
	}
	if got := countObjects[*canvas.Line](r.Objects()); got != 1 {
		t.Fatalf("lines = %d", got)
	}
	if got := countObjects[*canvas.Circle](r.Objects()); got != 0 {
		t.Fatalf("handles drawn outside edit mode: %d", got)
	}
}

func TestMapCanvas_DragMovesTile(t *testing.T) {
	ctl, mc, _ := openedCanvas(t)
	if _, err := ctl.ToggleEdit(""); err != nil {
		t.Fatalf("ToggleEdit: %v", err)
	}
	// default view is offset by 24px
	mc.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(74, 74)}, Button: desktop.MouseButtonPrimary})
	mc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(114, 74)}, Dragged: fyne.Delta{DX: 40}})
	mc.DragEnd()
	if got := ctl.Document().Nodes[0].GridX; got != 2 {
		t.Fatalf("GridX = %d, want 2", got)
	}
	if ctl.Editor().Session().Kind() != interact.SessionIdle {
		t.Fatalf("session not ended")
	}
}

func TestMapCanvas_EditHandles(t *testing.T) {
	ctl, mc, r := openedCanvas(t)
	if _, err := ctl.ToggleEdit(""); err != nil {
		t.Fatalf("ToggleEdit: %v", err)
	}
	ctl.Editor().SelectEdge("e1")
	r.Layout(mc.Size())
	// one add button per segment
	if got := countObjects[*canvas.Circle](r.Objects()); got != 1 {
		t.Fatalf("circles = %d", got)
	}
}

func TestMapCanvas_SecondaryButtonPans(t *testing.T) {
	_, mc, _ := openedCanvas(t)
	mc.MouseDown(&desktop.MouseEvent{Button: desktop.MouseButtonSecondary})
	mc.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 10, DY: 5}})
	mc.DragEnd()
	if mc.view.OffsetX != 34 || mc.view.OffsetY != 29 {
		t.Fatalf("view = %#v", mc.view)
	}
}

