/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"gocharmap/internal/diagram"
	"gocharmap/internal/domain"
	applog "gocharmap/internal/log"
	"gocharmap/internal/undo"
	"gocharmap/internal/vector"
)

// UndoScope is the undo manager scope used for the edited document.
const UndoScope = "document"

// Options configures geometry and editing policies.
type Options struct {
	Metrics diagram.Metrics
	Labels  diagram.LabelMetrics
	Hints   diagram.HintOptions

	Quantize      QuantizeMode
	ClampToCanvas bool
	CanvasWidth   int // grid units, used with ClampToCanvas
	CanvasHeight  int
	ReindexLabels bool
}

// Modifiers are the keyboard modifiers held during a pointer or key event.
type Modifiers struct {
	Shift, Ctrl, Meta bool
}

// Toggle reports whether the event should toggle selection membership.
func (m Modifiers) Toggle() bool { return m.Shift || m.Ctrl || m.Meta }

// Command reports whether the platform command modifier is held.
func (m Modifiers) Command() bool { return m.Ctrl || m.Meta }

// documentSource is implemented by stores that also carry the legend and
// canvas size.
type documentSource interface {
	Document() domain.Document
}

// Editor drives direct manipulation of a diagram held by a Store.
// It is not safe for concurrent use; feed it events from one goroutine.
type Editor struct {
	store   Store
	opts    Options
	log     *slog.Logger
	history *undo.Manager
	now     func() time.Time

	sel     Selection
	edge    string
	editing bool
	session Session
	// set once the active session recorded its undo snapshot
	checkpointed bool
}

func NewEditor(s Store, opts Options) *Editor {
	if opts.Metrics.GridUnit <= 0 {
		opts.Metrics = diagram.DefaultMetrics
	}
	if opts.Labels.Height <= 0 {
		opts.Labels = diagram.DefaultLabelMetrics
	}
	return &Editor{
		store:   s,
		opts:    opts,
		log:     applog.WithComponent("editor"),
		now:     time.Now,
		session: Idle{},
	}
}

// SetHistory enables undo/redo through m.
func (e *Editor) SetHistory(m *undo.Manager) { e.history = m }

// SetEditing switches edit mode. Entering edit mode with a selected edge
// materializes its default labels; leaving it ends any session.
func (e *Editor) SetEditing(on bool) {
	e.editing = on
	if on {
		if e.edge != "" {
			e.materializeLabels(e.edge)
		}
		return
	}
	e.endSession()
}

func (e *Editor) Editing() bool       { return e.editing }
func (e *Editor) Selection() []string { return e.sel.IDs() }
func (e *Editor) SelectedEdge() string { return e.edge }
func (e *Editor) Session() Session    { return e.session }

// Scene lays out the current store contents with selection, hints and an
// optional search query applied.
func (e *Editor) Scene(query string) diagram.Scene {
	hintEdge := ""
	if e.editing {
		hintEdge = e.edge
	}
	return diagram.Layout(e.document(), diagram.Options{
		Metrics:       e.opts.Metrics,
		Labels:        e.opts.Labels,
		Hints:         e.opts.Hints,
		HintEdge:      hintEdge,
		Query:         query,
		SelectedNodes: e.sel.Set(),
		SelectedEdge:  e.edge,
	})
}

// Hints returns the angle hints of the selected edge in edit mode.
func (e *Editor) Hints() []diagram.Hint {
	if !e.editing || e.edge == "" {
		return nil
	}
	p, ok := e.path(e.edge)
	if !ok {
		return nil
	}
	return e.opts.Hints.Hints(p)
}

// ClickTile selects a tile: toggles membership with a modifier, otherwise
// makes it the only selected tile. Works in view mode too.
func (e *Editor) ClickTile(id string, mods Modifiers) {
	if mods.Toggle() {
		e.sel.Toggle(id)
	} else {
		e.sel.Primary(id)
	}
	e.emitSelection()
}

// PointerDownTile handles a press on a tile. In edit mode it begins a group
// drag anchored on the tile and leaves the selection alone until release.
func (e *Editor) PointerDownTile(id string, p vector.Pt, mods Modifiers) {
	if mods.Toggle() || !e.editing {
		e.ClickTile(id, mods)
		return
	}
	e.beginSession(GroupDrag{AnchorID: id, Ref: p})
}

// SelectEdge selects an edge for editing and materializes its default
// labels. Ignored outside edit mode.
func (e *Editor) SelectEdge(id string) {
	if !e.editing {
		return
	}
	e.edge = id
	e.materializeLabels(id)
}

// PointerDownPath handles a press on an edge stroke. On the selected edge in
// edit mode it inserts a waypoint at the nearest point of the path without
// starting a drag; on any other edge it selects that edge.
func (e *Editor) PointerDownPath(edgeID string, p vector.Pt) {
	if !e.editing {
		return
	}
	if edgeID != e.edge {
		e.SelectEdge(edgeID)
		return
	}
	path, ok := e.path(edgeID)
	if !ok {
		return
	}
	hit, err := diagram.NearestPointOnPath(path, p)
	if err != nil {
		return
	}
	e.apply(InsertWaypoint{
		EdgeID:  edgeID,
		Index:   hit.SegmentIndex,
		Point:   domain.Point{X: hit.Point.X, Y: hit.Point.Y},
		Reindex: e.opts.ReindexLabels,
		SplitT:  hit.T,
	})
	e.log.Debug("waypoint inserted", slog.String("edge", edgeID), slog.Int("segment", hit.SegmentIndex), slog.Float64("t", hit.T))
}

// AddWaypointAtMidpoint inserts a waypoint at the midpoint of segment seg.
func (e *Editor) AddWaypointAtMidpoint(edgeID string, seg int) {
	if !e.editing || edgeID != e.edge {
		return
	}
	path, ok := e.path(edgeID)
	if !ok || seg < 0 || seg >= path.SegmentCount() {
		return
	}
	m := path.Segment(seg).Midpoint()
	e.apply(InsertWaypoint{
		EdgeID:  edgeID,
		Index:   seg,
		Point:   domain.Point{X: m.X, Y: m.Y},
		Reindex: e.opts.ReindexLabels,
		SplitT:  0.5,
	})
}

// PointerDownWaypoint begins dragging waypoint idx of the selected edge.
func (e *Editor) PointerDownWaypoint(edgeID string, idx int) {
	if !e.editing || edgeID != e.edge {
		return
	}
	ed, ok := e.findEdge(edgeID)
	if !ok || idx < 0 || idx >= len(ed.Waypoints) {
		return
	}
	e.beginSession(WaypointDrag{EdgeID: edgeID, Index: idx})
}

// DeleteWaypoint removes waypoint idx of the selected edge.
func (e *Editor) DeleteWaypoint(edgeID string, idx int) {
	if !e.editing || edgeID != e.edge {
		return
	}
	in := DeleteWaypoint{EdgeID: edgeID, Index: idx, Reindex: e.opts.ReindexLabels, JoinRatio: 0.5}
	if path, ok := e.path(edgeID); ok {
		in.JoinRatio = diagram.JoinRatio(path, idx)
	}
	e.apply(in)
}

// PointerDownLabel selects the label's edge and begins dragging the label.
// Default labels are materialized first so the drag has a stored target.
func (e *Editor) PointerDownLabel(edgeID, labelID string) {
	if !e.editing {
		return
	}
	e.SelectEdge(edgeID)
	e.beginSession(LabelDrag{EdgeID: edgeID, LabelID: labelID})
}

// PointerDown hit-tests p against the current scene and dispatches to the
// top-most target. A press on empty canvas deselects the edge.
func (e *Editor) PointerDown(p vector.Pt, mods Modifiers) Target {
	targets := BuildTargets(e.Scene(""), e.editing, e.edge)
	t, ok := HitTest(targets, p)
	if !ok {
		if e.editing {
			e.edge = ""
		}
		return Target{}
	}
	switch t.Kind {
	case TargetLabel:
		e.PointerDownLabel(t.EdgeID, t.LabelID)
	case TargetAddWaypoint:
		e.AddWaypointAtMidpoint(t.EdgeID, t.Index)
	case TargetDeleteWaypoint:
		e.DeleteWaypoint(t.EdgeID, t.Index)
	case TargetWaypoint:
		e.PointerDownWaypoint(t.EdgeID, t.Index)
	case TargetPath:
		e.PointerDownPath(t.EdgeID, p)
	case TargetTile:
		e.PointerDownTile(t.NodeID, p, mods)
	}
	return t
}

// PointerMove advances the active session.
func (e *Editor) PointerMove(p vector.Pt) {
	switch s := e.session.(type) {
	case WaypointDrag:
		e.apply(MoveWaypoint{EdgeID: s.EdgeID, Index: s.Index, Point: domain.Point{X: p.X, Y: p.Y}})
	case LabelDrag:
		path, ok := e.path(s.EdgeID)
		if !ok {
			return
		}
		hit, err := diagram.NearestPointOnPath(path, p)
		if err != nil {
			return
		}
		e.apply(MoveLabel{EdgeID: s.EdgeID, LabelID: s.LabelID, SegmentIndex: hit.SegmentIndex, T: hit.T})
	case GroupDrag:
		dx, dy, next := s.Advance(p, e.opts.Metrics.GridUnit, e.opts.Quantize)
		e.session = next
		if dx == 0 && dy == 0 {
			return
		}
		e.apply(TranslateNodes{
			IDs:           e.sel.MoveGroup(s.AnchorID),
			DX:            dx,
			DY:            dy,
			ClampToCanvas: e.opts.ClampToCanvas,
			MaxX:          e.opts.CanvasWidth - 1,
			MaxY:          e.opts.CanvasHeight - 1,
		})
	}
}

// PointerUp ends any session. A group drag that never moved acts as a click
// and makes the anchor the only selected tile.
func (e *Editor) PointerUp() {
	if g, ok := e.session.(GroupDrag); ok && !g.Moved && (e.sel.Len() != 1 || !e.sel.Contains(g.AnchorID)) {
		e.sel.Primary(g.AnchorID)
		e.emitSelection()
	}
	e.endSession()
}

// KeyDown handles the selection shortcuts: command+A selects all tiles,
// Escape clears, command+Z undoes and shift+command+Z redoes.
func (e *Editor) KeyDown(key string, mods Modifiers) {
	switch {
	case key == "Escape":
		e.sel.Clear()
		e.emitSelection()
	case mods.Command() && strings.EqualFold(key, "a"):
		nodes := e.store.ListNodes()
		ids := make([]string, 0, len(nodes))
		for _, n := range nodes {
			ids = append(ids, n.ID)
		}
		e.sel.SelectAll(ids)
		e.emitSelection()
	case mods.Command() && strings.EqualFold(key, "z") && mods.Shift:
		e.Redo()
	case mods.Command() && strings.EqualFold(key, "z"):
		e.Undo()
	}
}

// Undo restores the state before the last change.
func (e *Editor) Undo() bool {
	if e.history == nil {
		return false
	}
	e.endSession()
	s, ok := e.history.Undo(UndoScope, e.snapshot())
	if !ok {
		return false
	}
	return e.restore(s.Blob)
}

// Redo reapplies the last undone change.
func (e *Editor) Redo() bool {
	if e.history == nil {
		return false
	}
	e.endSession()
	s, ok := e.history.Redo(UndoScope, e.snapshot())
	if !ok {
		return false
	}
	return e.restore(s.Blob)
}

func (e *Editor) beginSession(s Session) {
	e.session = s
	e.checkpointed = false
	e.log.Debug("session start", slog.String("kind", s.Kind().String()))
}

func (e *Editor) endSession() {
	if e.session.Kind() != SessionIdle {
		e.log.Debug("session end", slog.String("kind", e.session.Kind().String()))
	}
	e.session = Idle{}
	e.checkpointed = false
}

func (e *Editor) emitSelection() {
	SetSelection{IDs: e.sel.IDs()}.Apply(e.store)
}

func (e *Editor) materializeLabels(edgeID string) {
	ed, ok := e.findEdge(edgeID)
	if !ok || len(ed.Labels) > 0 {
		return
	}
	path, ok := e.path(edgeID)
	if !ok {
		return
	}
	e.apply(MaterializeDefaultLabels{EdgeID: edgeID, Labels: diagram.DefaultLabels(path)})
}

// apply runs an intent and records one undo step per change, or one per
// session while a session is active.
func (e *Editor) apply(in Intent) {
	if e.history == nil || e.checkpointed {
		in.Apply(e.store)
		return
	}
	before := e.snapshot()
	in.Apply(e.store)
	if bytes.Equal(before, e.snapshot()) {
		return
	}
	e.history.PushSnapshot(undo.Snapshot{Scope: UndoScope, Blob: before, TS: e.now()})
	if e.session.Kind() != SessionIdle {
		e.checkpointed = true
	}
}

type snapshotDoc struct {
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

func (e *Editor) snapshot() []byte {
	b, err := json.Marshal(snapshotDoc{Nodes: e.store.ListNodes(), Edges: e.store.ListEdges()})
	if err != nil {
		e.log.Error("snapshot failed", slog.Any("err", err))
		return nil
	}
	return b
}

func (e *Editor) restore(blob []byte) bool {
	var d snapshotDoc
	if err := json.Unmarshal(blob, &d); err != nil {
		e.log.Error("restore snapshot failed", slog.Any("err", err))
		return false
	}
	e.store.ReplaceNodes(d.Nodes)
	e.store.ReplaceEdges(d.Edges)
	return true
}

func (e *Editor) document() domain.Document {
	if ds, ok := e.store.(documentSource); ok {
		return ds.Document()
	}
	return domain.Document{
		CanvasWidth:  e.opts.CanvasWidth,
		CanvasHeight: e.opts.CanvasHeight,
		Nodes:        e.store.ListNodes(),
		Edges:        e.store.ListEdges(),
	}
}

func (e *Editor) findEdge(id string) (domain.Edge, bool) {
	for _, ed := range e.store.ListEdges() {
		if ed.ID == id {
			return ed, true
		}
	}
	return domain.Edge{}, false
}

func (e *Editor) path(edgeID string) (diagram.Path, bool) {
	ed, ok := e.findEdge(edgeID)
	if !ok {
		return diagram.Path{}, false
	}
	p := diagram.BuildPath(ed, diagram.IndexNodes(e.store.ListNodes()), e.opts.Metrics)
	return p, p.Validate() == nil
}
