/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diagram

import (
	"strings"

	"gocharmap/internal/domain"
	"gocharmap/internal/vector"
)

// Options controls scene computation.
type Options struct {
	Metrics Metrics
	Labels  LabelMetrics
	Hints   HintOptions

	// HintEdge names the edge that receives angle hints. Empty means none.
	HintEdge string
	// Query dims tiles that do not match a non-blank search.
	Query string

	SelectedNodes map[string]bool
	SelectedEdge  string
}

// Scene is the fully resolved geometry of a document, shared by the
// exporters, the editor's hit targets and the desktop canvas.
type Scene struct {
	Width, Height float64
	Tiles         []TileView
	Edges         []EdgeView
}

type TileView struct {
	Node        domain.Node
	Rect        vector.Rect
	Selected    bool
	Highlighted bool
	Dimmed      bool
	GroupColor  string
}

type EdgeView struct {
	Edge     domain.Edge
	Path     Path
	Style    domain.LineStyle
	Selected bool
	Labels   []LabelView
	Hints    []Hint
}

type LabelView struct {
	Label   domain.Label
	Text    string
	Box     Box
	Default bool // shown from the defaults, not stored on the edge
}

// Layout resolves tiles, edge paths, label boxes and hints for doc.
// Edges with a dangling endpoint are skipped without error.
func Layout(doc domain.Document, opts Options) Scene {
	m := opts.Metrics.orDefault()
	lm := opts.Labels.orDefault()

	sc := Scene{
		Width:  float64(max(doc.CanvasWidth, 1)) * m.GridUnit,
		Height: float64(max(doc.CanvasHeight, 1)) * m.GridUnit,
	}
	searching := strings.TrimSpace(opts.Query) != ""
	for _, n := range doc.Nodes {
		tv := TileView{Node: n, Rect: TileRect(n, m), Selected: opts.SelectedNodes[n.ID]}
		if searching {
			match := MatchesQuery(n, opts.Query)
			tv.Highlighted = match
			tv.Dimmed = !match
		}
		if g, ok := doc.Legend.Groups[n.Group]; ok {
			tv.GroupColor = g.Color
		}
		sc.Tiles = append(sc.Tiles, tv)
	}

	byID := IndexNodes(doc.Nodes)
	for _, e := range doc.Edges {
		p := BuildPath(e, byID, m)
		if p.Validate() != nil {
			continue
		}
		ev := EdgeView{
			Edge:     e,
			Path:     p,
			Style:    doc.Legend.LineStyleFor(e.Type),
			Selected: e.ID == opts.SelectedEdge,
		}
		text := LabelText(byID[e.From].Name, byID[e.To].Name)
		stored := len(e.Labels) > 0
		for _, l := range EffectiveLabels(e, p) {
			box, err := LabelBox(p, l, text, lm)
			if err != nil {
				continue
			}
			ev.Labels = append(ev.Labels, LabelView{Label: l, Text: text, Box: box, Default: !stored})
		}
		if opts.HintEdge != "" && e.ID == opts.HintEdge {
			ev.Hints = opts.Hints.Hints(p)
		}
		sc.Edges = append(sc.Edges, ev)
	}
	return sc
}

// Edge returns the view of the edge with id.
func (s Scene) Edge(id string) (EdgeView, bool) {
	for _, e := range s.Edges {
		if e.Edge.ID == id {
			return e, true
		}
	}
	return EdgeView{}, false
}

// Bounds is the extent of everything drawn: tiles, edge paths and labels.
// An empty scene has zero bounds.
func (s Scene) Bounds() vector.Rect {
	var b vector.Rect
	first := true
	add := func(r vector.Rect) {
		if first {
			b, first = r, false
			return
		}
		b = b.Union(r)
	}
	for _, tv := range s.Tiles {
		add(tv.Rect)
	}
	for _, ev := range s.Edges {
		pl := ev.Path.Polyline()
		add(pl.Bounds())
		for _, lv := range ev.Labels {
			add(lv.Box.Rect())
		}
	}
	return b
}
