/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the data model of a character map: tiles placed on a
// grid, connected by multi-segment lines that carry positioned labels.
// The JSON shape is the document format shared by files, drafts and
// published snapshots.

import (
	"github.com/google/uuid"
)

const (
	DefaultCanvasWidth   = 50 // grid units
	DefaultCanvasHeight  = 40 // grid units
	DefaultImagePosition = "center"
)

// Document is a complete character map.
type Document struct {
	CanvasWidth  int    `json:"canvasWidth" validate:"gte=1"`
	CanvasHeight int    `json:"canvasHeight" validate:"gte=1"`
	Nodes        []Node `json:"characters" validate:"dive"`
	Edges        []Edge `json:"connections" validate:"dive"`
	Legend       Legend `json:"legend"`
}

// Node is a tile on the grid. Only ID and the grid position are used by the
// geometry engine; the remaining attributes belong to the editing surface.
type Node struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	Titles        []string `json:"titles,omitempty"`
	Nicknames     []string `json:"nicknames,omitempty"`
	GridX         int      `json:"gridX" validate:"gte=0"`
	GridY         int      `json:"gridY" validate:"gte=0"`
	Image         string   `json:"image,omitempty"`
	ImagePosition string   `json:"imagePosition,omitempty"`
	Symbols       []string `json:"symbols,omitempty"`
	StatusSymbol  string   `json:"statusSymbol,omitempty"`
	Bio           string   `json:"bio,omitempty"`
	Group         string   `json:"sect,omitempty"`
}

// Point is an absolute canvas position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge connects two nodes through zero or more waypoints.
// A nil Labels slice means "never materialized": default labels are shown.
type Edge struct {
	ID        string     `json:"id" validate:"required"`
	From      string     `json:"from" validate:"required"`
	To        string     `json:"to" validate:"required"`
	Type      string     `json:"type"`
	StartSide AnchorSide `json:"startSide"`
	EndSide   AnchorSide `json:"endSide"`
	Waypoints []Point    `json:"waypoints"`
	Labels    []Label    `json:"labels,omitempty" validate:"dive"`
}

// Label positions a text box on one segment of an edge path.
type Label struct {
	ID           string    `json:"id" validate:"required"`
	SegmentIndex int       `json:"segmentIndex"`
	T            float64   `json:"t"`
	Side         LabelSide `json:"side"`
}

// Legend describes line styles and the meaning of symbols and groups.
type Legend struct {
	Lines         map[string]LineStyle `json:"lines"`
	Symbols       map[string]string    `json:"symbols"`
	StatusSymbols map[string]string    `json:"statusSymbols"`
	Groups        map[string]Group     `json:"sects"`
}

// LineStyle is the visual style for an edge type.
type LineStyle struct {
	Color     string  `json:"color"`
	Style     string  `json:"style" validate:"omitempty,oneof=solid dashed dotted"`
	Thickness float64 `json:"thickness" validate:"gte=0"`
	Label     string  `json:"label,omitempty"`
}

// Group is a named, colored affiliation of nodes.
type Group struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultLineStyle is used for edges whose type has no legend entry.
var DefaultLineStyle = LineStyle{Color: "#ffffff", Style: "solid", Thickness: 2}

// LineStyleFor returns the legend style for an edge type.
func (l Legend) LineStyleFor(kind string) LineStyle {
	if s, ok := l.Lines[kind]; ok {
		if s.Thickness <= 0 {
			s.Thickness = DefaultLineStyle.Thickness
		}
		return s
	}
	return DefaultLineStyle
}

// NewID returns a fresh random identifier for nodes, edges and labels.
func NewID() string { return uuid.NewString() }

// NodeByID returns the node with the given id.
func (d *Document) NodeByID(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Normalize fills defaults for documents loaded from older or partial files:
// canvas size, empty collections, image position and non-negative grid
// coordinates.
func (d *Document) Normalize() {
	if d.CanvasWidth <= 0 {
		d.CanvasWidth = DefaultCanvasWidth
	}
	if d.CanvasHeight <= 0 {
		d.CanvasHeight = DefaultCanvasHeight
	}
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	for i := range d.Nodes {
		n := &d.Nodes[i]
		n.GridX = max(0, n.GridX)
		n.GridY = max(0, n.GridY)
		if n.ImagePosition == "" {
			n.ImagePosition = DefaultImagePosition
		}
	}
	for i := range d.Edges {
		if d.Edges[i].Waypoints == nil {
			d.Edges[i].Waypoints = []Point{}
		}
	}
	if d.Legend.Lines == nil {
		d.Legend.Lines = map[string]LineStyle{}
	}
	if d.Legend.Symbols == nil {
		d.Legend.Symbols = map[string]string{}
	}
	if d.Legend.StatusSymbols == nil {
		d.Legend.StatusSymbols = map[string]string{}
	}
	if d.Legend.Groups == nil {
		d.Legend.Groups = map[string]Group{}
	}
}

// NewDocument returns an empty normalized document with the default legend.
func NewDocument() Document {
	d := Document{
		Legend: Legend{
			Lines: map[string]LineStyle{
				"love":       {Color: "#ff1493", Style: "solid", Thickness: 3, Label: "Love"},
				"family":     {Color: "#ff0000", Style: "solid", Thickness: 2, Label: "Family"},
				"rivalry":    {Color: "#ff8c00", Style: "dashed", Thickness: 2, Label: "Rivalry"},
				"friendship": {Color: "#00ff00", Style: "solid", Thickness: 2, Label: "Friendship"},
				"mentor":     {Color: "#9370db", Style: "solid", Thickness: 2, Label: "Mentor/Student"},
			},
		},
	}
	d.Normalize()
	return d
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Nodes = CloneNodes(d.Nodes)
	out.Edges = CloneEdges(d.Edges)
	out.Legend.Lines = cloneMap(d.Legend.Lines)
	out.Legend.Symbols = cloneMap(d.Legend.Symbols)
	out.Legend.StatusSymbols = cloneMap(d.Legend.StatusSymbols)
	out.Legend.Groups = cloneMap(d.Legend.Groups)
	return out
}

// CloneNodes deep-copies a node list.
func CloneNodes(in []Node) []Node {
	if in == nil {
		return nil
	}
	out := make([]Node, len(in))
	for i, n := range in {
		n.Titles = append([]string(nil), n.Titles...)
		n.Nicknames = append([]string(nil), n.Nicknames...)
		n.Symbols = append([]string(nil), n.Symbols...)
		out[i] = n
	}
	return out
}

// CloneEdges deep-copies an edge list. Nil label slices stay nil.
func CloneEdges(in []Edge) []Edge {
	if in == nil {
		return nil
	}
	out := make([]Edge, len(in))
	for i, e := range in {
		e.Waypoints = append([]Point{}, e.Waypoints...)
		if e.Labels != nil {
			e.Labels = append([]Label{}, e.Labels...)
		}
		out[i] = e
	}
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
