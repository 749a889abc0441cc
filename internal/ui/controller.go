/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"gocharmap/internal/auth"
	"gocharmap/internal/config"
	"gocharmap/internal/diagram"
	"gocharmap/internal/domain"
	"gocharmap/internal/export"
	"gocharmap/internal/interact"
	applog "gocharmap/internal/log"
	"gocharmap/internal/publish"
	"gocharmap/internal/storage"
	"gocharmap/internal/undo"
	"gocharmap/internal/vector"
)

// ErrNoPath is returned by Save when the document was never saved to a file.
var ErrNoPath = errors.New("document has no file yet")

// Controller owns the open document and the services around the canvas:
// file handle, drafts, publish target and the edit-mode gate. It has no
// toolkit dependency so the window code stays thin.
type Controller struct {
	cfg   config.AppConfig
	token string
	gate  *auth.Gate
	log   *slog.Logger

	store   *storage.MemoryStore
	editor  *interact.Editor
	history *undo.Manager
	path    string
	drafts  *storage.Drafts

	query        string
	dirty        bool
	draftPending bool
	onChange     func()
}

// NewController starts with an empty document. A nil gate means edit mode
// is not password protected.
func NewController(cfg config.AppConfig, token string, gate *auth.Gate) *Controller {
	if gate == nil {
		gate = auth.NewGate("")
	}
	c := &Controller{cfg: cfg, token: token, gate: gate, log: applog.WithComponent("ui")}
	doc := domain.NewDocument()
	doc.CanvasWidth, doc.CanvasHeight = cfg.Canvas.Width, cfg.Canvas.Height
	c.load(doc, "")
	return c
}

func (c *Controller) load(doc domain.Document, path string) {
	c.store = storage.NewMemoryStore(doc)
	opts := c.cfg.EditorOptions()
	opts.CanvasWidth, opts.CanvasHeight = c.store.Document().CanvasWidth, c.store.Document().CanvasHeight
	c.editor = interact.NewEditor(c.store, opts)
	if c.history == nil {
		c.history = undo.NewManager(c.cfg.UndoConfig())
	} else {
		c.history.ClearScope(interact.UndoScope)
	}
	c.editor.SetHistory(c.history)
	c.editor.SetEditing(c.gate.Editing())
	c.path = path
	c.dirty = false
	c.store.OnChange(func() {
		c.dirty = true
		c.draftPending = true
		c.changed()
	})
	c.changed()
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// OnChange registers fn to run after any document or view change.
func (c *Controller) OnChange(fn func()) { c.onChange = fn }

func (c *Controller) Editor() *interact.Editor  { return c.editor }
func (c *Controller) Document() domain.Document { return c.store.Document() }
func (c *Controller) Path() string              { return c.path }
func (c *Controller) Dirty() bool               { return c.dirty }
func (c *Controller) Editing() bool             { return c.editor.Editing() }
func (c *Controller) Protected() bool           { return c.gate.Protected() }
func (c *Controller) Config() config.AppConfig  { return c.cfg }
func (c *Controller) History() *undo.Manager    { return c.history }
func (c *Controller) Drafts() *storage.Drafts   { return c.drafts }

func (c *Controller) AttachDrafts(d *storage.Drafts) { c.drafts = d }

// Handle returns a storage handle for the current document, for crash
// snapshots. It is nil when the document has no file.
func (c *Controller) Handle() *storage.Handle {
	if c.path == "" {
		return nil
	}
	return &storage.Handle{Path: c.path, Document: c.store.Document()}
}

// Title is the window title, with a marker for unsaved changes.
func (c *Controller) Title() string {
	name := "Untitled"
	if c.path != "" {
		name = filepath.Base(c.path)
	}
	if c.dirty {
		name += " *"
	}
	return "GoCharMap - " + name
}

func (c *Controller) Query() string { return c.query }

// SetQuery sets the search text that highlights matching tiles.
func (c *Controller) SetQuery(q string) {
	c.query = strings.TrimSpace(q)
	c.changed()
}

// Scene lays out the document for drawing.
func (c *Controller) Scene() diagram.Scene { return c.editor.Scene(c.query) }

// ToggleEdit flips edit mode through the gate. Entering edit mode may need
// the password; leaving it never does.
func (c *Controller) ToggleEdit(password string) (bool, error) {
	on, err := c.gate.Toggle(password)
	if err != nil {
		c.log.Warn("edit mode refused", slog.Any("err", err))
		return false, err
	}
	c.editor.SetEditing(on)
	c.log.Info("edit mode", slog.Bool("editing", on))
	c.changed()
	return on, nil
}

// ChangePassword replaces the edit password after checking the current one
// and stores the new hash in the keyring.
func (c *Controller) ChangePassword(current, next string) error {
	if strings.TrimSpace(next) == "" {
		return errors.New("edit password must not be empty")
	}
	h, err := c.gate.SetPassword(current, next)
	if err != nil {
		return err
	}
	return config.SaveEditPasswordHash(h)
}

// New replaces the document with an empty one.
func (c *Controller) New() {
	doc := domain.NewDocument()
	doc.CanvasWidth, doc.CanvasHeight = c.cfg.Canvas.Width, c.cfg.Canvas.Height
	c.load(doc, "")
}

// Open loads a document file.
func (c *Controller) Open(path string) error {
	h, err := storage.Open(path)
	if err != nil {
		return err
	}
	c.load(h.Document, h.Path)
	c.log.Info("document opened", slog.String("path", path))
	return nil
}

// Save writes the document to its file.
func (c *Controller) Save() error {
	if c.path == "" {
		return ErrNoPath
	}
	h := &storage.Handle{Path: c.path, Document: c.store.Document()}
	if err := storage.Save(h); err != nil {
		return err
	}
	size, _, steps := c.history.Stats()
	c.log.Debug("document saved", slog.String("path", c.path), slog.Int("undo_bytes", size), slog.Int("undo_steps", steps))
	c.dirty = false
	c.changed()
	return nil
}

// SaveAs writes the document to path and keeps using that file.
func (c *Controller) SaveAs(path string) error {
	h := &storage.Handle{Path: c.path, Document: c.store.Document()}
	if err := storage.SaveAs(h, path); err != nil {
		return err
	}
	c.path = h.Path
	c.dirty = false
	c.changed()
	return nil
}

// Export renders the current view (search highlight included) to path.
func (c *Controller) Export(path string, f export.Format, hints bool) error {
	return export.ToFile(path, f, c.Scene(), export.Options{Hints: hints, Title: c.Title()})
}

// SaveDraft stores the document in the drafts database if it changed since
// the last draft. It returns 0 when nothing was written.
func (c *Controller) SaveDraft(ctx context.Context) (int64, error) {
	if c.drafts == nil || !c.draftPending {
		return 0, nil
	}
	id, err := c.drafts.SaveDraft(ctx, c.store.Document())
	if err != nil {
		return 0, err
	}
	c.draftPending = false
	if keep := c.cfg.Storage.KeepDrafts; keep > 0 {
		if _, err := c.drafts.PruneDrafts(ctx, keep); err != nil {
			c.log.Warn("prune drafts failed", slog.Any("err", err))
		}
	}
	return id, nil
}

// RestoreLatestDraft replaces the document with the newest draft. The file
// path is kept, so saving writes the restored content back.
func (c *Controller) RestoreLatestDraft(ctx context.Context) (storage.Draft, error) {
	if c.drafts == nil {
		return storage.Draft{}, storage.ErrNoDraft
	}
	d, err := c.drafts.LatestDraft(ctx)
	if err != nil {
		return storage.Draft{}, err
	}
	c.Replace(d.Document)
	return d, nil
}

// Publish uploads the document to the configured target.
func (c *Controller) Publish(ctx context.Context, message string) error {
	return c.PublishDocument(ctx, c.store.Document(), message)
}

// PublishDocument uploads doc. It only reads immutable settings, so it may
// run off the UI goroutine.
func (c *Controller) PublishDocument(ctx context.Context, doc domain.Document, message string) error {
	p, closeFn, err := c.cfg.OpenPublisher(ctx, c.token)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	if strings.TrimSpace(message) == "" {
		message = publish.DefaultMessage
	}
	if err := p.Publish(ctx, doc, message); err != nil {
		return err
	}
	c.log.InfoContext(applog.WithDocument(ctx, c.path), "document published", slog.String("provider", c.cfg.Publish.Provider))
	return nil
}

// Fetch replaces the document with the published one.
func (c *Controller) Fetch(ctx context.Context) error {
	doc, err := c.FetchDocument(ctx)
	if err != nil {
		return err
	}
	c.Replace(doc)
	return nil
}

// FetchDocument downloads the published document without applying it. Like
// PublishDocument it may run off the UI goroutine.
func (c *Controller) FetchDocument(ctx context.Context) (domain.Document, error) {
	p, closeFn, err := c.cfg.OpenPublisher(ctx, c.token)
	if err != nil {
		return domain.Document{}, err
	}
	defer func() { _ = closeFn() }()
	doc, err := p.Fetch(ctx)
	if err != nil {
		return domain.Document{}, fmt.Errorf("fetch: %w", err)
	}
	return doc, nil
}

// Replace swaps in doc as unsaved changes to the current file.
func (c *Controller) Replace(doc domain.Document) {
	c.load(doc, c.path)
	c.dirty = true
	c.draftPending = true
	c.changed()
}

// Viewport maps screen positions inside the canvas widget to canvas pixels.
type Viewport struct {
	Zoom             float64
	OffsetX, OffsetY float64
}

const (
	minZoom = 0.1
	maxZoom = 4.0
)

func NewViewport() Viewport { return Viewport{Zoom: 1} }

// Transform maps canvas pixels to screen pixels.
func (v Viewport) Transform() vector.Affine2D {
	return vector.Translate(v.OffsetX, v.OffsetY).Mul(vector.Scale(v.Zoom, v.Zoom))
}

func (v Viewport) ToCanvas(x, y float64) vector.Pt {
	return v.Transform().Invert().Apply(vector.Pt{X: x, Y: y})
}

func (v Viewport) ToScreen(p vector.Pt) (x, y float64) {
	s := v.Transform().Apply(p)
	return s.X, s.Y
}

// ZoomAt scales by factor keeping the canvas point under (x, y) fixed.
func (v *Viewport) ZoomAt(x, y, factor float64) {
	anchor := v.ToCanvas(x, y)
	v.Zoom = vector.Clamp(v.Zoom*factor, minZoom, maxZoom)
	v.OffsetX = x - anchor.X*v.Zoom
	v.OffsetY = y - anchor.Y*v.Zoom
}

func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// DashSegments splits a polyline into the visible pieces of an on/off dash
// pattern measured along its length. An empty pattern returns the
// segments unchanged.
func DashSegments(pts []vector.Pt, dash []float64) []vector.Segment {
	var out []vector.Segment
	var period float64
	for _, d := range dash {
		period += d
	}
	if len(dash) == 0 || period <= 0 {
		for i := 1; i < len(pts); i++ {
			out = append(out, vector.Seg(pts[i-1], pts[i]))
		}
		return out
	}
	idx, left := 0, dash[0]
	for i := 1; i < len(pts); i++ {
		s := vector.Seg(pts[i-1], pts[i])
		length := s.Len()
		pos := 0.0
		for pos < length {
			step := math.Min(left, length-pos)
			if idx%2 == 0 && step > 0 {
				out = append(out, vector.Seg(s.At(pos/length), s.At((pos+step)/length)))
			}
			pos += step
			left -= step
			if left <= 0 {
				idx = (idx + 1) % len(dash)
				left = dash[idx]
			}
		}
	}
	return out
}
