/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gocharmap/internal/auth"
	"gocharmap/internal/config"
	"gocharmap/internal/crash"
	"gocharmap/internal/diagram"
	"gocharmap/internal/domain"
	"gocharmap/internal/export"
	applog "gocharmap/internal/log"
	"gocharmap/internal/storage"
	"gocharmap/internal/ui"
	"gocharmap/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "GoCharMap - character relationship maps")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gocharmap version|-v|--version                 Show version")
	fmt.Fprintln(w, "  gocharmap init <file> [<cols> <rows>]           Create an empty map document")
	fmt.Fprintln(w, "  gocharmap info <file>                           Print a document summary")
	fmt.Fprintln(w, "  gocharmap validate <file>                       Check a document against the schema")
	fmt.Fprintln(w, "  gocharmap export <svg|png|pdf> <file> <out>     Render a document")
	fmt.Fprintln(w, "        [--query <text>] [--hints <edge>] [--scale <f>]")
	fmt.Fprintln(w, "  gocharmap draft save|load|list|clear <file>     Manage local drafts")
	fmt.Fprintln(w, "  gocharmap publish <file> [<message>]            Upload to the configured target")
	fmt.Fprintln(w, "  gocharmap fetch <file>                          Download the published map into <file>")
	fmt.Fprintln(w, "  gocharmap password <new> [<current>]           Set the edit-mode password")
	fmt.Fprintln(w, "  gocharmap ui [<file>]                           Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// cli carries what every command needs.
type cli struct {
	cfg   config.AppConfig
	token string
	out   io.Writer
	log   *slog.Logger
	h     *storage.Handle
}

func run(args []string, out io.Writer) int {
	cfg, token, err := config.Load()
	if err != nil {
		fmt.Fprintln(out, "Config error:", err)
		return 1
	}
	applog.Init(cfg.LogOptions())
	c := &cli{cfg: cfg, token: token, out: out, log: applog.WithComponent("cli")}
	defer crash.RecoverFunc(func() *storage.Handle { return c.h })

	c.log.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(out)
		return 0
	}
	need := func(n int, what string) bool {
		if len(args) < n {
			fmt.Fprintf(out, "%s requires %s\n", args[0], what)
			usage(out)
			return false
		}
		return true
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(out, "GoCharMap")
		fmt.Fprintln(out, version.String())
		return 0
	case "init":
		if !need(2, "<file>") {
			return 2
		}
		return c.fail(c.initDoc(args[1], args[2:]))
	case "info":
		if !need(2, "<file>") {
			return 2
		}
		return c.fail(c.info(args[1]))
	case "validate":
		if !need(2, "<file>") {
			return 2
		}
		return c.fail(c.validate(args[1]))
	case "export":
		if !need(4, "<format> <file> <out>") {
			return 2
		}
		return c.fail(c.export(args[1], args[2], args[3], args[4:]))
	case "draft":
		if !need(3, "save|load|list|clear and <file>") {
			return 2
		}
		return c.fail(c.draft(args[1], args[2]))
	case "publish":
		if !need(2, "<file>") {
			return 2
		}
		msg := ""
		if len(args) > 2 {
			msg = strings.Join(args[2:], " ")
		}
		return c.fail(c.publish(args[1], msg))
	case "fetch":
		if !need(2, "<file>") {
			return 2
		}
		return c.fail(c.fetch(args[1]))
	case "password":
		if !need(2, "<new> [<current>]") {
			return 2
		}
		current := ""
		if len(args) > 2 {
			current = args[2]
		}
		return c.fail(c.password(args[1], current))
	case "ui":
		var path string
		if len(args) >= 2 {
			path = args[1]
		}
		return c.fail(ui.Run(path))
	}
	usage(out)
	return 2
}

func (c *cli) fail(err error) int {
	if err == nil {
		return 0
	}
	c.log.Error("command failed", slog.Any("err", err))
	fmt.Fprintln(c.out, "Error:", err)
	return 1
}

func (c *cli) open(path string) error {
	abs, _ := filepath.Abs(path)
	h, err := storage.Open(abs)
	if err != nil {
		return err
	}
	c.h = h
	return nil
}

func (c *cli) initDoc(path string, size []string) error {
	doc := domain.NewDocument()
	doc.CanvasWidth, doc.CanvasHeight = c.cfg.Canvas.Width, c.cfg.Canvas.Height
	if len(size) >= 2 {
		w, errW := strconv.Atoi(size[0])
		h, errH := strconv.Atoi(size[1])
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return fmt.Errorf("invalid canvas size %q x %q", size[0], size[1])
		}
		doc.CanvasWidth, doc.CanvasHeight = w, h
	}
	abs, _ := filepath.Abs(path)
	h, err := storage.Create(abs, doc)
	if err != nil {
		return err
	}
	c.h = h
	c.log.Info("init document", slog.String("path", abs))
	fmt.Fprintln(c.out, "Created map at", abs)
	return nil
}

func (c *cli) info(path string) error {
	if err := c.open(path); err != nil {
		return err
	}
	doc := c.h.Document
	dangling := 0
	for _, e := range doc.Edges {
		if _, ok := doc.NodeByID(e.From); !ok {
			dangling++
		} else if _, ok := doc.NodeByID(e.To); !ok {
			dangling++
		}
	}
	ext := diagram.Layout(doc, diagram.Options{Metrics: c.cfg.Metrics(), Labels: c.cfg.LabelMetrics()}).Bounds()
	fmt.Fprintf(c.out, "Map: %s\n", c.h.Path)
	fmt.Fprintf(c.out, "Canvas: %dx%d\n", doc.CanvasWidth, doc.CanvasHeight)
	fmt.Fprintf(c.out, "Extent: %gx%g px at (%g,%g)\n", ext.W, ext.H, ext.X, ext.Y)
	fmt.Fprintf(c.out, "Characters: %d\n", len(doc.Nodes))
	fmt.Fprintf(c.out, "Connections: %d\n", len(doc.Edges))
	if dangling > 0 {
		fmt.Fprintf(c.out, "Dangling connections: %d\n", dangling)
	}
	return nil
}

func (c *cli) validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := storage.ValidateJSON(data); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "OK")
	return nil
}

func (c *cli) export(format, path, out string, opts []string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	lo := diagram.Options{Metrics: c.cfg.Metrics(), Labels: c.cfg.LabelMetrics(), Hints: c.cfg.HintOptions()}
	eo := export.Options{Scale: 1}
	for i := 0; i < len(opts); i++ {
		if i+1 >= len(opts) {
			return fmt.Errorf("%s needs a value", opts[i])
		}
		switch opts[i] {
		case "--query":
			lo.Query = opts[i+1]
		case "--hints":
			lo.HintEdge = opts[i+1]
			eo.Hints = true
		case "--scale":
			s, err := strconv.ParseFloat(opts[i+1], 64)
			if err != nil || s <= 0 {
				return fmt.Errorf("invalid scale %q", opts[i+1])
			}
			eo.Scale = s
		default:
			return fmt.Errorf("unknown option %q", opts[i])
		}
		i++
	}
	if err := c.open(path); err != nil {
		return err
	}
	eo.Title = strings.TrimSuffix(filepath.Base(c.h.Path), filepath.Ext(c.h.Path))
	if err := export.ToFile(out, f, diagram.Layout(c.h.Document, lo), eo); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Exported", out)
	return nil
}

func (c *cli) controller(path string) (*ui.Controller, error) {
	ctl := ui.NewController(c.cfg, c.token, nil)
	if err := ctl.Open(path); err != nil {
		return nil, err
	}
	c.h = ctl.Handle()
	return ctl, nil
}

func (c *cli) draft(action, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	dbPath := c.cfg.Storage.DraftDB
	if dbPath == "" {
		dbPath = storage.DefaultDraftsPath()
	}
	d, err := storage.OpenDrafts(ctx, dbPath, c.cfg.Storage.DraftKey)
	if err != nil {
		return err
	}
	defer d.Close()

	switch action {
	case "save":
		ctl, err := c.controller(path)
		if err != nil {
			return err
		}
		id, err := d.SaveDraft(ctx, ctl.Document())
		if err != nil {
			return err
		}
		if keep := c.cfg.Storage.KeepDrafts; keep > 0 {
			if _, err := d.PruneDrafts(ctx, keep); err != nil {
				c.log.Warn("prune drafts failed", slog.Any("err", err))
			}
		}
		fmt.Fprintf(c.out, "Saved draft %d\n", id)
	case "restore", "load":
		ctl, err := c.controller(path)
		if err != nil {
			return err
		}
		ctl.AttachDrafts(d)
		dr, err := ctl.RestoreLatestDraft(ctx)
		if err != nil {
			return err
		}
		if err := ctl.Save(); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Restored draft %d from %s\n", dr.ID, dr.TS.Local().Format(time.RFC3339))
	case "list":
		list, err := d.ListDrafts(ctx, 20)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintf(c.out, "No drafts for %s\n", d.Key())
		}
		for _, di := range list {
			fmt.Fprintf(c.out, "%d\t%s\t%d bytes\n", di.ID, di.TS.Local().Format(time.RFC3339), di.Size)
		}
	case "clear":
		if err := d.ClearDrafts(ctx); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Cleared drafts for %s\n", d.Key())
	default:
		return fmt.Errorf("unknown draft action %q", action)
	}
	return nil
}

func (c *cli) password(next, current string) error {
	hash, err := config.EditPasswordHash()
	if err != nil {
		return err
	}
	ctl := ui.NewController(c.cfg, c.token, auth.NewGate(hash))
	if err := ctl.ChangePassword(current, next); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Edit password updated")
	return nil
}

func (c *cli) publish(path, message string) error {
	ctl, err := c.controller(path)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.PublishTimeout())
	defer cancel()
	if err := ctl.Publish(ctx, message); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Published", ctl.Path())
	return nil
}

func (c *cli) fetch(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.PublishTimeout())
	defer cancel()
	ctl := ui.NewController(c.cfg, c.token, nil)
	if err := ctl.Open(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := ctl.Fetch(ctx); err != nil {
		return err
	}
	if ctl.Path() == "" {
		abs, _ := filepath.Abs(path)
		if err := ctl.SaveAs(abs); err != nil {
			return err
		}
	} else if err := ctl.Save(); err != nil {
		return err
	}
	c.h = ctl.Handle()
	fmt.Fprintln(c.out, "Fetched into", ctl.Path())
	return nil
}
