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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"gocharmap/internal/auth"
	"gocharmap/internal/config"
	"gocharmap/internal/crash"
	"gocharmap/internal/domain"
	"gocharmap/internal/export"
	"gocharmap/internal/interact"
	applog "gocharmap/internal/log"
	"gocharmap/internal/storage"
)

const draftInterval = 30 * time.Second

// Run starts the desktop editor. Pass an optional document path to open
// immediately.
func Run(path string) error {
	cfg, token, err := config.Load()
	if err != nil {
		return err
	}
	applog.Init(cfg.LogOptions())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	hash, err := config.EditPasswordHash()
	if err != nil {
		l.Warn("read edit password failed", slog.Any("err", err))
	}
	ctl := NewController(cfg, token, auth.NewGate(hash))
	defer crash.RecoverFunc(ctl.Handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	draftPath := cfg.Storage.DraftDB
	if draftPath == "" {
		draftPath = storage.DefaultDraftsPath()
	}
	if d, err := storage.OpenDrafts(ctx, draftPath, cfg.Storage.DraftKey); err != nil {
		l.Warn("drafts unavailable", slog.Any("err", err))
	} else {
		ctl.AttachDrafts(d)
		defer func() { _ = d.Close() }()
	}

	fyneApp := app.NewWithID("gocharmap")
	w := fyneApp.NewWindow(ctl.Title())
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1200), 800)
	winH := max(prefs.IntWithFallback("window.height", 800), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	mapCanvas := NewMapCanvas(ctl)
	editBtn := widget.NewButton("Edit", nil)

	refresh := func() {
		w.SetTitle(ctl.Title())
		if ctl.Editing() {
			editBtn.SetText("View")
		} else {
			editBtn.SetText("Edit")
		}
		mapCanvas.Refresh()
	}
	ctl.OnChange(refresh)
	mapCanvas.OnChanged = func() { w.SetTitle(ctl.Title()) }

	report := func(action string, err error) {
		if err != nil {
			l.Error(action+" failed", slog.Any("err", err))
			status.SetText(fmt.Sprintf("%s failed: %v", action, err))
			dialog.ShowError(err, w)
			return
		}
		status.SetText(action + " done")
	}

	if strings.TrimSpace(path) != "" {
		report("Open", ctl.Open(path))
	}

	jsonFilter := fstorage.NewExtensionFileFilter([]string{".json"})
	openDoc := func() {
		d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			p := rc.URI().Path()
			_ = rc.Close()
			report("Open", ctl.Open(p))
			mapCanvas.ResetView()
		}, w)
		d.SetFilter(jsonFilter)
		d.Show()
	}
	saveAs := func() {
		d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			p := wc.URI().Path()
			_ = wc.Close()
			report("Save", ctl.SaveAs(p))
		}, w)
		d.SetFilter(jsonFilter)
		d.SetFileName("charactermap.json")
		d.Show()
	}
	save := func() {
		err := ctl.Save()
		if errors.Is(err, ErrNoPath) {
			saveAs()
			return
		}
		report("Save", err)
	}
	exportDoc := func() {
		d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			p := wc.URI().Path()
			_ = wc.Close()
			f, ferr := export.ParseFormat(strings.TrimPrefix(filepath.Ext(p), "."))
			if ferr != nil {
				report("Export", ferr)
				return
			}
			report("Export", ctl.Export(p, f, ctl.Editing()))
		}, w)
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".svg", ".png", ".pdf"}))
		d.SetFileName("charactermap.svg")
		d.Show()
	}
	toggleEdit := func() {
		if ctl.Editing() || !ctl.Protected() {
			_, err := ctl.ToggleEdit("")
			report("Edit mode", err)
			return
		}
		pw := widget.NewPasswordEntry()
		dialog.ShowForm("Enter edit mode", "Unlock", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Password", pw)},
			func(ok bool) {
				if !ok {
					return
				}
				_, err := ctl.ToggleEdit(pw.Text)
				report("Edit mode", err)
			}, w)
	}
	editBtn.OnTapped = toggleEdit

	// remote runs fn off the UI goroutine and hands its result back to done
	// on the UI goroutine.
	remote := func(action string, fn func(context.Context) error, done func()) {
		status.SetText(action + "...")
		go func() {
			rctx, rcancel := context.WithTimeout(ctx, cfg.PublishTimeout())
			defer rcancel()
			err := fn(rctx)
			fyne.Do(func() {
				if err == nil && done != nil {
					done()
				}
				report(action, err)
			})
		}()
	}
	publishDoc := func() {
		msg := widget.NewEntry()
		msg.SetPlaceHolder("Update character map")
		dialog.ShowForm("Publish", "Publish", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Message", msg)},
			func(ok bool) {
				if !ok {
					return
				}
				doc := ctl.Document()
				remote("Publish", func(c context.Context) error { return ctl.PublishDocument(c, doc, msg.Text) }, nil)
			}, w)
	}
	fetchDoc := func() {
		dialog.ShowConfirm("Fetch", "Replace the current map with the published one?", func(ok bool) {
			if !ok {
				return
			}
			var fetched domain.Document
			remote("Fetch", func(c context.Context) (err error) {
				fetched, err = ctl.FetchDocument(c)
				return err
			}, func() { ctl.Replace(fetched) })
		}, w)
	}
	restoreDraft := func() {
		d, err := ctl.RestoreLatestDraft(ctx)
		if err != nil {
			report("Restore draft", err)
			return
		}
		status.SetText(fmt.Sprintf("Restored draft from %s", d.TS.Format(time.DateTime)))
	}

	search := widget.NewEntry()
	search.SetPlaceHolder("Search characters")
	search.OnChanged = ctl.SetQuery

	toolbar := container.NewHBox(
		widget.NewButton("New", func() { ctl.New(); mapCanvas.ResetView() }),
		widget.NewButton("Open", openDoc),
		widget.NewButton("Save", save),
		widget.NewButton("Save As", saveAs),
		widget.NewButton("Export", exportDoc),
		widget.NewSeparator(),
		editBtn,
		widget.NewButton("Undo", func() { ctl.Editor().Undo() }),
		widget.NewButton("Redo", func() { ctl.Editor().Redo() }),
		widget.NewSeparator(),
		widget.NewButton("Restore Draft", restoreDraft),
		widget.NewButton("Publish", publishDoc),
		widget.NewButton("Fetch", fetchDoc),
	)
	top := container.NewBorder(nil, nil, toolbar, nil, search)
	w.SetContent(container.NewBorder(top, status, nil, nil, mapCanvas))

	key := func(name string, mods interact.Modifiers) {
		ctl.Editor().KeyDown(name, mods)
		refresh()
	}
	cmd := fyne.KeyModifierShortcutDefault
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			key("Escape", interact.Modifiers{})
		}
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyA, Modifier: cmd}, func(fyne.Shortcut) {
		key("a", interact.Modifiers{Ctrl: true})
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: cmd}, func(fyne.Shortcut) {
		key("z", interact.Modifiers{Ctrl: true})
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: cmd | fyne.KeyModifierShift}, func(fyne.Shortcut) {
		key("z", interact.Modifiers{Ctrl: true, Shift: true})
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: cmd}, func(fyne.Shortcut) { save() })

	ticker := time.NewTicker(draftInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fyne.Do(func() {
					if id, err := ctl.SaveDraft(ctx); err != nil {
						l.Warn("draft autosave failed", slog.Any("err", err))
					} else if id > 0 {
						l.Debug("draft saved", slog.Int64("id", id))
					}
				})
			}
		}
	}()

	w.SetCloseIntercept(func() {
		if _, err := ctl.SaveDraft(ctx); err != nil {
			l.Warn("final draft failed", slog.Any("err", err))
		}
		size := w.Canvas().Size()
		prefs.SetInt("window.width", int(size.Width))
		prefs.SetInt("window.height", int(size.Height))
		w.Close()
	})

	refresh()
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}
