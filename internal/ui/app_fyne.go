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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"drawover/internal/bridge"
	"drawover/internal/compose"
	"drawover/internal/config"
	"drawover/internal/crash"
	"drawover/internal/export"
	"drawover/internal/history"
	applog "drawover/internal/log"
	"drawover/internal/render"
	"drawover/internal/scene"
	"drawover/internal/storage"
	"drawover/internal/telemetry"
)

// Run starts the Fyne-based desktop drawing UI.
func Run(projectDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	cfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	fyneApp := app.NewWithID("drawover")
	w := fyneApp.NewWindow("Drawover")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1400)
	winH := prefs.IntWithFallback("window.height", 900)
	if winW < 900 {
		winW = 900
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	store := scene.NewStore()
	renderer := render.NewRenderer(cfg.Canvas.SelectionAccent)
	comp := compose.New(cfg.Canvas.Width, cfg.Canvas.Height, renderer)
	hist := history.NewManager(history.Config{})
	br := bridge.New(store, comp, hist)

	tool := bridge.DefaultTool()
	tool.Color = cfg.Canvas.BrushColor
	tool.BrushSize = float64(cfg.Canvas.BrushSize)
	br.SetTool(tool)

	status := widget.NewLabel("Ready")
	surface := newDrawSurface(br, status)

	if strings.TrimSpace(projectDir) != "" {
		abs, _ := filepath.Abs(projectDir)
		h, oerr := storage.Open(abs)
		if oerr != nil {
			l.Error("open project failed", slog.Any("err", oerr))
			return fmt.Errorf("open project: %w", oerr)
		}
		ph = h
		if lerr := store.LoadDocument(h.Doc); lerr != nil {
			l.Error("load scene failed", slog.Any("err", lerr))
			return fmt.Errorf("load scene: %w", lerr)
		}
		br.Refresh()
		// every recorded history snapshot also lands in the project's
		// sqlite index, pruned to the newest 50
		br.SetSnapshotSink(func(blob []byte, ts time.Time) {
			ctx := context.Background()
			if serr := storage.SaveSnapshot(ctx, ph, blob, ts); serr != nil {
				l.Warn("snapshot index write failed", slog.Any("err", serr))
				return
			}
			if perr := storage.PruneSnapshots(ctx, ph, 50); perr != nil {
				l.Warn("snapshot index prune failed", slog.Any("err", perr))
			}
		})
		status.SetText("Opened " + abs)
	}

	setTool := func(t bridge.Tool, label string) {
		br.SetTool(t)
		status.SetText("Tool: " + label)
	}

	colorEntry := widget.NewEntry()
	colorEntry.SetText(cfg.Canvas.BrushColor)
	colorEntry.OnSubmitted = func(s string) {
		t := br.Tool()
		t.Color = strings.TrimSpace(s)
		t.Fill = t.Color
		br.SetTool(t)
		status.SetText("Color: " + t.Color)
	}

	sizeSlider := widget.NewSlider(1, 64)
	sizeSlider.Value = float64(cfg.Canvas.BrushSize)
	sizeSlider.OnChanged = func(v float64) {
		t := br.Tool()
		t.BrushSize = v
		br.SetTool(t)
	}

	doUndo := func() {
		if br.Undo() {
			surface.Refresh()
			status.SetText("Undo")
		} else if br.CreationProtected() {
			status.SetText("Undo blocked: still drawing")
		}
	}
	doRedo := func() {
		if br.Redo() {
			surface.Refresh()
			status.SetText("Redo")
		}
	}
	doDelete := func() {
		if n := br.DeleteSelected(); n > 0 {
			surface.Refresh()
			status.SetText(fmt.Sprintf("Deleted %d object(s)", n))
		}
	}

	toolButtons := container.NewHBox(
		widget.NewButton("Select", func() {
			setTool(bridge.Tool{Category: "select", Color: br.Tool().Color, BrushSize: br.Tool().BrushSize, Opacity: 1}, "select")
		}),
		widget.NewButton("Pen", func() {
			setTool(bridge.Tool{Category: "brush", Brush: "pen", Color: br.Tool().Color, BrushSize: br.Tool().BrushSize, Opacity: 1}, "pen")
		}),
		widget.NewButton("Eraser", func() {
			setTool(bridge.Tool{Category: "brush", Brush: "eraser", Color: br.Tool().Color, BrushSize: br.Tool().BrushSize, Opacity: 1}, "eraser")
		}),
		widget.NewButton("Rect", func() {
			setTool(bridge.Tool{Category: "shape", Shape: "rectangle", Color: br.Tool().Color, BrushSize: br.Tool().BrushSize, Opacity: 1}, "rectangle")
		}),
		widget.NewButton("Square", func() {
			setTool(bridge.Tool{Category: "shape", Shape: "square", Color: br.Tool().Color, BrushSize: br.Tool().BrushSize, Opacity: 1}, "square")
		}),
		widget.NewButton("Circle", func() {
			setTool(bridge.Tool{Category: "shape", Shape: "circle", Color: br.Tool().Color, BrushSize: br.Tool().BrushSize, Opacity: 1}, "circle")
		}),
		widget.NewButton("Line", func() {
			setTool(bridge.Tool{Category: "shape", Shape: "line", Color: br.Tool().Color, BrushSize: br.Tool().BrushSize, Opacity: 1}, "line")
		}),
		widget.NewButton("Text", func() {
			setTool(bridge.Tool{Category: "text", Color: br.Tool().Color, Font: "16px Inter", Opacity: 1}, "text")
		}),
	)

	editButtons := container.NewHBox(
		widget.NewButton("Undo", doUndo),
		widget.NewButton("Redo", doRedo),
		widget.NewButton("Delete", doDelete),
		widget.NewButton("Group", func() {
			if _, ok := br.GroupSelection(""); ok {
				surface.Refresh()
				status.SetText("Grouped selection")
			} else {
				status.SetText("Need at least 2 selected objects to group")
			}
		}),
		widget.NewButton("Ungroup", func() {
			br.UngroupSelection()
			surface.Refresh()
			status.SetText("Ungrouped")
		}),
		widget.NewButton("Clear", func() {
			dialog.ShowConfirm("Clear canvas", "Remove all objects?", func(ok bool) {
				if !ok {
					return
				}
				br.ClearAll()
				surface.Refresh()
				status.SetText("Canvas cleared")
			}, w)
		}),
	)

	fileButtons := container.NewHBox(
		widget.NewButton("Save", func() {
			if ph == nil {
				status.SetText("No project open")
				return
			}
			ph.Doc = store.Document(filepath.Base(ph.Root))
			if serr := storage.Save(ph); serr != nil {
				dialog.ShowError(serr, w)
				return
			}
			status.SetText("Saved " + ph.ManifestPath)
		}),
		widget.NewButton("Export PNG", func() {
			dir := os.TempDir()
			if ph != nil {
				dir = filepath.Join(ph.Root, "exports")
			}
			path := filepath.Join(dir, fmt.Sprintf("drawover-%s.png", time.Now().Format("20060102-150405")))
			if eerr := export.WritePNG(br.ExportImage(), path); eerr != nil {
				dialog.ShowError(eerr, w)
				return
			}
			telemetry.Event("export_png", nil)
			status.SetText("Exported " + path)
		}),
		widget.NewButton("Export PDF", func() {
			dir := os.TempDir()
			if ph != nil {
				dir = filepath.Join(ph.Root, "exports")
			}
			path := filepath.Join(dir, fmt.Sprintf("drawover-%s.pdf", time.Now().Format("20060102-150405")))
			if eerr := export.WritePDF(br.ExportImage(), path, export.PDFOptions{Title: "Drawover frame"}); eerr != nil {
				dialog.ShowError(eerr, w)
				return
			}
			telemetry.Event("export_pdf", nil)
			status.SetText("Exported " + path)
		}),
	)

	// keyboard shortcuts
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { doUndo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { doRedo() })
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			doDelete()
		case fyne.KeyEscape:
			br.ClearSelection()
			surface.Refresh()
		}
	})

	// Text tool input: the surface asks for the string on tap
	surface.onTextAt = func(x, y float64) {
		entry := widget.NewEntry()
		form := dialog.NewForm("Add Text", "Add", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Text", entry),
		}, func(ok bool) {
			if !ok || strings.TrimSpace(entry.Text) == "" {
				return
			}
			br.CreateText(entry.Text, scene.Point{X: x, Y: y})
			surface.Refresh()
			status.SetText("Text added")
		}, w)
		form.Show()
	}

	top := container.NewVBox(
		container.NewHBox(toolButtons, widget.NewSeparator(), editButtons, widget.NewSeparator(), fileButtons),
		container.NewBorder(nil, nil, widget.NewLabel("Color"), nil, container.NewGridWithColumns(2, colorEntry, sizeSlider)),
	)
	w.SetContent(container.NewBorder(top, status, nil, nil, container.NewScroll(surface)))

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	telemetry.Event("ui_start", nil)
	w.ShowAndRun()
	return nil
}

// surfaceMode tracks what the active pointer gesture is doing.
type surfaceMode int

const (
	modeIdle surfaceMode = iota
	modeDraw
	modeShape
	modeMove
)

// drawSurface shows the composited canvas and routes pointer gestures into
// the interaction bridge.
type drawSurface struct {
	widget.BaseWidget
	br     *bridge.Bridge
	status *widget.Label

	mode       surfaceMode
	points     []scene.Point
	shapeStart scene.Point
	shapeCur   scene.Point

	onTextAt func(x, y float64)
}

func newDrawSurface(br *bridge.Bridge, status *widget.Label) *drawSurface {
	s := &drawSurface{br: br, status: status}
	s.ExtendBaseWidget(s)
	return s
}

// Refresh repaints the compositor layers before redrawing the widget, so the
// rasters always show the current scene.
func (s *drawSurface) Refresh() {
	s.br.Refresh()
	s.BaseWidget.Refresh()
}

// CreateRenderer stacks the compositor's two layers as rasters.
func (s *drawSurface) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRasterFromImage(s.br.Background())
	fg := canvas.NewRasterFromImage(s.br.Foreground())
	bg.ScaleMode = canvas.ImageScalePixels
	fg.ScaleMode = canvas.ImageScalePixels
	return &drawSurfaceRenderer{s: s, bg: bg, fg: fg}
}

func (s *drawSurface) MinSize() fyne.Size {
	w, h := s.br.CanvasSize()
	return fyne.NewSize(float32(w), float32(h))
}

func (s *drawSurface) Tapped(e *fyne.PointEvent) {
	x, y := float64(e.Position.X), float64(e.Position.Y)
	t := s.br.Tool()
	switch t.Category {
	case "text":
		if s.onTextAt != nil {
			s.onTextAt(x, y)
		}
	case "select":
		if s.br.SelectAt(x, y, false) {
			s.status.SetText(fmt.Sprintf("Selected %d object(s)", s.br.SelectionCount()))
		} else {
			s.status.SetText("Selection cleared")
		}
		s.Refresh()
	}
}

func (s *drawSurface) Dragged(e *fyne.DragEvent) {
	cur := scene.Point{X: float64(e.Position.X), Y: float64(e.Position.Y)}
	if s.mode == modeIdle {
		start := scene.Point{X: cur.X - float64(e.Dragged.DX), Y: cur.Y - float64(e.Dragged.DY)}
		switch s.br.Tool().Category {
		case "brush":
			s.mode = modeDraw
			s.points = append(s.points[:0], start)
			s.br.DrawingStart()
		case "shape":
			s.mode = modeShape
			s.shapeStart = start
		case "select":
			if s.br.MoveStart(start.X, start.Y) {
				s.mode = modeMove
			}
		}
	}
	switch s.mode {
	case modeDraw:
		s.points = append(s.points, cur)
	case modeShape:
		s.shapeCur = cur
	case modeMove:
		s.br.MoveUpdate(cur.X, cur.Y)
		s.Refresh()
	}
}

func (s *drawSurface) DragEnd() {
	switch s.mode {
	case modeDraw:
		s.br.DrawingEnd()
		if _, ok := s.br.CreateStroke(s.points); ok {
			s.status.SetText("Stroke added")
		}
		s.points = s.points[:0]
	case modeShape:
		x, y := s.shapeStart.X, s.shapeStart.Y
		w, h := s.shapeCur.X-x, s.shapeCur.Y-y
		if w < 0 {
			x, w = x+w, -w
		}
		if h < 0 {
			y, h = y+h, -h
		}
		if w >= 1 && h >= 1 {
			s.br.CreateShape(scene.R(x, y, w, h))
			s.status.SetText("Shape added")
		}
	case modeMove:
		if s.br.MoveEnd() {
			s.status.SetText("Moved selection")
		}
	}
	s.mode = modeIdle
	s.Refresh()
}

type drawSurfaceRenderer struct {
	s      *drawSurface
	bg, fg *canvas.Raster
}

func (r *drawSurfaceRenderer) Destroy()                     {}
func (r *drawSurfaceRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.bg, r.fg} }
func (r *drawSurfaceRenderer) MinSize() fyne.Size           { return r.s.MinSize() }

func (r *drawSurfaceRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.fg.Resize(size)
	r.fg.Move(fyne.NewPos(0, 0))
}

func (r *drawSurfaceRenderer) Refresh() {
	r.bg.Refresh()
	r.fg.Refresh()
}
