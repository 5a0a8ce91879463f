/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bridge is the single entry point the host UI talks to. It owns the
// active tool, routes pointer gestures into the scene store and the drag
// controller, emits history snapshots at gesture boundaries, and guards
// freshly created objects against being clobbered by a racing host refresh.
package bridge

import (
	"image"
	"log/slog"
	"math"
	"time"

	"drawover/internal/compose"
	"drawover/internal/history"
	applog "drawover/internal/log"
	"drawover/internal/scene"
)

// Protection windows opened around object creation. A host-driven scene
// reload that arrives while either window is open must be ignored, otherwise
// it wipes the object the user just drew.
const (
	protectAfterDraw   = 150 * time.Millisecond
	protectAfterCreate = 300 * time.Millisecond
)

// Tool describes the active tool as resolved by the host toolbar.
type Tool struct {
	Category  string // "select" | "brush" | "shape" | "text"
	Brush     string // "pen" | "eraser", for Category "brush"
	Shape     string // "rectangle" | "square" | "circle" | "line", for Category "shape"
	Cursor    string
	Color     string
	Fill      string
	BrushSize float64
	Opacity   float64
	Font      string
}

// DefaultTool is the brush the surface starts with.
func DefaultTool() Tool {
	return Tool{Category: "brush", Brush: "pen", Color: "#df4b26", BrushSize: 5, Opacity: 1, Font: "16px sans-serif"}
}

// Bridge mediates between the host UI and the scene.
type Bridge struct {
	log   *slog.Logger
	store *scene.Store
	drag  *scene.DragController
	comp  *compose.Compositor
	hist  *history.Manager
	guard *Guard
	tool  Tool
	sink  SnapshotSink
}

func New(store *scene.Store, comp *compose.Compositor, hist *history.Manager) *Bridge {
	b := &Bridge{
		log:   applog.WithComponent("bridge"),
		store: store,
		drag:  scene.NewDragController(store),
		comp:  comp,
		hist:  hist,
		guard: &Guard{},
		tool:  DefaultTool(),
	}
	// baseline state so the first undo has somewhere to land
	b.recordSnapshot()
	return b
}

// SetTool switches the active tool. Switching away from select keeps the
// current selection; the next non-select gesture clears it.
func (b *Bridge) SetTool(t Tool) { b.tool = t }

// Tool returns the active tool.
func (b *Bridge) Tool() Tool { return b.tool }

// CreationProtected reports whether a protection window is open. The host
// checks this before replacing the scene from its own state.
func (b *Bridge) CreationProtected() bool { return b.guard.Active() }

// DrawingStart marks a continuous gesture in progress and opens a short
// protection window.
func (b *Bridge) DrawingStart() {
	b.store.SetDrawing(true)
	b.guard.Hold(protectAfterDraw)
}

// DrawingEnd clears the gesture flag.
func (b *Bridge) DrawingEnd() { b.store.SetDrawing(false) }

// CreateStroke commits a finished freehand gesture. The eraser brush maps to
// a destination-out stroke. Returns ok=false for an empty point list.
func (b *Bridge) CreateStroke(points []scene.Point) (string, bool) {
	st := scene.StrokeStyle{
		Color:   b.tool.Color,
		Width:   b.tool.BrushSize,
		Opacity: b.tool.Opacity,
		Tool:    b.tool.Brush,
		Cap:     "round",
		Join:    "round",
	}
	if b.tool.Brush == "eraser" {
		st.Composite = "destination-out"
	}
	id, ok := b.store.AddStroke(points, st)
	if ok {
		b.afterCreate()
	}
	return id, ok
}

// CreateShape commits a shape into bounds. The square tool is normalized to
// a rectangle with both sides equal to the smaller drawn dimension; the
// store never sees a "square" kind.
func (b *Bridge) CreateShape(bounds scene.Rect) string {
	kind := scene.ShapeKind(b.tool.Shape)
	if b.tool.Shape == "square" {
		side := math.Min(bounds.Width, bounds.Height)
		bounds.Width, bounds.Height = side, side
		kind = scene.ShapeRectangle
	}
	id := b.store.AddShape(kind, bounds, scene.ShapeStyle{
		Stroke:  b.tool.Color,
		Fill:    b.tool.Fill,
		Width:   b.tool.BrushSize,
		Opacity: b.tool.Opacity,
	})
	b.afterCreate()
	return id
}

// CreateText commits a text object at pos.
func (b *Bridge) CreateText(text string, pos scene.Point) string {
	id := b.store.AddText(text, pos, scene.TextStyle{
		Font:    b.tool.Font,
		Fill:    b.tool.Color,
		Opacity: b.tool.Opacity,
	})
	b.afterCreate()
	return id
}

// CreateImage commits an image object; decoding runs in the background and
// the renderer skips the object until the pixels are ready.
func (b *Bridge) CreateImage(data []byte, bounds scene.Rect, rotation float64) string {
	id := b.store.AddImage(scene.ImageInput{
		Handle:   scene.NewImageHandle(data),
		Source:   data,
		Bounds:   bounds,
		Rotation: rotation,
	})
	b.afterCreate()
	return id
}

// SelectAt hit-tests (x, y) and selects the topmost object found. A miss
// clears the selection unless additive. Reports whether anything was hit.
func (b *Bridge) SelectAt(x, y float64, additive bool) bool {
	hit := b.store.ObjectAt(x, y)
	if hit == nil {
		if !additive {
			b.store.SelectObjects(nil, false)
		}
		return false
	}
	b.store.SelectObjects([]string{hit.Base().ID}, additive)
	return true
}

// ClearSelection empties the selection.
func (b *Bridge) ClearSelection() { b.store.SelectObjects(nil, false) }

// MoveStart begins dragging the current selection.
func (b *Bridge) MoveStart(x, y float64) bool { return b.drag.Start(x, y) }

// MoveUpdate advances the drag.
func (b *Bridge) MoveUpdate(x, y float64) { b.drag.Update(x, y) }

// MoveEnd finishes the drag. A snapshot is recorded only when the drag
// actually moved something; a click that never crossed the jitter threshold
// leaves history untouched.
func (b *Bridge) MoveEnd() bool {
	moved := b.drag.End()
	if moved {
		b.recordSnapshot()
	}
	return moved
}

// DeleteSelected removes the selected objects.
func (b *Bridge) DeleteSelected() int {
	n := b.store.DeleteSelected()
	if n > 0 {
		b.recordSnapshot()
	}
	return n
}

// GroupSelection groups the current selection.
func (b *Bridge) GroupSelection(name string) (string, bool) {
	return b.store.CreateGroup(name)
}

// UngroupSelection dissolves every group the selection touches.
func (b *Bridge) UngroupSelection() {
	seen := map[string]bool{}
	for _, o := range b.store.SelectedObjects() {
		gid := o.Base().GroupID
		if gid != "" && !seen[gid] {
			seen[gid] = true
			b.store.Ungroup(gid)
		}
	}
}

// ClearAll wipes the scene, returns the drag controller to idle, and records
// the empty state. A clear issued mid-drag must not leave a drag in progress.
func (b *Bridge) ClearAll() {
	b.drag.End()
	b.store.ClearAll()
	b.recordSnapshot()
}

// Undo restores the previous scene state. Refused while a creation
// protection window is open so a stale host event cannot revert an object
// the user just drew.
func (b *Bridge) Undo() bool {
	if b.guard.Active() {
		b.log.Debug("undo refused during protection window")
		return false
	}
	s, ok := b.hist.Undo()
	if !ok {
		return false
	}
	return b.restore(s.Blob)
}

// Redo re-applies the most recently undone state.
func (b *Bridge) Redo() bool {
	if b.guard.Active() {
		return false
	}
	s, ok := b.hist.Redo()
	if !ok {
		return false
	}
	return b.restore(s.Blob)
}

func (b *Bridge) restore(blob []byte) bool {
	if err := b.store.Restore(blob); err != nil {
		b.log.Error("history restore failed", slog.String("err", err.Error()))
		return false
	}
	b.Refresh()
	return true
}

// Refresh repaints both compositor layers from the current scene.
func (b *Bridge) Refresh() {
	if b.comp != nil {
		b.comp.Refresh(b.store.Objects(), b.store.Groups())
	}
}

// ExportImage flattens the scene into a single frame without overlays.
func (b *Bridge) ExportImage() *image.RGBA {
	return b.comp.Flatten(b.store.Objects())
}

// SelectionCount mirrors the store for the host toolbar.
func (b *Bridge) SelectionCount() int { return b.store.SelectionCount() }

// HasGroups mirrors the store for the host toolbar.
func (b *Bridge) HasGroups() bool { return b.store.HasGroups() }

// Store exposes the underlying scene for persistence.
func (b *Bridge) Store() *scene.Store { return b.store }

// Background exposes the compositor's background layer for embedding hosts.
func (b *Bridge) Background() *image.RGBA { return b.comp.Background() }

// Foreground exposes the compositor's drawing layer for embedding hosts.
func (b *Bridge) Foreground() *image.RGBA { return b.comp.Foreground() }

// CanvasSize returns the compositor dimensions in pixels.
func (b *Bridge) CanvasSize() (int, int) { return b.comp.Size() }

// SnapshotSink receives every recorded scene snapshot, so a host can persist
// them beyond the in-memory history, e.g. into the project's on-disk index.
type SnapshotSink func(blob []byte, ts time.Time)

// SetSnapshotSink installs an optional snapshot persistence hook. Pass nil to
// detach.
func (b *Bridge) SetSnapshotSink(sink SnapshotSink) { b.sink = sink }

func (b *Bridge) afterCreate() {
	b.guard.Hold(protectAfterCreate)
	b.recordSnapshot()
}

func (b *Bridge) recordSnapshot() {
	blob, err := b.store.Snapshot()
	if err != nil {
		b.log.Error("snapshot failed", slog.String("err", err.Error()))
		return
	}
	ts := time.Now()
	b.hist.Record(history.Snapshot{Blob: blob, TS: ts})
	if b.sink != nil {
		b.sink(blob, ts)
	}
}
