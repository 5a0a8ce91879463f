/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "math"

// dragThreshold suppresses sub-pixel pointer jitter. A suppressed update does
// not advance the reference point, so small moves accumulate against the
// original position instead of being rounded away one event at a time.
const dragThreshold = 0.5

// DragController converts a sequence of pointer positions into position
// deltas applied to the currently selected objects. It holds no references
// to objects between calls; the selection is re-read on every update so a
// selection change mid-drag is tolerated.
type DragController struct {
	store    *Store
	dragging bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	moved    bool
}

func NewDragController(store *Store) *DragController {
	return &DragController{store: store}
}

// Start begins a drag at (x, y). Returns false without a state change when
// the selection is empty.
func (d *DragController) Start(x, y float64) bool {
	if d.store.SelectionCount() == 0 {
		return false
	}
	d.dragging = true
	d.startX, d.startY = x, y
	d.lastX, d.lastY = x, y
	d.moved = false
	return true
}

// Update applies the delta from the last accepted position to every selected
// object. Deltas of at most 0.5px in both axes are ignored without advancing
// the reference point. An empty selection mid-drag is a silent no-op; the
// caller still ends the drag explicitly.
func (d *DragController) Update(x, y float64) {
	if !d.dragging {
		return
	}
	dx := x - d.lastX
	dy := y - d.lastY
	if math.Abs(dx) <= dragThreshold && math.Abs(dy) <= dragThreshold {
		return
	}
	selected := d.store.SelectedObjects()
	if len(selected) == 0 {
		return
	}
	for _, o := range selected {
		b := o.Base()
		b.X += dx
		b.Y += dy
	}
	d.lastX, d.lastY = x, y
	d.moved = true
}

// End returns to idle and reports whether the drag moved anything. Emitting
// a history snapshot on a real move is the bridge's job, not ours.
func (d *DragController) End() bool {
	moved := d.moved
	d.dragging = false
	d.startX, d.startY = 0, 0
	d.lastX, d.lastY = 0, 0
	d.moved = false
	return moved
}

// Dragging reports whether a drag is in progress.
func (d *DragController) Dragging() bool { return d.dragging }

// Moved reports whether the current drag has applied at least one delta.
func (d *DragController) Moved() bool { return d.moved }
