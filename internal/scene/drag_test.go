/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "testing"

func dragFixture(t *testing.T) (*Store, *DragController, string) {
	t.Helper()
	s := NewStore()
	id := s.AddShape(ShapeRectangle, R(10, 10, 20, 20), ShapeStyle{Stroke: "#000"})
	s.SelectObjects([]string{id}, false)
	return s, NewDragController(s), id
}

func TestStartDragRequiresSelection(t *testing.T) {
	s := NewStore()
	s.AddShape(ShapeRectangle, R(0, 0, 1, 1), ShapeStyle{})
	d := NewDragController(s)
	if d.Start(0, 0) {
		t.Fatalf("drag must not start with an empty selection")
	}
	if d.Dragging() {
		t.Fatalf("failed start must not change state")
	}
}

func TestDragSubPixelSuppression(t *testing.T) {
	s, d, id := dragFixture(t)
	if !d.Start(0, 0) {
		t.Fatalf("start failed")
	}
	d.Update(0.3, 0.3)
	o := s.Get(id).Base()
	if o.X != 10 || o.Y != 10 {
		t.Fatalf("sub-pixel move must not shift the object, got (%v,%v)", o.X, o.Y)
	}
	if d.Moved() {
		t.Fatalf("suppressed update must not mark the drag moved")
	}
	// the suppressed call never advanced the reference point, so the next
	// update applies the full accumulated delta
	d.Update(0.6, 0.6)
	if o.X != 10.6 || o.Y != 10.6 {
		t.Fatalf("expected accumulated delta (0.6,0.6), got (%v,%v)", o.X-10, o.Y-10)
	}
	if !d.Moved() {
		t.Fatalf("applied delta must mark the drag moved")
	}
}

func TestDragAppliesToEverySelectedObject(t *testing.T) {
	s := NewStore()
	a := s.AddShape(ShapeRectangle, R(0, 0, 5, 5), ShapeStyle{})
	b := s.AddShape(ShapeRectangle, R(50, 50, 5, 5), ShapeStyle{})
	s.SelectObjects([]string{a, b}, false)
	d := NewDragController(s)
	d.Start(0, 0)
	d.Update(10, 4)
	if s.Get(a).Base().X != 10 || s.Get(b).Base().X != 60 {
		t.Fatalf("both selected objects must move")
	}
	if s.Get(a).Base().Y != 4 || s.Get(b).Base().Y != 54 {
		t.Fatalf("vertical delta must apply to both")
	}
}

func TestDragSelectionEmptiedMidDrag(t *testing.T) {
	s, d, id := dragFixture(t)
	d.Start(0, 0)
	s.SelectObjects(nil, false)
	d.Update(10, 10) // silent no-op, still dragging
	if !d.Dragging() {
		t.Fatalf("empty selection mid-drag must not end the drag")
	}
	if s.Get(id).Base().X != 10 {
		t.Fatalf("deselected object must not move")
	}
	if d.End() {
		t.Fatalf("a drag that never applied a delta must report moved=false")
	}
}

func TestEndDragResetsState(t *testing.T) {
	_, d, _ := dragFixture(t)
	d.Start(5, 5)
	d.Update(20, 20)
	if !d.End() {
		t.Fatalf("moved drag must report true on End")
	}
	if d.Dragging() || d.Moved() {
		t.Fatalf("End must return the controller to idle")
	}
	// updates after End are ignored
	d.Update(100, 100)
	if d.Moved() {
		t.Fatalf("update after End must be ignored")
	}
}
