/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "drawover/internal/log"
)

// Size estimate factors for text objects. Deliberately rough: the box is used
// for hit-testing and the selection outline, not for layout.
const (
	textWidthPerChar = 0.6
	textLineHeight   = 1.2
	defaultFontSize  = 16
)

// StrokeStyle carries the brush settings resolved by the caller.
//
// Opacity uses the Go zero value as "unset": 0 (or any out-of-range value)
// paints fully opaque. A transparent object is expressed by a value just
// above 0, never by 0 itself. The same convention applies to ShapeStyle and
// TextStyle.
type StrokeStyle struct {
	Color     string
	Width     float64
	Opacity   float64
	Tool      string
	Cap       string
	Join      string
	Composite string
}

// ShapeStyle carries the shape tool settings. Opacity 0 means unset, see
// StrokeStyle.
type ShapeStyle struct {
	Stroke  string
	Fill    string
	Width   float64
	Opacity float64
}

// TextStyle carries the text tool settings. Font must encode the size as a
// leading pixel number, e.g. "16px sans-serif". Opacity 0 means unset, see
// StrokeStyle.
type TextStyle struct {
	Font    string
	Fill    string
	Opacity float64
}

// ImageInput describes a new image object.
type ImageInput struct {
	Handle   *ImageHandle
	Source   []byte
	Bounds   Rect
	Rotation float64
}

// Store is the sole owner of the live object list, group list and selection.
// All mutators assume a single writer; the host serializes calls onto one
// thread. The z-index counter is monotonic for the life of the store so
// paint order stays stable across deletions.
type Store struct {
	log       *slog.Logger
	objects   []Object
	groups    []*Group
	selection []string
	nextZ     int
	drawing   bool
}

func NewStore() *Store {
	return &Store{log: applog.WithComponent("scene")}
}

func (s *Store) nextZIndex() int {
	z := s.nextZ
	s.nextZ++
	return z
}

func (s *Store) newBase(bounds Rect, opacity float64) ObjectBase {
	// zero-value convention: 0 is "unset" and defaults to opaque
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	return ObjectBase{
		ID:      uuid.NewString(),
		X:       bounds.X,
		Y:       bounds.Y,
		Width:   bounds.Width,
		Height:  bounds.Height,
		Opacity: opacity,
		ZIndex:  s.nextZIndex(),
		Created: time.Now(),
	}
}

// AddStroke creates a freehand stroke from absolute surface points. The
// bounding box is the tight box of the point cloud expanded by half the line
// width; stored points are rebased onto the box origin and never recomputed.
// Returns ok=false for an empty point list.
func (s *Store) AddStroke(points []Point, st StrokeStyle) (string, bool) {
	if len(points) == 0 {
		return "", false
	}
	bounds := BoundsFromPoints(points, st.Width/2)
	rel := make([]Point, len(points))
	for i, p := range points {
		rel[i] = Point{X: p.X - bounds.X, Y: p.Y - bounds.Y}
	}
	o := &StrokeObject{
		ObjectBase:    s.newBase(bounds, st.Opacity),
		Points:        rel,
		StrokeStyle:   st.Color,
		LineWidth:     st.Width,
		Tool:          st.Tool,
		LineCap:       st.Cap,
		LineJoin:      st.Join,
		CompositeMode: st.Composite,
	}
	s.objects = append(s.objects, o)
	s.log.Debug("stroke added", slog.String("id", o.ID), slog.Int("points", len(points)))
	return o.ID, true
}

// AddShape creates a shape object. Any finite bounds are accepted; zero-area
// shapes are legal and simply invisible.
func (s *Store) AddShape(kind ShapeKind, bounds Rect, st ShapeStyle) string {
	o := &ShapeObject{
		ObjectBase:  s.newBase(bounds, st.Opacity),
		Shape:       kind,
		StrokeStyle: st.Stroke,
		FillStyle:   st.Fill,
		LineWidth:   st.Width,
	}
	s.objects = append(s.objects, o)
	return o.ID
}

// AddText creates a text object at pos. Width/height are estimated from the
// character count and the font size parsed out of st.Font.
func (s *Store) AddText(text string, pos Point, st TextStyle) string {
	size := ParseFontSize(st.Font)
	bounds := Rect{
		X:      pos.X,
		Y:      pos.Y,
		Width:  float64(len([]rune(text))) * size * textWidthPerChar,
		Height: size * textLineHeight,
	}
	o := &TextObject{
		ObjectBase: s.newBase(bounds, st.Opacity),
		Text:       text,
		Font:       st.Font,
		FillStyle:  st.Fill,
	}
	s.objects = append(s.objects, o)
	return o.ID
}

// AddImage creates an image object. Opacity is always 1.0 for new images
// regardless of the active tool settings.
func (s *Store) AddImage(in ImageInput) string {
	o := &ImageObject{
		ObjectBase: s.newBase(in.Bounds, 1),
		Element:    in.Handle,
		Source:     in.Source,
		Rotation:   in.Rotation,
	}
	o.Opacity = 1
	s.objects = append(s.objects, o)
	s.log.Debug("image added", slog.String("id", o.ID))
	return o.ID
}

// SelectObjects replaces the selection with ids, or unions ids into it when
// additive. Every object's Selected flag is rewritten on each call so
// selection state is always derivable from the object list alone.
func (s *Store) SelectObjects(ids []string, additive bool) {
	want := make(map[string]bool, len(ids))
	if additive {
		for _, id := range s.selection {
			want[id] = true
		}
	}
	for _, id := range ids {
		want[id] = true
	}
	s.selection = s.selection[:0]
	for _, o := range s.objects {
		b := o.Base()
		b.Selected = want[b.ID]
		if b.Selected {
			s.selection = append(s.selection, b.ID)
		}
	}
}

// ObjectAt returns the topmost object whose bounding box contains (x, y), or
// nil. This is the authoritative hit-test for single-click selection.
func (s *Store) ObjectAt(x, y float64) Object {
	var top Object
	topZ := -1
	for _, o := range s.objects {
		b := o.Base()
		if b.Bounds().Contains(Point{X: x, Y: y}) && b.ZIndex > topZ {
			top, topZ = o, b.ZIndex
		}
	}
	return top
}

// CreateGroup groups the current selection. Fails (ok=false) with fewer than
// 2 selected objects; otherwise the new group references exactly the selected
// ids and each member gets the group id stamped as a back-reference.
func (s *Store) CreateGroup(name string) (string, bool) {
	if len(s.selection) < 2 {
		return "", false
	}
	g := &Group{
		ID:        uuid.NewString(),
		Name:      name,
		ObjectIDs: append([]string(nil), s.selection...),
		Visible:   true,
	}
	if g.Name == "" {
		g.Name = "Group " + strconv.Itoa(len(s.groups)+1)
	}
	for _, o := range s.objects {
		if o.Base().Selected {
			o.Base().GroupID = g.ID
		}
	}
	s.groups = append(s.groups, g)
	s.log.Debug("group created", slog.String("id", g.ID), slog.Int("members", len(g.ObjectIDs)))
	return g.ID, true
}

// Ungroup removes the group and clears GroupID on every member that still
// exists. A member id that no longer resolves is skipped; an unknown group id
// is a no-op.
func (s *Store) Ungroup(groupID string) {
	idx := -1
	for i, g := range s.groups {
		if g.ID == groupID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for _, id := range s.groups[idx].ObjectIDs {
		if o := s.Get(id); o != nil {
			o.Base().GroupID = ""
		}
	}
	s.groups = append(s.groups[:idx], s.groups[idx+1:]...)
}

// DeleteSelected removes every selected object and clears the selection.
// Groups that lose members are left in place; they may reference ids that no
// longer exist and readers must filter accordingly.
func (s *Store) DeleteSelected() int {
	kept := s.objects[:0]
	removed := 0
	for _, o := range s.objects {
		if o.Base().Selected {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	for i := len(kept); i < len(s.objects); i++ {
		s.objects[i] = nil
	}
	s.objects = kept
	s.selection = nil
	if removed > 0 {
		s.log.Debug("selection deleted", slog.Int("count", removed))
	}
	return removed
}

// ClearAll empties objects, groups and selection and resets the drawing flag.
// The z-index counter is not reset; it is monotonic for the store's lifetime.
func (s *Store) ClearAll() {
	s.objects = nil
	s.groups = nil
	s.selection = nil
	s.drawing = false
	s.log.Debug("scene cleared")
}

// SetDrawing marks a continuous pointer gesture in progress.
func (s *Store) SetDrawing(v bool) { s.drawing = v }

// Drawing reports whether a gesture is in progress.
func (s *Store) Drawing() bool { return s.drawing }

// Get returns the object with the given id, or nil.
func (s *Store) Get(id string) Object {
	for _, o := range s.objects {
		if o.Base().ID == id {
			return o
		}
	}
	return nil
}

// Objects returns the live object list in creation order. The slice is a
// copy; the objects themselves are shared.
func (s *Store) Objects() []Object {
	return append([]Object(nil), s.objects...)
}

// Groups returns the live group list.
func (s *Store) Groups() []*Group {
	return append([]*Group(nil), s.groups...)
}

// SelectedObjects returns the selected objects in store order.
func (s *Store) SelectedObjects() []Object {
	var out []Object
	for _, o := range s.objects {
		if o.Base().Selected {
			out = append(out, o)
		}
	}
	return out
}

// SelectedIDs returns the ids in the selection set.
func (s *Store) SelectedIDs() []string {
	return append([]string(nil), s.selection...)
}

// SelectionCount returns the number of selected objects.
func (s *Store) SelectionCount() int { return len(s.selection) }

// HasGroups reports whether any group exists.
func (s *Store) HasGroups() bool { return len(s.groups) > 0 }

// Len returns the number of live objects.
func (s *Store) Len() int { return len(s.objects) }

// ParseFontSize extracts the leading pixel size from a CSS-style font string
// such as "16px sans-serif". Falls back to 16 when no number leads.
func ParseFontSize(font string) float64 {
	font = strings.TrimSpace(font)
	end := 0
	for end < len(font) && (font[end] == '.' || (font[end] >= '0' && font[end] <= '9')) {
		end++
	}
	if end == 0 {
		return defaultFontSize
	}
	v, err := strconv.ParseFloat(font[:end], 64)
	if err != nil || v <= 0 {
		return defaultFontSize
	}
	return v
}
