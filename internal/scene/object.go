/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the canvas object model: the four drawable kinds plus
// groups, the store that owns them, and the drag controller. The renderer and
// the interaction bridge operate on these types but never own them.
package scene

import "time"

// Kind discriminates the drawable object variants. The renderer and the
// store switch exhaustively on it; adding a kind is a compile-visible change.
type Kind string

const (
	KindStroke Kind = "stroke"
	KindShape  Kind = "shape"
	KindText   Kind = "text"
	KindImage  Kind = "image"
)

// ShapeKind enumerates the shape tools. A "square" tool selection is
// normalized to KindRectangle with equal width/height before the store is
// called; the store never special-cases squares.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeLine      ShapeKind = "line"
)

// Object is the common interface over the drawable variants.
type Object interface {
	// Base returns the shared mutable fields. Position is mutated by the
	// drag controller, Selected by the store; ID, Kind and ZIndex are fixed
	// after creation.
	Base() *ObjectBase
	Kind() Kind
}

// ObjectBase carries the fields every drawable shares.
type ObjectBase struct {
	ID       string    `json:"id"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Opacity  float64   `json:"opacity"`
	Selected bool      `json:"selected"`
	GroupID  string    `json:"groupId,omitempty"`
	ZIndex   int       `json:"zIndex"`
	Created  time.Time `json:"created"`
}

func (b *ObjectBase) Base() *ObjectBase { return b }

// Bounds returns the object's bounding box, used for hit-testing and the
// selection outline.
func (b *ObjectBase) Bounds() Rect { return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height} }

// StrokeObject is a freehand polyline. Points are stored relative to the
// object's own origin; moving the object only changes X/Y, the points are
// never recomputed.
type StrokeObject struct {
	ObjectBase
	Points        []Point `json:"points"`
	StrokeStyle   string  `json:"strokeStyle"`
	LineWidth     float64 `json:"lineWidth"`
	Tool          string  `json:"tool,omitempty"`
	LineCap       string  `json:"lineCap,omitempty"`
	LineJoin      string  `json:"lineJoin,omitempty"`
	CompositeMode string  `json:"compositeMode,omitempty"`
}

func (*StrokeObject) Kind() Kind { return KindStroke }

// ShapeObject is a rectangle, circle or line within its bounding box.
type ShapeObject struct {
	ObjectBase
	Shape       ShapeKind `json:"shapeType"`
	StrokeStyle string    `json:"strokeStyle"`
	FillStyle   string    `json:"fillStyle,omitempty"`
	LineWidth   float64   `json:"lineWidth"`
}

func (*ShapeObject) Kind() Kind { return KindShape }

// TextObject is a single line of text painted with its top-left at X/Y.
// Width/Height are creation-time estimates from character count and the
// parsed font size, good enough for hit-testing but not pixel layout.
type TextObject struct {
	ObjectBase
	Text      string `json:"text"`
	Font      string `json:"font"`
	FillStyle string `json:"fillStyle"`
}

func (*TextObject) Kind() Kind { return KindText }

// ImageObject is a raster image scaled into its bounding box and rotated
// about its center. The handle is exclusively owned by this object.
type ImageObject struct {
	ObjectBase
	Element  *ImageHandle `json:"-"`
	Source   []byte       `json:"source,omitempty"`
	Rotation float64      `json:"rotation"`
}

func (*ImageObject) Kind() Kind { return KindImage }

// Group references member objects by id; it does not own them. Deleting a
// group clears GroupID on each member instead of deleting the objects.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ObjectIDs []string `json:"objectIds"`
	Locked    bool     `json:"locked"`
	Visible   bool     `json:"visible"`
}
