/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"encoding/json"
	"fmt"
)

// DocumentVersion is bumped on breaking changes to the serialized scene form.
const DocumentVersion = 1

// Document is the opaque serialized form of a scene: the object list, the
// groups and the selection. History snapshots, project manifests and the
// backend archive all carry this shape as a JSON blob.
type Document struct {
	Version   int            `json:"version"`
	Name      string         `json:"name,omitempty"`
	Objects   []ObjectRecord `json:"objects"`
	Groups    []Group        `json:"groups,omitempty"`
	Selection []string       `json:"selection,omitempty"`
}

// ObjectRecord is the flattened serialized form of one object. The Type tag
// decides which of the kind-specific fields are meaningful.
type ObjectRecord struct {
	Type Kind `json:"type"`
	ObjectBase

	// stroke
	Points        []Point `json:"points,omitempty"`
	StrokeStyle   string  `json:"strokeStyle,omitempty"`
	LineWidth     float64 `json:"lineWidth,omitempty"`
	Tool          string  `json:"tool,omitempty"`
	LineCap       string  `json:"lineCap,omitempty"`
	LineJoin      string  `json:"lineJoin,omitempty"`
	CompositeMode string  `json:"compositeMode,omitempty"`

	// shape
	Shape     ShapeKind `json:"shapeType,omitempty"`
	FillStyle string    `json:"fillStyle,omitempty"`

	// text
	Text string `json:"text,omitempty"`
	Font string `json:"font,omitempty"`

	// image; Source is the original encoded bytes so a restore can re-decode
	Source   []byte  `json:"source,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
}

// Document captures the store's current state under the given name.
func (s *Store) Document(name string) Document {
	doc := Document{
		Version:   DocumentVersion,
		Name:      name,
		Selection: append([]string(nil), s.selection...),
	}
	for _, o := range s.objects {
		rec := ObjectRecord{Type: o.Kind(), ObjectBase: *o.Base()}
		switch v := o.(type) {
		case *StrokeObject:
			rec.Points = append([]Point(nil), v.Points...)
			rec.StrokeStyle = v.StrokeStyle
			rec.LineWidth = v.LineWidth
			rec.Tool = v.Tool
			rec.LineCap = v.LineCap
			rec.LineJoin = v.LineJoin
			rec.CompositeMode = v.CompositeMode
		case *ShapeObject:
			rec.Shape = v.Shape
			rec.StrokeStyle = v.StrokeStyle
			rec.FillStyle = v.FillStyle
			rec.LineWidth = v.LineWidth
		case *TextObject:
			rec.Text = v.Text
			rec.Font = v.Font
			rec.FillStyle = v.FillStyle
		case *ImageObject:
			rec.Source = v.Source
			rec.Rotation = v.Rotation
		}
		doc.Objects = append(doc.Objects, rec)
	}
	for _, g := range s.groups {
		doc.Groups = append(doc.Groups, *g)
	}
	return doc
}

// LoadDocument replaces the store's contents with doc. The z-index counter
// only ever moves forward: it is raised above the highest restored z-index,
// never lowered, so creations after a restore stay on top.
func (s *Store) LoadDocument(doc Document) error {
	if doc.Version > DocumentVersion {
		return fmt.Errorf("scene document version %d is newer than supported %d", doc.Version, DocumentVersion)
	}
	objects := make([]Object, 0, len(doc.Objects))
	maxZ := -1
	for _, rec := range doc.Objects {
		o, err := rec.object()
		if err != nil {
			return err
		}
		if z := o.Base().ZIndex; z > maxZ {
			maxZ = z
		}
		objects = append(objects, o)
	}
	s.objects = objects
	s.groups = nil
	for _, g := range doc.Groups {
		gc := g
		s.groups = append(s.groups, &gc)
	}
	s.selection = nil
	for _, o := range s.objects {
		if o.Base().Selected {
			s.selection = append(s.selection, o.Base().ID)
		}
	}
	if maxZ+1 > s.nextZ {
		s.nextZ = maxZ + 1
	}
	return nil
}

func (r ObjectRecord) object() (Object, error) {
	switch r.Type {
	case KindStroke:
		return &StrokeObject{
			ObjectBase:    r.ObjectBase,
			Points:        append([]Point(nil), r.Points...),
			StrokeStyle:   r.StrokeStyle,
			LineWidth:     r.LineWidth,
			Tool:          r.Tool,
			LineCap:       r.LineCap,
			LineJoin:      r.LineJoin,
			CompositeMode: r.CompositeMode,
		}, nil
	case KindShape:
		return &ShapeObject{
			ObjectBase:  r.ObjectBase,
			Shape:       r.Shape,
			StrokeStyle: r.StrokeStyle,
			FillStyle:   r.FillStyle,
			LineWidth:   r.LineWidth,
		}, nil
	case KindText:
		return &TextObject{
			ObjectBase: r.ObjectBase,
			Text:       r.Text,
			Font:       r.Font,
			FillStyle:  r.FillStyle,
		}, nil
	case KindImage:
		o := &ImageObject{
			ObjectBase: r.ObjectBase,
			Source:     r.Source,
			Rotation:   r.Rotation,
		}
		if len(r.Source) > 0 {
			o.Element = NewImageHandle(r.Source)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unknown object type %q", r.Type)
	}
}

// EncodeDocument marshals doc to the canonical JSON blob.
func EncodeDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene document: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeDocument parses a JSON blob produced by EncodeDocument.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse scene document: %w", err)
	}
	return doc, nil
}

// Snapshot serializes the current state, for the history manager.
func (s *Store) Snapshot() ([]byte, error) {
	return EncodeDocument(s.Document(""))
}

// Restore replaces the current state with a snapshot blob.
func (s *Store) Restore(blob []byte) error {
	doc, err := DecodeDocument(blob)
	if err != nil {
		return err
	}
	return s.LoadDocument(doc)
}
