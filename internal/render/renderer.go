/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	applog "drawover/internal/log"
	"drawover/internal/scene"
)

const (
	selectionOutlineWidth  = 2
	selectionOutlineOutset = 2
	groupOutlineOutset     = 4
	groupOutlineColor      = "#ffaa00"
)

var groupDashPattern = []float64{6, 4}

// Renderer walks scene objects in ascending z order and paints them onto a
// Canvas. A failing object is logged and skipped; one broken image never
// takes down the frame.
type Renderer struct {
	log    *slog.Logger
	accent string
}

// NewRenderer creates a renderer with the given selection accent color.
func NewRenderer(accent string) *Renderer {
	if accent == "" {
		accent = "#0096ff"
	}
	return &Renderer{log: applog.WithComponent("render"), accent: accent}
}

// Render paints objects in ascending z-index order. The input slice is not
// modified; ordering happens on a copy.
func (r *Renderer) Render(c *Canvas, objects []scene.Object) {
	sorted := append([]scene.Object(nil), objects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Base().ZIndex < sorted[j].Base().ZIndex
	})
	for _, o := range sorted {
		if err := r.paintObject(c, o); err != nil {
			r.log.Error("object paint failed", slog.String("id", o.Base().ID), slog.String("kind", string(o.Kind())), slog.String("err", err.Error()))
		}
	}
}

// RenderOverlays paints the per-object selection outlines on top of the
// already-rendered objects. A selected object that belongs to a group gets a
// second, dashed frame in its own color further out, marking membership.
// Outlines ignore object opacity. Unselected objects get no decoration, no
// matter what groups exist.
func (r *Renderer) RenderOverlays(c *Canvas, objects []scene.Object, groups []*scene.Group) {
	accent := ParseColor(r.accent, 1)
	groupCol := ParseColor(groupOutlineColor, 1)
	byID := make(map[string]*scene.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	for _, o := range objects {
		b := o.Base()
		if !b.Selected {
			continue
		}
		c.StrokeRect(b.Bounds().Outset(selectionOutlineOutset), accent, selectionOutlineWidth)
		if b.GroupID == "" {
			continue
		}
		// tolerate a stale back-reference to a deleted group
		g, ok := byID[b.GroupID]
		if !ok || !g.Visible {
			continue
		}
		c.DashedRect(b.Bounds().Outset(groupOutlineOutset), groupCol, 1, groupDashPattern)
	}
}

func (r *Renderer) paintObject(c *Canvas, o scene.Object) (err error) {
	// a corrupt object must not abort the whole frame
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("paint panic: %v", rec)
		}
	}()
	switch obj := o.(type) {
	case *scene.StrokeObject:
		r.paintStroke(c, obj)
	case *scene.ShapeObject:
		r.paintShape(c, obj)
	case *scene.TextObject:
		return r.paintText(c, obj)
	case *scene.ImageObject:
		return r.paintImage(c, obj)
	default:
		return fmt.Errorf("unknown object kind %q", o.Kind())
	}
	return nil
}

func (r *Renderer) paintStroke(c *Canvas, o *scene.StrokeObject) {
	if len(o.Points) < 2 {
		return
	}
	if o.CompositeMode == "destination-out" {
		c.ErasePolyline(o.Points, o.X, o.Y, o.LineWidth, o.LineCap, o.LineJoin)
		return
	}
	col := ParseColor(o.StrokeStyle, o.Opacity)
	c.StrokePolyline(o.Points, o.X, o.Y, col, o.LineWidth, o.LineCap, o.LineJoin)
}

func (r *Renderer) paintShape(c *Canvas, o *scene.ShapeObject) {
	stroke := ParseColor(o.StrokeStyle, o.Opacity)
	bounds := o.Bounds()
	switch o.Shape {
	case scene.ShapeRectangle:
		if o.FillStyle != "" {
			c.FillRect(bounds, ParseColor(o.FillStyle, o.Opacity))
		}
		c.StrokeRect(bounds, stroke, o.LineWidth)
	case scene.ShapeCircle:
		// inscribed circle: radius from the smaller dimension
		radius := math.Min(bounds.Width, bounds.Height) / 2
		center := bounds.Center()
		if o.FillStyle != "" {
			c.FillCircle(center.X, center.Y, radius, ParseColor(o.FillStyle, o.Opacity))
		}
		c.StrokeCircle(center.X, center.Y, radius, stroke, o.LineWidth)
	case scene.ShapeLine:
		c.Line(bounds.X, bounds.Y, bounds.X+bounds.Width, bounds.Y+bounds.Height, stroke, o.LineWidth)
	}
}

func (r *Renderer) paintText(c *Canvas, o *scene.TextObject) error {
	size := scene.ParseFontSize(o.Font)
	return c.DrawString(o.Text, o.X, o.Y, ParseColor(o.FillStyle, o.Opacity), size)
}

func (r *Renderer) paintImage(c *Canvas, o *scene.ImageObject) error {
	if o.Element == nil {
		return nil
	}
	if err := o.Element.Err(); err != nil {
		return fmt.Errorf("image decode: %w", err)
	}
	img, ok := o.Element.Image()
	if !ok {
		// decode still in flight; the next frame picks it up
		return nil
	}
	c.DrawImage(img, o.Bounds(), o.Rotation, o.Opacity)
	return nil
}
