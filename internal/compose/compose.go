/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package compose stacks the two drawing surfaces: a background layer for the
// backdrop frame and image objects, and a foreground layer for everything
// drawn on top. Flatten produces the single export image.
package compose

import (
	"image"
	"image/color"
	"log/slog"

	xdraw "golang.org/x/image/draw"

	applog "drawover/internal/log"
	"drawover/internal/render"
	"drawover/internal/scene"
)

var white = color.RGBA{255, 255, 255, 255}

// Compositor owns the background and foreground canvases for one surface.
type Compositor struct {
	log      *slog.Logger
	w, h     int
	bg       *render.Canvas
	fg       *render.Canvas
	renderer *render.Renderer
	backdrop image.Image
}

func New(w, h int, r *render.Renderer) *Compositor {
	return &Compositor{
		log:      applog.WithComponent("compose"),
		w:        w,
		h:        h,
		bg:       render.NewCanvas(w, h),
		fg:       render.NewCanvas(w, h),
		renderer: r,
	}
}

// SetBackdrop installs the frame painted behind everything. nil clears it.
func (c *Compositor) SetBackdrop(img image.Image) { c.backdrop = img }

// Background returns the background canvas image.
func (c *Compositor) Background() *image.RGBA { return c.bg.Image() }

// Foreground returns the foreground canvas image.
func (c *Compositor) Foreground() *image.RGBA { return c.fg.Image() }

// Size returns the surface dimensions.
func (c *Compositor) Size() (int, int) { return c.w, c.h }

// Refresh repaints both layers from the object list. Image objects land on
// the background layer with the backdrop; every other kind paints on the
// foreground. With no image objects in the scene the foreground is filled
// opaque white so the surface doubles as a whiteboard; as soon as an image
// exists the foreground goes transparent and the background shows through.
func (c *Compositor) Refresh(objects []scene.Object, groups []*scene.Group) {
	var images, drawings []scene.Object
	for _, o := range objects {
		if o.Kind() == scene.KindImage {
			images = append(images, o)
		} else {
			drawings = append(drawings, o)
		}
	}

	c.bg.Fill(white)
	if c.backdrop != nil {
		c.bg.DrawImageFit(c.backdrop)
	}
	c.renderer.Render(c.bg, images)

	if len(images) == 0 {
		c.fg.Fill(white)
	} else {
		c.fg.Clear()
	}
	c.renderer.Render(c.fg, drawings)
	c.renderer.RenderOverlays(c.fg, objects, groups)
}

// Flatten renders the full scene into one image for export: white base,
// letterboxed backdrop, then every object in z order. Selection and group
// overlays are never part of the export.
func (c *Compositor) Flatten(objects []scene.Object) *image.RGBA {
	out := render.NewCanvas(c.w, c.h)
	out.Fill(white)
	if c.backdrop != nil {
		out.DrawImageFit(c.backdrop)
	}
	c.renderer.Render(out, objects)
	return out.Image()
}

// Composite stacks the current background and foreground into one image,
// matching what the user sees on screen.
func (c *Compositor) Composite() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, c.w, c.h))
	xdraw.Draw(out, out.Bounds(), c.bg.Image(), image.Point{}, xdraw.Src)
	xdraw.Draw(out, out.Bounds(), c.fg.Image(), image.Point{}, xdraw.Over)
	return out
}
