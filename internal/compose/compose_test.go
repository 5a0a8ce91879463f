/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package compose

import (
	"bytes"
	"image"
	"testing"

	"drawover/internal/render"
	"drawover/internal/scene"
)

func newCompositor(w, h int) *Compositor {
	return New(w, h, render.NewRenderer("#0096ff"))
}

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
		img.Pix[i+3] = 255
	}
	return img
}

func TestForegroundWhiteWithoutImages(t *testing.T) {
	s := scene.NewStore()
	s.AddShape(scene.ShapeRectangle, scene.R(10, 10, 20, 20), scene.ShapeStyle{Stroke: "#000", Width: 1})
	c := newCompositor(60, 60)
	c.Refresh(s.Objects(), s.Groups())
	if got := c.Foreground().RGBAAt(50, 50); got.R != 255 || got.A != 255 {
		t.Fatalf("foreground must be white with no images in the scene, got %+v", got)
	}
}

func TestForegroundTransparentWithImages(t *testing.T) {
	s := scene.NewStore()
	s.AddImage(scene.ImageInput{
		Handle: scene.DecodedHandle(solidImage(4, 4)),
		Bounds: scene.R(5, 5, 20, 20),
	})
	c := newCompositor(60, 60)
	c.Refresh(s.Objects(), s.Groups())
	if got := c.Foreground().RGBAAt(50, 50); got.A != 0 {
		t.Fatalf("foreground must be transparent once an image exists, got %+v", got)
	}
	if got := c.Background().RGBAAt(10, 10); got.R != 255 || got.B != 0 {
		t.Fatalf("image must be painted on the background layer, got %+v", got)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	s := scene.NewStore()
	s.AddStroke([]scene.Point{{X: 5, Y: 5}, {X: 40, Y: 40}}, scene.StrokeStyle{Color: "#df4b26", Width: 3, Cap: "round", Join: "round"})
	s.AddImage(scene.ImageInput{Handle: scene.DecodedHandle(solidImage(4, 4)), Bounds: scene.R(30, 30, 10, 10)})
	c := newCompositor(60, 60)
	c.Refresh(s.Objects(), s.Groups())
	bg1 := append([]byte(nil), c.Background().Pix...)
	fg1 := append([]byte(nil), c.Foreground().Pix...)
	c.Refresh(s.Objects(), s.Groups())
	if !bytes.Equal(bg1, c.Background().Pix) || !bytes.Equal(fg1, c.Foreground().Pix) {
		t.Fatalf("repeated refresh of an unchanged scene must be pixel-identical")
	}
}

func TestBackdropLetterboxedOnBackground(t *testing.T) {
	c := newCompositor(100, 50)
	c.SetBackdrop(solidImage(10, 10))
	c.Refresh(nil, nil)
	if got := c.Background().RGBAAt(50, 25); got.R != 255 || got.B != 0 {
		t.Fatalf("backdrop missing at center, got %+v", got)
	}
	// letterbox bars stay white
	if got := c.Background().RGBAAt(5, 25); got.B != 255 {
		t.Fatalf("letterbox bar must stay white, got %+v", got)
	}
}

func TestFlattenIncludesEverythingButOverlays(t *testing.T) {
	s := scene.NewStore()
	id := s.AddShape(scene.ShapeRectangle, scene.R(10, 10, 20, 20), scene.ShapeStyle{Stroke: "#0000ff", Fill: "#0000ff", Width: 1})
	s.AddImage(scene.ImageInput{Handle: scene.DecodedHandle(solidImage(4, 4)), Bounds: scene.R(40, 40, 10, 10)})
	s.SelectObjects([]string{id}, false)

	c := newCompositor(60, 60)
	flat := c.Flatten(s.Objects())
	if got := flat.RGBAAt(20, 20); got.B != 255 {
		t.Fatalf("shape missing from the flattened image, got %+v", got)
	}
	if got := flat.RGBAAt(45, 45); got.R != 255 || got.B != 0 {
		t.Fatalf("image missing from the flattened image, got %+v", got)
	}
	// the selection outline sits at x=8; flattening must not paint it
	if got := flat.RGBAAt(8, 20); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Fatalf("selection outline leaked into the export, got %+v", got)
	}
}

func TestCompositeStacksLayers(t *testing.T) {
	s := scene.NewStore()
	s.AddImage(scene.ImageInput{Handle: scene.DecodedHandle(solidImage(4, 4)), Bounds: scene.R(0, 0, 60, 60)})
	s.AddShape(scene.ShapeRectangle, scene.R(20, 20, 10, 10), scene.ShapeStyle{Stroke: "#0000ff", Fill: "#0000ff", Width: 1})
	c := newCompositor(60, 60)
	c.Refresh(s.Objects(), s.Groups())
	out := c.Composite()
	if got := out.RGBAAt(25, 25); got.B != 255 {
		t.Fatalf("foreground shape must win over the background image, got %+v", got)
	}
	if got := out.RGBAAt(5, 5); got.R != 255 || got.B != 0 {
		t.Fatalf("background image must show where the foreground is empty, got %+v", got)
	}
}
