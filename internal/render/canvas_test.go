/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/color"
	"testing"

	"drawover/internal/scene"
)

func TestFillAndClear(t *testing.T) {
	c := NewCanvas(10, 10)
	c.Fill(color.RGBA{255, 0, 0, 255})
	if got := c.Image().RGBAAt(5, 5); got.R != 255 || got.A != 255 {
		t.Fatalf("fill did not reach pixel: %+v", got)
	}
	c.Clear()
	if got := c.Image().RGBAAt(5, 5); got.A != 0 {
		t.Fatalf("clear left alpha %d", got.A)
	}
}

func TestStrokePolylinePaintsPixels(t *testing.T) {
	c := NewCanvas(40, 40)
	c.StrokePolyline([]scene.Point{{X: 5, Y: 20}, {X: 35, Y: 20}}, 0, 0, color.RGBA{0, 0, 0, 255}, 4, "round", "round")
	if got := c.Image().RGBAAt(20, 20); got.A == 0 {
		t.Fatalf("stroke center pixel untouched")
	}
	if got := c.Image().RGBAAt(20, 5); got.A != 0 {
		t.Fatalf("pixel far from the stroke was painted: %+v", got)
	}
}

func TestErasePolylineRemovesPaint(t *testing.T) {
	c := NewCanvas(40, 40)
	c.Fill(color.RGBA{0, 0, 255, 255})
	c.ErasePolyline([]scene.Point{{X: 0, Y: 20}, {X: 40, Y: 20}}, 0, 0, 6, "round", "round")
	if got := c.Image().RGBAAt(20, 20); got.A != 0 {
		t.Fatalf("erase left alpha %d at stroke center", got.A)
	}
	if got := c.Image().RGBAAt(20, 2); got.A != 255 {
		t.Fatalf("erase bled outside the stroke: %+v", got)
	}
}

func TestFillRectBounds(t *testing.T) {
	c := NewCanvas(20, 20)
	c.FillRect(scene.R(5, 5, 10, 10), color.RGBA{0, 255, 0, 255})
	if c.Image().RGBAAt(10, 10).A == 0 {
		t.Fatalf("rect interior unpainted")
	}
	if c.Image().RGBAAt(2, 2).A != 0 {
		t.Fatalf("rect exterior painted")
	}
}

func TestFillCircleInscribed(t *testing.T) {
	c := NewCanvas(40, 40)
	c.FillCircle(20, 20, 10, color.RGBA{0, 0, 0, 255})
	if c.Image().RGBAAt(20, 20).A == 0 {
		t.Fatalf("circle center unpainted")
	}
	// corner of the enclosing square is outside the disc
	if c.Image().RGBAAt(11, 11).A != 0 {
		t.Fatalf("circle painted outside its radius")
	}
}

func TestDrawStringPaintsSomething(t *testing.T) {
	c := NewCanvas(100, 30)
	if err := c.DrawString("Xy", 2, 2, color.RGBA{0, 0, 0, 255}, 16); err != nil {
		t.Fatalf("draw string: %v", err)
	}
	painted := 0
	for i := 3; i < len(c.Image().Pix); i += 4 {
		if c.Image().Pix[i] != 0 {
			painted++
		}
	}
	if painted == 0 {
		t.Fatalf("no glyph pixels painted")
	}
}

func TestDrawImageFitLetterboxes(t *testing.T) {
	c := NewCanvas(100, 50)
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	c.DrawImageFit(src)
	// square source into a wide canvas: full height, centered horizontally
	if c.Image().RGBAAt(50, 25).A == 0 {
		t.Fatalf("letterboxed image missing at the center")
	}
	if c.Image().RGBAAt(5, 25).A != 0 {
		t.Fatalf("letterbox bars must stay empty")
	}
}

func TestDrawImageRotation(t *testing.T) {
	c := NewCanvas(60, 60)
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	// a tall thin image rotated 90 degrees about its center becomes wide
	c.DrawImage(src, scene.R(25, 5, 10, 50), 90, 1)
	if c.Image().RGBAAt(30, 30).A == 0 {
		t.Fatalf("rotated image missing at its center")
	}
	if c.Image().RGBAAt(30, 8).A != 0 {
		t.Fatalf("rotation did not move the top edge: pixel still painted")
	}
	if c.Image().RGBAAt(8, 30).A == 0 {
		t.Fatalf("rotated extent missing on the horizontal axis")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in      string
		opacity float64
		want    color.RGBA
	}{
		{"#ff0000", 1, color.RGBA{255, 0, 0, 255}},
		{"#f00", 1, color.RGBA{255, 0, 0, 255}},
		{"#00ff0080", 1, color.RGBA{0, 128, 0, 128}}, // premultiplied: g = 255*128/255
		{"white", 1, color.RGBA{255, 255, 255, 255}},
		{"bogus", 1, color.RGBA{0, 0, 0, 255}},
		{"#ffffff", 0.5, color.RGBA{128, 128, 128, 128}},
	}
	for _, tc := range cases {
		got := ParseColor(tc.in, tc.opacity).(color.RGBA)
		if got != tc.want {
			t.Fatalf("ParseColor(%q, %v) = %+v, want %+v", tc.in, tc.opacity, got, tc.want)
		}
	}
}
