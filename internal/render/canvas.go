/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render rasterizes scene objects onto RGBA canvases. The drawing
// primitives live on Canvas; the z-ordered object walk lives in Renderer.
package render

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"drawover/internal/scene"
)

// kappa is the cubic bezier control offset that approximates a quarter circle.
const kappa = 0.5522847498307936

// Canvas wraps an RGBA image with a rasterx stroke/fill engine.
type Canvas struct {
	img     *image.RGBA
	w, h    int
	scanner *rasterx.ScannerGV
	dasher  *rasterx.Dasher
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	sc := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return &Canvas{
		img:     img,
		w:       w,
		h:       h,
		scanner: sc,
		dasher:  rasterx.NewDasher(w, h, sc),
	}
}

// Image returns the backing image. Callers must not resize it.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Size returns the pixel dimensions.
func (c *Canvas) Size() (int, int) { return c.w, c.h }

// Clear resets every pixel to transparent.
func (c *Canvas) Clear() {
	pix := c.img.Pix
	for i := range pix {
		pix[i] = 0
	}
}

// Fill floods the whole canvas with col.
func (c *Canvas) Fill(col color.Color) {
	xdraw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, xdraw.Src)
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fixedPoint(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed(x), Y: toFixed(y)}
}

func capFunc(name string) rasterx.CapFunc {
	switch name {
	case "butt":
		return rasterx.ButtCap
	case "square":
		return rasterx.SquareCap
	default:
		return rasterx.RoundCap
	}
}

func joinMode(name string) rasterx.JoinMode {
	switch name {
	case "miter":
		return rasterx.Miter
	case "bevel":
		return rasterx.Bevel
	default:
		return rasterx.Round
	}
}

func (c *Canvas) strokePath(p rasterx.Path, col color.Color, width float64, cap, join string, dashes []float64) {
	if width <= 0 {
		width = 1
	}
	c.dasher.SetStroke(toFixed(width), toFixed(4), capFunc(cap), nil, nil, joinMode(join), dashes, 0)
	p.AddTo(c.dasher)
	c.dasher.SetColor(col)
	c.dasher.Draw()
	c.dasher.Clear()
}

func (c *Canvas) fillPath(p rasterx.Path, col color.Color) {
	f := &c.dasher.Filler
	f.SetWinding(true)
	p.AddTo(f)
	f.SetColor(col)
	f.Draw()
	f.Clear()
}

func polylinePath(pts []scene.Point, offX, offY float64) rasterx.Path {
	var p rasterx.Path
	p.Start(fixedPoint(pts[0].X+offX, pts[0].Y+offY))
	for _, pt := range pts[1:] {
		p.Line(fixedPoint(pt.X+offX, pt.Y+offY))
	}
	p.Stop(false)
	return p
}

// StrokePolyline strokes the point chain translated by (offX, offY).
// Needs at least two points; fewer is a no-op.
func (c *Canvas) StrokePolyline(pts []scene.Point, offX, offY float64, col color.Color, width float64, cap, join string) {
	if len(pts) < 2 {
		return
	}
	c.strokePath(polylinePath(pts, offX, offY), col, width, cap, join, nil)
}

// ErasePolyline removes already-painted pixels under the stroke path.
// The stroke is rasterized into a scratch mask and the destination alpha is
// multiplied down by the mask coverage, so soft edges erase softly.
func (c *Canvas) ErasePolyline(pts []scene.Point, offX, offY float64, width float64, cap, join string) {
	if len(pts) < 2 {
		return
	}
	mask := NewCanvas(c.w, c.h)
	mask.StrokePolyline(pts, offX, offY, color.RGBA{255, 255, 255, 255}, width, cap, join)

	dst, src := c.img.Pix, mask.img.Pix
	for i := 3; i < len(dst); i += 4 {
		a := src[i]
		if a == 0 {
			continue
		}
		keep := uint32(255 - a)
		dst[i-3] = uint8(uint32(dst[i-3]) * keep / 255)
		dst[i-2] = uint8(uint32(dst[i-2]) * keep / 255)
		dst[i-1] = uint8(uint32(dst[i-1]) * keep / 255)
		dst[i] = uint8(uint32(dst[i]) * keep / 255)
	}
}

func rectPath(r scene.Rect) rasterx.Path {
	var p rasterx.Path
	p.Start(fixedPoint(r.X, r.Y))
	p.Line(fixedPoint(r.X+r.Width, r.Y))
	p.Line(fixedPoint(r.X+r.Width, r.Y+r.Height))
	p.Line(fixedPoint(r.X, r.Y+r.Height))
	p.Stop(true)
	return p
}

// StrokeRect outlines r.
func (c *Canvas) StrokeRect(r scene.Rect, col color.Color, width float64) {
	c.strokePath(rectPath(r), col, width, "butt", "miter", nil)
}

// FillRect fills r.
func (c *Canvas) FillRect(r scene.Rect, col color.Color) {
	c.fillPath(rectPath(r), col)
}

// DashedRect outlines r with the given dash pattern.
func (c *Canvas) DashedRect(r scene.Rect, col color.Color, width float64, dashes []float64) {
	c.strokePath(rectPath(r), col, width, "butt", "miter", dashes)
}

func circlePath(cx, cy, r float64) rasterx.Path {
	k := r * kappa
	var p rasterx.Path
	p.Start(fixedPoint(cx+r, cy))
	p.CubeBezier(fixedPoint(cx+r, cy+k), fixedPoint(cx+k, cy+r), fixedPoint(cx, cy+r))
	p.CubeBezier(fixedPoint(cx-k, cy+r), fixedPoint(cx-r, cy+k), fixedPoint(cx-r, cy))
	p.CubeBezier(fixedPoint(cx-r, cy-k), fixedPoint(cx-k, cy-r), fixedPoint(cx, cy-r))
	p.CubeBezier(fixedPoint(cx+k, cy-r), fixedPoint(cx+r, cy-k), fixedPoint(cx+r, cy))
	p.Stop(true)
	return p
}

// StrokeCircle outlines the circle centered at (cx, cy).
func (c *Canvas) StrokeCircle(cx, cy, r float64, col color.Color, width float64) {
	if r <= 0 {
		return
	}
	c.strokePath(circlePath(cx, cy, r), col, width, "butt", "round", nil)
}

// FillCircle fills the circle centered at (cx, cy).
func (c *Canvas) FillCircle(cx, cy, r float64, col color.Color) {
	if r <= 0 {
		return
	}
	c.fillPath(circlePath(cx, cy, r), col)
}

// Line strokes a straight segment.
func (c *Canvas) Line(x1, y1, x2, y2 float64, col color.Color, width float64) {
	var p rasterx.Path
	p.Start(fixedPoint(x1, y1))
	p.Line(fixedPoint(x2, y2))
	p.Stop(false)
	c.strokePath(p, col, width, "round", "round", nil)
}

var (
	fontOnce   sync.Once
	fontParsed *opentype.Font
	fontErr    error

	faceMu    sync.Mutex
	faceCache = map[float64]font.Face{}
)

func fontFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontParsed, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faceCache[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(fontParsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	faceCache[size] = f
	return f, nil
}

// DrawString paints a single text line with its top-left corner at (x, y).
func (c *Canvas) DrawString(text string, x, y float64, col color.Color, size float64) error {
	if size <= 0 {
		size = 16
	}
	face, err := fontFace(size)
	if err != nil {
		return err
	}
	metrics := face.Metrics()
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y) + metrics.Ascent},
	}
	d.DrawString(text)
	return nil
}

// DrawImage scales src into bounds, rotated about the bounds center, and
// composites it with the given opacity.
func (c *Canvas) DrawImage(src image.Image, bounds scene.Rect, rotation, opacity float64) {
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw <= 0 || sh <= 0 || bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}
	sx := bounds.Width / sw
	sy := bounds.Height / sh
	cx := bounds.X + bounds.Width/2
	cy := bounds.Y + bounds.Height/2
	rad := rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	m := f64.Aff3{
		cos * sx, -sin * sy, cx - cos*bounds.Width/2 + sin*bounds.Height/2,
		sin * sx, cos * sy, cy - sin*bounds.Width/2 - cos*bounds.Height/2,
	}

	dst := c.img
	if opacity < 1 {
		tmp := image.NewRGBA(c.img.Bounds())
		xdraw.ApproxBiLinear.Transform(tmp, m, src, sb, xdraw.Over, nil)
		a := uint8(math.Round(clamp01(opacity) * 255))
		xdraw.DrawMask(c.img, c.img.Bounds(), tmp, image.Point{}, image.NewUniform(color.Alpha{A: a}), image.Point{}, xdraw.Over)
		return
	}
	xdraw.ApproxBiLinear.Transform(dst, m, src, sb, xdraw.Over, nil)
}

// DrawImageFit letterboxes src into the canvas: scaled to fit while keeping
// its aspect ratio and centered on both axes.
func (c *Canvas) DrawImageFit(src image.Image) {
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw <= 0 || sh <= 0 {
		return
	}
	scale := math.Min(float64(c.w)/sw, float64(c.h)/sh)
	dw, dh := sw*scale, sh*scale
	x := (float64(c.w) - dw) / 2
	y := (float64(c.h) - dh) / 2
	target := image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+dw)), int(math.Round(y+dh)))
	xdraw.ApproxBiLinear.Scale(c.img, target, src, sb, xdraw.Over, nil)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseColor resolves a CSS-style color string to a concrete color, with the
// alpha channel scaled by opacity. Supported forms: #rgb, #rrggbb, #rrggbbaa
// and a handful of names. Unparseable input yields opaque black.
func ParseColor(s string, opacity float64) color.Color {
	opacity = clamp01(opacity)
	r, g, b, a := parseColorChannels(s)
	a = uint8(math.Round(float64(a) * opacity))
	// premultiplied storage
	return color.RGBA{
		R: uint8(uint32(r) * uint32(a) / 255),
		G: uint8(uint32(g) * uint32(a) / 255),
		B: uint8(uint32(b) * uint32(a) / 255),
		A: a,
	}
}

func parseColorChannels(s string) (r, g, b, a uint8) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "black":
		return 0, 0, 0, 255
	case "white":
		return 255, 255, 255, 255
	case "red":
		return 255, 0, 0, 255
	case "green":
		return 0, 128, 0, 255
	case "blue":
		return 0, 0, 255, 255
	case "transparent":
		return 0, 0, 0, 0
	}
	if !strings.HasPrefix(s, "#") {
		return 0, 0, 0, 255
	}
	hexByte := func(h string) uint8 {
		v, err := strconv.ParseUint(h, 16, 8)
		if err != nil {
			return 0
		}
		return uint8(v)
	}
	switch len(s) {
	case 4: // #rgb
		return hexByte(s[1:2] + s[1:2]), hexByte(s[2:3] + s[2:3]), hexByte(s[3:4] + s[3:4]), 255
	case 7: // #rrggbb
		return hexByte(s[1:3]), hexByte(s[3:5]), hexByte(s[5:7]), 255
	case 9: // #rrggbbaa
		return hexByte(s[1:3]), hexByte(s[3:5]), hexByte(s[5:7]), hexByte(s[7:9])
	}
	return 0, 0, 0, 255
}
