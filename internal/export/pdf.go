/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls PDF export behavior. Units are points.
type PDFOptions struct {
	Title string
	// DPI maps frame pixels to page points; 0 means 96.
	DPI float64
}

// WritePDF places the flattened frame on a single PDF page sized to the
// frame and writes it to outPath.
func WritePDF(img image.Image, outPath string, opt PDFOptions) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = 96
	}
	bounds := img.Bounds()
	scale := 72.0 / dpi
	pageW := float64(bounds.Dx()) * scale
	pageH := float64(bounds.Dy()) * scale

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
		OrientationStr: "",
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

	pngData, err := PNGBytes(img)
	if err != nil {
		return err
	}
	imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("frame", imgOpt, bytes.NewReader(pngData))
	pdf.ImageOptions("frame", 0, 0, pageW, pageH, false, imgOpt, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("compose pdf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}
