/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"bytes"
	"image"
	"sync"

	// register the decoders the host hands us bytes for
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ImageHandle owns a decoded raster image. Decoding runs off the UI thread;
// the renderer polls Image and skips the object until the decode finished.
// A handle is never shared between two objects.
type ImageHandle struct {
	mu   sync.Mutex
	img  image.Image
	err  error
	done bool
}

// NewImageHandle starts decoding data in the background and returns the
// handle immediately. A decode failure leaves the handle permanently
// not-ready; the object simply never paints.
func NewImageHandle(data []byte) *ImageHandle {
	h := &ImageHandle{}
	go func() {
		img, _, err := image.Decode(bytes.NewReader(data))
		h.mu.Lock()
		h.img, h.err, h.done = img, err, true
		h.mu.Unlock()
	}()
	return h
}

// DecodedHandle wraps an already-decoded image, mainly for tests.
func DecodedHandle(img image.Image) *ImageHandle {
	return &ImageHandle{img: img, done: true}
}

// Image returns the decoded image and whether it is ready to draw.
func (h *ImageHandle) Image() (image.Image, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done || h.err != nil || h.img == nil {
		return nil, false
	}
	return h.img, true
}

// Err returns the decode error, if any.
func (h *ImageHandle) Err() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}
