/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "testing"

func TestRectContainsInclusiveEdges(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Point{10, 20}) || !r.Contains(Point{110, 70}) {
		t.Fatalf("edge points must count as inside")
	}
	if r.Contains(Point{9.99, 20}) || r.Contains(Point{110.01, 70}) {
		t.Fatalf("points outside must not be contained")
	}
}

func TestRectOutset(t *testing.T) {
	r := R(10, 10, 20, 20).Outset(2)
	if r.X != 8 || r.Y != 8 || r.Width != 24 || r.Height != 24 {
		t.Fatalf("unexpected outset: %+v", r)
	}
}

func TestBoundsFromPoints(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 10}}
	b := BoundsFromPoints(pts, 1)
	if b.X != -1 || b.Y != -1 || b.Width != 12 || b.Height != 12 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestBoundsFromPointsSinglePoint(t *testing.T) {
	b := BoundsFromPoints([]Point{{5, 7}}, 3)
	if b.X != 2 || b.Y != 4 || b.Width != 6 || b.Height != 6 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}
