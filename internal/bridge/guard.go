/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bridge

import (
	"sync"
	"time"
)

// Guard is a timer-scoped protection window. Each Hold opens a window that
// closes on its own after the given duration; the guard reports active while
// at least one window is still open, so overlapping holds extend protection
// without canceling each other.
type Guard struct {
	mu    sync.Mutex
	count int
}

// Hold opens a protection window for d.
func (g *Guard) Hold(d time.Duration) {
	g.mu.Lock()
	g.count++
	g.mu.Unlock()
	time.AfterFunc(d, func() {
		g.mu.Lock()
		g.count--
		g.mu.Unlock()
	})
}

// Active reports whether any window is open.
func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count > 0
}
