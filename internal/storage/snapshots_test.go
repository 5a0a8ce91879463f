/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func snapshotFixture(t *testing.T) *ProjectHandle {
	t.Helper()
	ph, err := InitProject(t.TempDir(), testDocument("snaps"))
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	return ph
}

func TestSaveAndLatestSnapshot(t *testing.T) {
	ph := snapshotFixture(t)
	ctx := context.Background()
	t0 := time.Now()
	if err := SaveSnapshot(ctx, ph, []byte("old"), t0.Add(-time.Minute)); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if err := SaveSnapshot(ctx, ph, []byte("new"), t0); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	blob, ts, err := LatestSnapshot(ctx, ph)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if !bytes.Equal(blob, []byte("new")) {
		t.Fatalf("latest snapshot wrong: %q", blob)
	}
	if ts.IsZero() {
		t.Fatalf("timestamp lost")
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	ph := snapshotFixture(t)
	blob, _, err := LatestSnapshot(context.Background(), ph)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if blob != nil {
		t.Fatalf("expected nil blob on empty index, got %q", blob)
	}
}

func TestListAndPruneSnapshots(t *testing.T) {
	ph := snapshotFixture(t)
	ctx := context.Background()
	t0 := time.Now()
	for i := 0; i < 5; i++ {
		if err := SaveSnapshot(ctx, ph, []byte{byte('a' + i)}, t0.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}
	list, err := ListSnapshots(ctx, ph, 3)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 3 || list[0].Blob[0] != 'e' {
		t.Fatalf("listing must be newest-first and limited: %+v", list)
	}
	if err := PruneSnapshots(ctx, ph, 2); err != nil {
		t.Fatalf("PruneSnapshots: %v", err)
	}
	list, err = ListSnapshots(ctx, ph, 10)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 2 || list[1].Blob[0] != 'd' {
		t.Fatalf("pruning must keep the newest two: %+v", list)
	}
}
