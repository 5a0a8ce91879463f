/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"drawover/internal/scene"
)

func testDocument(name string) scene.Document {
	s := scene.NewStore()
	s.AddStroke([]scene.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}, scene.StrokeStyle{Color: "#df4b26", Width: 5, Cap: "round"})
	s.AddText("note", scene.Point{X: 20, Y: 20}, scene.TextStyle{Font: "16px sans-serif", Fill: "#000"})
	return s.Document(name)
}

func TestInitProjectScaffolds(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	ph, err := InitProject(root, testDocument("demo"))
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	for _, d := range []string{"assets", "exports", BackupsDirName} {
		if fi, err := os.Stat(filepath.Join(root, d)); err != nil || !fi.IsDir() {
			t.Fatalf("missing subdir %s: %v", d, err)
		}
	}
	if _, err := os.Stat(ph.ManifestPath); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
}

func TestOpenRoundTrip(t *testing.T) {
	root := t.TempDir()
	if _, err := InitProject(root, testDocument("demo")); err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	ph, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ph.Doc.Name != "demo" || len(ph.Doc.Objects) != 2 {
		t.Fatalf("document did not survive the round trip: %+v", ph.Doc)
	}
}

func TestSaveCreatesBackup(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, testDocument("v1"))
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	ph.Doc.Name = "v2"
	if err := Save(ph); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil || len(ents) == 0 {
		t.Fatalf("no backup written: %v", err)
	}
}

func TestOpenFallsBackToBackup(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, testDocument("good"))
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	// second save creates a backup of the good manifest
	if err := Save(ph); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(ph.ManifestPath, []byte("{ corrupted"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}
	re, err := Open(root)
	if err != nil {
		t.Fatalf("Open with backup should succeed: %v", err)
	}
	if re.Doc.Name != "good" {
		t.Fatalf("backup not used, got %q", re.Doc.Name)
	}
}

func TestWriteAutosave(t *testing.T) {
	root := t.TempDir()
	if err := WriteAutosave(root, testDocument("crashing")); err != nil {
		t.Fatalf("WriteAutosave: %v", err)
	}
	data, err := os.ReadFile(AutosavePath(root))
	if err != nil {
		t.Fatalf("autosave missing: %v", err)
	}
	doc, err := scene.DecodeDocument(data)
	if err != nil || doc.Name != "crashing" {
		t.Fatalf("autosave unreadable: %v %+v", err, doc)
	}
}
