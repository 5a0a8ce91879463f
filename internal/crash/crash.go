/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics into crash reports plus a best-effort autosave
// of the open project, so work survives a hard failure.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "drawover/internal/log"
	"drawover/internal/storage"
	"drawover/internal/telemetry"
	"drawover/internal/version"
)

// exitFn is swapped out in tests.
var exitFn = os.Exit

// Recover is meant to be deferred at the top of main (and long-lived
// goroutines). On panic it writes a crash report, autosaves the project if a
// handle is present, optionally uploads the report, and exits with code 2.
func Recover(ph *storage.ProjectHandle) {
	r := recover()
	if r == nil {
		return
	}
	stack := debug.Stack()
	log := applog.WithComponent("crash")
	log.Error("panic", slog.Any("panic", r))

	report := buildReport(ph, r, stack)
	path, werr := writeReport(ph, report)
	if werr != nil {
		fmt.Fprintf(os.Stderr, "drawover: failed to write crash report: %v\n", werr)
	} else {
		fmt.Fprintf(os.Stderr, "drawover: crash report written to %s\n", path)
	}

	if ph != nil {
		if apath, aerr := storage.AutosaveCrashSnapshot(ph); aerr != nil {
			fmt.Fprintf(os.Stderr, "drawover: autosave failed: %v\n", aerr)
		} else {
			fmt.Fprintf(os.Stderr, "drawover: scene autosaved to %s\n", apath)
		}
	}

	telemetry.UploadCrash(report)

	fmt.Fprintf(os.Stderr, "drawover: fatal error, see report above\n")
	exitFn(2)
}

func buildReport(ph *storage.ProjectHandle, r any, stack []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "drawover crash report\n")
	fmt.Fprintf(&buf, "time: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, "version: %s\n", version.String())
	fmt.Fprintf(&buf, "os: %s arch: %s go: %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	if ph != nil {
		fmt.Fprintf(&buf, "project root: %s\n", ph.Root)
		fmt.Fprintf(&buf, "manifest: %s\n", ph.ManifestPath)
	}
	fmt.Fprintf(&buf, "panic: %v\n\n", r)
	buf.Write(stack)
	return buf.Bytes()
}

// writeReport places the report in the project's backups folder when a
// project is open, otherwise in the OS temp dir.
func writeReport(ph *storage.ProjectHandle, report []byte) (string, error) {
	dir := os.TempDir()
	if ph != nil && ph.Root != "" {
		dir = filepath.Join(ph.Root, storage.BackupsDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			dir = os.TempDir()
		}
	}
	name := fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
