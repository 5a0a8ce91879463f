/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitJSONFileLogging(t *testing.T) {
	fpath := filepath.Join(os.TempDir(), fmt.Sprintf("drw_log_%d.json", time.Now().UnixNano()))
	t.Cleanup(func() { _ = os.Remove(fpath) })

	Init(Options{Level: "debug", Format: "json", File: fpath})
	l := WithOperation(WithComponent("testcomp"), "op1")
	l.Info("hello world", slog.String("k", "v"))

	time.Sleep(50 * time.Millisecond)
	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	scanner := bufio.NewScanner(strings.NewReader(string(b)))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines written")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if m["component"] != "testcomp" || m["op"] != "op1" || m["k"] != "v" {
		t.Fatalf("missing attributes in %v", m)
	}
	if m["app"] != "drawover" {
		t.Fatalf("missing static app attribute in %v", m)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DRW_LOG_LEVEL", "warn")
	t.Setenv("DRW_LOG_FORMAT", "json")
	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("DRW_SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{level: slog.LevelWarn, w: &buf}
	if h.Enabled(nil, slog.LevelInfo) {
		t.Fatalf("info must be filtered at warn level")
	}
	l := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "c")}))
	l.Warn("careful", slog.Int("n", 3))
	out := buf.String()
	if !strings.Contains(out, "WRN") || !strings.Contains(out, "careful") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "component=c") || !strings.Contains(out, "n=3") {
		t.Fatalf("attributes missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug") != slog.LevelDebug || parseLevel("warning") != slog.LevelWarn {
		t.Fatalf("level parsing broken")
	}
	if parseLevel("bogus") != slog.LevelInfo {
		t.Fatalf("unknown level must default to info")
	}
}
