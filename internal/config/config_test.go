/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"testing"
)

type stubTokenStore struct{ tokens map[string]string }

func (s *stubTokenStore) Get(service, key string) (string, error) {
	v, ok := s.tokens[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (s *stubTokenStore) Set(service, key, value string) error {
	s.tokens[service+"/"+key] = value
	return nil
}
func (s *stubTokenStore) Delete(service, key string) error {
	delete(s.tokens, service+"/"+key)
	return nil
}

func useStubKeyring(t *testing.T) *stubTokenStore {
	t.Helper()
	stub := &stubTokenStore{tokens: map[string]string{}}
	prev := SetTokenStore(stub)
	t.Cleanup(func() { SetTokenStore(prev) })
	return stub
}

func TestEnvOverridesBackendURL(t *testing.T) {
	useStubKeyring(t)
	t.Setenv(EnvBackendURL, "https://example.test:8443")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	useStubKeyring(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestEnvOverridesCanvasSize(t *testing.T) {
	useStubKeyring(t)
	t.Setenv(EnvCanvasWidth, "640")
	t.Setenv(EnvCanvasHeight, "360")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Canvas.Width != 640 || cfg.Canvas.Height != 360 {
		t.Fatalf("canvas size overrides not applied: %#v", cfg.Canvas)
	}
}

func TestMergeIncludesCanvas(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Canvas.Width = 1920
	src.Canvas.BrushColor = "#112233"
	src.Canvas.SelectionAccent = "#ff00ff"
	mergeInto(&dst, &src)
	if dst.Canvas.Width != 1920 || dst.Canvas.BrushColor != "#112233" || dst.Canvas.SelectionAccent != "#ff00ff" {
		t.Fatalf("canvas fields not merged correctly: %#v", dst.Canvas)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.File = "/tmp/drw.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || dst.Logging.File != "/tmp/drw.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	useStubKeyring(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogFile, "/tmp/drw-env.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || cfg.Logging.File != "/tmp/drw-env.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestTokenRoundTripThroughStore(t *testing.T) {
	stub := useStubKeyring(t)
	if err := tokenStore.Set(keyringService, keyringToken, "secret"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	_, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "secret" {
		t.Fatalf("token not loaded from store, got %q", tok)
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("delete token: %v", err)
	}
	if len(stub.tokens) != 0 {
		t.Fatalf("token not removed")
	}
}
