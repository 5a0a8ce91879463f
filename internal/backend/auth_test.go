/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := signToken("secret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sub, err := verifyToken("secret", tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject lost, got %q", sub)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := signToken("secret", "alice", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyToken("secret", tok); err == nil {
		t.Fatalf("expired token must fail")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	tok, _ := signToken("secret", "alice", time.Now().Add(time.Hour))
	if _, err := verifyToken("other", tok); err == nil {
		t.Fatalf("wrong secret must fail")
	}
}

func TestWithAuthRequiresBearer(t *testing.T) {
	h := withAuth("secret", func(w http.ResponseWriter, r *http.Request, sub string) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(sub))
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/scenes", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token must get 401, got %d", rec.Code)
	}

	tok, _ := signToken("secret", "bob", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/api/scenes", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "bob" {
		t.Fatalf("valid token must pass the subject through, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestParseMigrationVersion(t *testing.T) {
	v, err := parseVersion("0001_init.sql")
	if err != nil || v != 1 {
		t.Fatalf("parseVersion: %v %d", err, v)
	}
	if _, err := parseVersion("init.sql"); err == nil {
		t.Fatalf("missing version prefix must fail")
	}
}
