/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SceneMeta is the listing projection of an archived scene.
type SceneMeta struct {
	ID        int64     `json:"id"`
	StableID  string    `json:"stable_id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// SceneEnvelope is the full fetch response including the document blob.
type SceneEnvelope struct {
	ID        int64           `json:"id"`
	StableID  string          `json:"stable_id"`
	Name      string          `json:"name"`
	Document  json.RawMessage `json:"document"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Client is a minimal HTTP client for the archive API, used by the desktop
// app under a feature flag.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a backend client. A trailing slash on baseURL is
// normalized away.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// ListScenes returns the archived scenes, newest first.
func (c *Client) ListScenes(ctx context.Context) ([]SceneMeta, error) {
	var list []SceneMeta
	if err := c.doJSON(ctx, http.MethodGet, "/api/scenes", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchScene retrieves the full scene document by id.
func (c *Client) FetchScene(ctx context.Context, id int64) (*SceneEnvelope, error) {
	var env SceneEnvelope
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/scenes/%d", id), nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PushScene uploads a scene document under the given stable id. The server
// bumps the version on conflict.
func (c *Client) PushScene(ctx context.Context, stableID, name string, document []byte) (int64, error) {
	req := map[string]any{
		"stable_id": stableID,
		"name":      name,
		"document":  json.RawMessage(document),
	}
	var resp struct {
		ID      int64 `json:"id"`
		Version int64 `json:"version"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/scenes", req, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}
