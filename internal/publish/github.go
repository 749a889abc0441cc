/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gocharmap/internal/domain"
	applog "gocharmap/internal/log"
	"gocharmap/internal/storage"
)

const (
	DefaultGitHubAPI = "https://api.github.com"
	DefaultBranch    = "main"
	DefaultPath      = "data.json"
)

// GitHubOptions configure the repository file a document is published to.
type GitHubOptions struct {
	APIURL  string
	Owner   string
	Repo    string
	Branch  string
	Path    string
	Token   string // bearer token with contents write access
	Timeout time.Duration
}

// GitHubPublisher stores the document as a JSON file through the GitHub
// contents API.
type GitHubPublisher struct {
	opts   GitHubOptions
	client *http.Client
	log    *slog.Logger
}

// NewGitHubPublisher fills defaults for API URL, branch, path and timeout.
func NewGitHubPublisher(opts GitHubOptions) *GitHubPublisher {
	opts.APIURL = strings.TrimRight(opts.APIURL, "/")
	if opts.APIURL == "" {
		opts.APIURL = DefaultGitHubAPI
	}
	if opts.Branch == "" {
		opts.Branch = DefaultBranch
	}
	opts.Path = strings.TrimLeft(opts.Path, "/")
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &GitHubPublisher{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		log:    applog.WithComponent("publish").With(slog.String("target", "github")),
	}
}

// statusError carries a non-2xx response.
type statusError struct {
	Method, Path string
	Code         int
	Status       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server %s %s: %s", e.Method, e.Path, e.Status)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

type contentFile struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

func (p *GitHubPublisher) contentsPath() string {
	return fmt.Sprintf("/repos/%s/%s/contents/%s", url.PathEscape(p.opts.Owner), url.PathEscape(p.opts.Repo), p.opts.Path)
}

func (p *GitHubPublisher) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(p.opts.APIURL + path)
	if err != nil {
		return err
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.opts.Token)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{Method: method, Path: u.Path, Code: resp.StatusCode, Status: resp.Status}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func (p *GitHubPublisher) get(ctx context.Context) (contentFile, error) {
	var f contentFile
	path := p.contentsPath() + "?ref=" + url.QueryEscape(p.opts.Branch)
	err := p.doJSON(ctx, http.MethodGet, path, nil, &f)
	return f, err
}

// Publish writes doc to the configured file, creating it when missing.
func (p *GitHubPublisher) Publish(ctx context.Context, doc domain.Document, message string) error {
	if p.opts.Owner == "" || p.opts.Repo == "" || p.opts.Token == "" {
		return ErrNotConfigured
	}
	if message == "" {
		message = DefaultMessage
	}
	var buf bytes.Buffer
	if err := storage.Export(&buf, doc); err != nil {
		return err
	}
	cur, err := p.get(ctx)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("look up %s: %w", p.opts.Path, err)
	}
	req := putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Branch:  p.opts.Branch,
		SHA:     cur.SHA,
	}
	if err := p.doJSON(ctx, http.MethodPut, p.contentsPath(), req, nil); err != nil {
		p.log.Error("publish failed", slog.Any("err", err))
		return fmt.Errorf("publish %s: %w", p.opts.Path, err)
	}
	p.log.Info("published", slog.String("repo", p.opts.Owner+"/"+p.opts.Repo), slog.String("path", p.opts.Path), slog.Bool("created", cur.SHA == ""))
	return nil
}

// Fetch downloads and validates the published document.
func (p *GitHubPublisher) Fetch(ctx context.Context) (domain.Document, error) {
	if p.opts.Owner == "" || p.opts.Repo == "" {
		return domain.Document{}, ErrNotConfigured
	}
	f, err := p.get(ctx)
	if isNotFound(err) {
		return domain.Document{}, ErrNoSnapshot
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("fetch %s: %w", p.opts.Path, err)
	}
	if f.Encoding != "" && f.Encoding != "base64" {
		return domain.Document{}, fmt.Errorf("fetch %s: unsupported encoding %q", p.opts.Path, f.Encoding)
	}
	// the API wraps base64 content at 60 columns
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(f.Content, "\n", ""))
	if err != nil {
		return domain.Document{}, fmt.Errorf("decode content: %w", err)
	}
	return storage.Decode(raw)
}
