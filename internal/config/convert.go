/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"context"
	"time"

	"gocharmap/internal/diagram"
	"gocharmap/internal/interact"
	applog "gocharmap/internal/log"
	"gocharmap/internal/publish"
	"gocharmap/internal/undo"
)

// Metrics returns the grid and tile geometry.
func (c AppConfig) Metrics() diagram.Metrics {
	return diagram.Metrics{GridUnit: c.Canvas.GridUnit, TileWidth: c.Canvas.TileWidth, TileHeight: c.Canvas.TileHeight}
}

func (c AppConfig) LabelMetrics() diagram.LabelMetrics {
	l := c.Labels
	return diagram.LabelMetrics{Height: l.Height, PaddingX: l.PaddingX, EdgeOffset: l.EdgeOffset, MinWidth: l.MinWidth, CharWidth: l.CharWidth}
}

func (c AppConfig) HintOptions() diagram.HintOptions {
	return diagram.HintOptions{
		ToleranceDeg: c.Guides.ToleranceDeg,
		Guides:       append([]float64(nil), c.Guides.Angles...),
		HalfLength:   c.Guides.HintLength,
	}
}

// EditorOptions returns the editor policies for a canvas of the configured size.
func (c AppConfig) EditorOptions() interact.Options {
	return interact.Options{
		Metrics:       c.Metrics(),
		Labels:        c.LabelMetrics(),
		Hints:         c.HintOptions(),
		Quantize:      interact.ParseQuantizeMode(c.Editor.DragQuantize),
		ClampToCanvas: c.Editor.ClampToCanvas,
		CanvasWidth:   c.Canvas.Width,
		CanvasHeight:  c.Canvas.Height,
		ReindexLabels: c.Editor.ReindexLabels,
	}
}

func (c AppConfig) UndoConfig() undo.Config {
	return undo.Config{
		MaxBytes:    c.Editor.UndoMaxBytes,
		MaxPerScope: c.Editor.UndoMaxSteps,
		MinInterval: time.Duration(c.Editor.UndoMinIntervalMs) * time.Millisecond,
	}
}

func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{Level: c.Logging.Level, Format: c.Logging.Format, AddSource: c.Logging.Source, File: c.Logging.File}
}

// GitHubOptions returns the publish settings for the GitHub provider.
func (c AppConfig) GitHubOptions(token string) publish.GitHubOptions {
	p := c.Publish
	return publish.GitHubOptions{
		APIURL:  p.APIURL,
		Owner:   p.Owner,
		Repo:    p.Repo,
		Branch:  p.Branch,
		Path:    p.Path,
		Token:   token,
		Timeout: time.Duration(p.TimeoutMs) * time.Millisecond,
	}
}

// PublishTimeout bounds one publish or fetch round trip. Zero in the
// config means the default of 30 seconds.
func (c AppConfig) PublishTimeout() time.Duration {
	if c.Publish.TimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(max(c.Publish.TimeoutMs, 1000)) * time.Millisecond
}

// OpenPublisher connects the configured publish provider. The returned
// close function releases its resources.
func (c AppConfig) OpenPublisher(ctx context.Context, token string) (publish.Publisher, func() error, error) {
	switch c.Publish.Provider {
	case "github":
		return publish.NewGitHubPublisher(c.GitHubOptions(token)), func() error { return nil }, nil
	case "postgres":
		if c.Publish.PostgresDSN == "" {
			return nil, nil, publish.ErrNotConfigured
		}
		p, err := publish.OpenPostgres(ctx, c.Publish.PostgresDSN, c.Publish.SnapshotName)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	return nil, nil, publish.ErrNotConfigured
}
