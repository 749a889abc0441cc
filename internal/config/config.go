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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type CanvasConfig struct {
	GridUnit   float64 `yaml:"grid_unit" validate:"gt=0"`
	TileWidth  float64 `yaml:"tile_width" validate:"gt=0"`
	TileHeight float64 `yaml:"tile_height" validate:"gt=0"`
	Width      int     `yaml:"width" validate:"gte=1"`  // grid units
	Height     int     `yaml:"height" validate:"gte=1"` // grid units
}

type GuidesConfig struct {
	ToleranceDeg float64   `yaml:"tolerance_deg" validate:"gt=0,lte=45"`
	Angles       []float64 `yaml:"angles" validate:"min=1,dive,gte=0,lt=360"`
	HintLength   float64   `yaml:"hint_length" validate:"gt=0"`
}

type LabelsConfig struct {
	Height     float64 `yaml:"height" validate:"gt=0"`
	PaddingX   float64 `yaml:"padding_x" validate:"gte=0"`
	EdgeOffset float64 `yaml:"edge_offset" validate:"gte=0"`
	MinWidth   float64 `yaml:"min_width" validate:"gte=0"`
	CharWidth  float64 `yaml:"char_width" validate:"gt=0"`
}

type EditorConfig struct {
	DragQuantize      string `yaml:"drag_quantize" validate:"oneof=carry discard"`
	ClampToCanvas     bool   `yaml:"clamp_to_canvas"`
	ReindexLabels     bool   `yaml:"reindex_labels"`
	UndoMaxBytes      int    `yaml:"undo_max_bytes" validate:"gte=0"`
	UndoMaxSteps      int    `yaml:"undo_max_steps" validate:"gte=0"`
	UndoMinIntervalMs int    `yaml:"undo_min_interval_ms" validate:"gte=0"`
}

type StorageConfig struct {
	DraftDB    string `yaml:"draft_db"` // empty means the user cache dir
	DraftKey   string `yaml:"draft_key"`
	KeepDrafts int    `yaml:"keep_drafts" validate:"gte=0"`
}

type PublishConfig struct {
	Provider     string `yaml:"provider" validate:"omitempty,oneof=github postgres"`
	Owner        string `yaml:"owner"`
	Repo         string `yaml:"repo"`
	Branch       string `yaml:"branch"`
	Path         string `yaml:"path"`
	APIURL       string `yaml:"api_url" validate:"omitempty,url"`
	TimeoutMs    int    `yaml:"timeout_ms" validate:"gte=0"`
	SnapshotName string `yaml:"snapshot_name"`
	// PostgresDSN may carry credentials; prefer the GCM_PG_DSN environment variable.
	PostgresDSN string `yaml:"postgres_dsn"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Guides        GuidesConfig  `yaml:"guides"`
	Labels        LabelsConfig  `yaml:"labels"`
	Editor        EditorConfig  `yaml:"editor"`
	Storage       StorageConfig `yaml:"storage"`
	Publish       PublishConfig `yaml:"publish"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{GridUnit: 20, TileWidth: 100, TileHeight: 160, Width: 50, Height: 40},
		Guides:        GuidesConfig{ToleranceDeg: 6, Angles: []float64{0, 45, 90, 135, 180, 225, 270, 315}, HintLength: 2000},
		Labels:        LabelsConfig{Height: 16, PaddingX: 4, EdgeOffset: 5, MinWidth: 40, CharWidth: 6},
		Editor:        EditorConfig{DragQuantize: "carry", UndoMaxBytes: 16 << 20, UndoMaxSteps: 200, UndoMinIntervalMs: 0},
		Storage:       StorageConfig{DraftKey: "character-map-builder.v3", KeepDrafts: 50},
		Publish:       PublishConfig{Branch: "main", Path: "data.json", APIURL: "https://api.github.com", TimeoutMs: 10000, SnapshotName: "default"},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile = "GCM_CONFIG"

	EnvCanvasWidth   = "GCM_CANVAS_WIDTH"
	EnvCanvasHeight  = "GCM_CANVAS_HEIGHT"
	EnvGuideTol      = "GCM_GUIDE_TOLERANCE"
	EnvDragQuantize  = "GCM_DRAG_QUANTIZE"
	EnvClampToCanvas = "GCM_CLAMP_TO_CANVAS"
	EnvDraftDB       = "GCM_DRAFT_DB"

	EnvPublishProvider = "GCM_PUBLISH_PROVIDER"
	EnvPublishOwner    = "GCM_PUBLISH_OWNER"
	EnvPublishRepo     = "GCM_PUBLISH_REPO"
	EnvPublishBranch   = "GCM_PUBLISH_BRANCH"
	EnvPublishPath     = "GCM_PUBLISH_PATH"
	EnvPublishAPIURL   = "GCM_PUBLISH_API_URL"
	EnvPublishToken    = "GCM_PUBLISH_TOKEN"
	EnvPostgresDSN     = "GCM_PG_DSN"

	// EnvLogLevel Logging envs
	EnvLogLevel  = "GCM_LOG_LEVEL"
	EnvLogFormat = "GCM_LOG_FORMAT"
	EnvLogSource = "GCM_LOG_SOURCE"
	EnvLogFile   = "GCM_LOG_FILE"
)

// ConfigPath returns the per-user config file path. GCM_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoCharMap")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoCharMap")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gocharmap")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present) over the defaults, merges
// environment overrides and validates the result. The publish token is read
// from the keyring, or from GCM_PUBLISH_TOKEN, and returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), "", fmt.Errorf("parse %s: %w", path, err)
		}
	}
	normalize(&cfg)
	applyEnvOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, "", err
	}
	tok := strings.TrimSpace(os.Getenv(EnvPublishToken))
	if tok == "" {
		tok, _ = tokenStore.Get(keyringService, keyringToken)
	}
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

var validate = validator.New()

// Validate checks value ranges and enumerations.
func Validate(cfg AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func normalize(cfg *AppConfig) {
	lower := func(s *string) { *s = strings.ToLower(strings.TrimSpace(*s)) }
	lower(&cfg.Editor.DragQuantize)
	lower(&cfg.Publish.Provider)
	lower(&cfg.Logging.Level)
	lower(&cfg.Logging.Format)
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	cfg.Storage.DraftDB = strings.TrimSpace(cfg.Storage.DraftDB)
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvCanvasWidth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Width = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasHeight)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Height = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvGuideTol)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Guides.ToleranceDeg = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDragQuantize)); v != "" {
		cfg.Editor.DragQuantize = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvClampToCanvas)); v != "" {
		cfg.Editor.ClampToCanvas = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDraftDB)); v != "" {
		cfg.Storage.DraftDB = v
	}
	// publish overrides
	if v := strings.TrimSpace(os.Getenv(EnvPublishProvider)); v != "" {
		cfg.Publish.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPublishOwner)); v != "" {
		cfg.Publish.Owner = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPublishRepo)); v != "" {
		cfg.Publish.Repo = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPublishBranch)); v != "" {
		cfg.Publish.Branch = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPublishPath)); v != "" {
		cfg.Publish.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPublishAPIURL)); v != "" {
		cfg.Publish.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		cfg.Publish.PostgresDSN = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"canvas.width":           EnvCanvasWidth,
	"canvas.height":          EnvCanvasHeight,
	"guides.tolerance_deg":   EnvGuideTol,
	"editor.drag_quantize":   EnvDragQuantize,
	"editor.clamp_to_canvas": EnvClampToCanvas,
	"storage.draft_db":       EnvDraftDB,
	"publish.provider":       EnvPublishProvider,
	"publish.owner":          EnvPublishOwner,
	"publish.repo":           EnvPublishRepo,
	"publish.branch":         EnvPublishBranch,
	"publish.path":           EnvPublishPath,
	"publish.api_url":        EnvPublishAPIURL,
	"publish.postgres_dsn":   EnvPostgresDSN,
	"logging.level":          EnvLogLevel,
	"logging.format":         EnvLogFormat,
	"logging.source":         EnvLogSource,
	"logging.file":           EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
