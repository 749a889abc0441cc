/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package publish shares a document with other viewers, either as a file in
// a GitHub repository or as versioned rows in a PostgreSQL database.
package publish

import (
	"context"
	"errors"

	"gocharmap/internal/domain"
)

var (
	// ErrNotConfigured is returned when required connection settings are missing.
	ErrNotConfigured = errors.New("publish target not configured")
	// ErrNoSnapshot is returned by Fetch when nothing was published yet.
	ErrNoSnapshot = errors.New("no published snapshot")
)

// Publisher uploads and downloads the shared copy of a document.
type Publisher interface {
	Publish(ctx context.Context, doc domain.Document, message string) error
	Fetch(ctx context.Context) (domain.Document, error)
}

// DefaultMessage is the commit message used when none is given.
const DefaultMessage = "Update character map"
