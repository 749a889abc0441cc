/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gocharmap/internal/domain"
)

//go:embed schema/document.schema.json
var documentSchema []byte

// ErrInvalidDocument is returned when a document fails schema or field
// validation.
var ErrInvalidDocument = errors.New("invalid document")

var schemaLoader = gojsonschema.NewBytesLoader(documentSchema)

// DocumentSchema returns the embedded JSON schema of the document format.
func DocumentSchema() []byte { return append([]byte(nil), documentSchema...) }

// ValidateJSON checks raw document JSON against the embedded schema.
func ValidateJSON(data []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateDocument checks field constraints and id uniqueness. Edges with a
// dangling endpoint are allowed; they are skipped when drawn.
func ValidateDocument(doc domain.Document) error {
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	nodes := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if nodes[n.ID] {
			return fmt.Errorf("%w: duplicate character id %q", ErrInvalidDocument, n.ID)
		}
		nodes[n.ID] = true
	}
	edges := make(map[string]bool, len(doc.Edges))
	for _, e := range doc.Edges {
		if edges[e.ID] {
			return fmt.Errorf("%w: duplicate connection id %q", ErrInvalidDocument, e.ID)
		}
		edges[e.ID] = true
	}
	return nil
}
