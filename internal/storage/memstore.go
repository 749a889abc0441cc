/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"sync"

	"gocharmap/internal/domain"
)

// MemoryStore holds a document in memory for the editor. Lists are copied
// on read and on replace so callers never share backing arrays with it.
// It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	doc       domain.Document
	selection []string
	onChange  func()
}

// NewMemoryStore returns a store over a copy of doc.
func NewMemoryStore(doc domain.Document) *MemoryStore {
	doc.Normalize()
	return &MemoryStore{doc: doc.Clone()}
}

// OnChange registers fn to be called after every replace.
func (s *MemoryStore) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *MemoryStore) ListNodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneNodes(s.doc.Nodes)
}

func (s *MemoryStore) ListEdges() []domain.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneEdges(s.doc.Edges)
}

func (s *MemoryStore) ReplaceNodes(nodes []domain.Node) {
	s.mu.Lock()
	s.doc.Nodes = domain.CloneNodes(nodes)
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *MemoryStore) ReplaceEdges(edges []domain.Edge) {
	s.mu.Lock()
	s.doc.Edges = domain.CloneEdges(edges)
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetSelection records the editor's tile selection.
func (s *MemoryStore) SetSelection(ids []string) {
	s.mu.Lock()
	s.selection = append([]string(nil), ids...)
	s.mu.Unlock()
}

// Selection returns the last selection reported by the editor.
func (s *MemoryStore) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selection...)
}

// Document returns a deep copy of the whole document.
func (s *MemoryStore) Document() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// SetDocument replaces the whole document, e.g. after loading a draft.
func (s *MemoryStore) SetDocument(doc domain.Document) {
	doc.Normalize()
	s.mu.Lock()
	s.doc = doc.Clone()
	s.selection = nil
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
