/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import "sort"

// Selection is the set of selected tile ids.
type Selection struct {
	ids map[string]struct{}
}

func (s *Selection) ensure() {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
}

// Primary replaces the selection with id.
func (s *Selection) Primary(id string) {
	s.ids = map[string]struct{}{id: {}}
}

// Toggle adds or removes id.
func (s *Selection) Toggle(id string) {
	s.ensure()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAll replaces the selection with ids.
func (s *Selection) SelectAll(ids []string) {
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) Clear() { s.ids = nil }

func (s *Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids in sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Set returns the selection as a lookup map.
func (s *Selection) Set() map[string]bool {
	out := make(map[string]bool, len(s.ids))
	for id := range s.ids {
		out[id] = true
	}
	return out
}

// MoveGroup is the set of tiles a drag anchored on anchor moves: the whole
// selection when it contains anchor, otherwise anchor alone.
func (s *Selection) MoveGroup(anchor string) []string {
	if s.Contains(anchor) {
		return s.IDs()
	}
	return []string{anchor}
}
