/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact turns pointer and keyboard events into mutations of a
// diagram. It owns selection and the active interaction session and talks to
// storage only through the Store interface.
package interact

import "gocharmap/internal/domain"

// Store owns the node and edge lists. Implementations must return lists the
// caller may not retain across replacements; intents copy before mutating.
type Store interface {
	ListNodes() []domain.Node
	ListEdges() []domain.Edge
	ReplaceNodes([]domain.Node)
	ReplaceEdges([]domain.Edge)
}

// SelectionSink is implemented by stores that want to observe the tile
// selection, e.g. to drive an inspector panel.
type SelectionSink interface {
	SetSelection(ids []string)
}
