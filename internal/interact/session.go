/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import "gocharmap/internal/vector"

// SessionKind tags the active interaction.
type SessionKind uint8

const (
	SessionIdle SessionKind = iota
	SessionWaypointDrag
	SessionLabelDrag
	SessionGroupDrag
)

func (k SessionKind) String() string {
	switch k {
	case SessionWaypointDrag:
		return "waypoint-drag"
	case SessionLabelDrag:
		return "label-drag"
	case SessionGroupDrag:
		return "group-drag"
	default:
		return "idle"
	}
}

// Session is the single active interaction. At most one exists at a time;
// pointer-up always returns to Idle.
type Session interface {
	Kind() SessionKind
}

type Idle struct{}

func (Idle) Kind() SessionKind { return SessionIdle }

// WaypointDrag moves one waypoint of an edge with the pointer.
type WaypointDrag struct {
	EdgeID string
	Index  int
}

func (WaypointDrag) Kind() SessionKind { return SessionWaypointDrag }

// LabelDrag retargets one label to the nearest point of its edge.
type LabelDrag struct {
	EdgeID  string
	LabelID string
}

func (LabelDrag) Kind() SessionKind { return SessionLabelDrag }

// GroupDrag translates tiles in grid steps. Ref is the pointer position the
// next delta is measured from.
type GroupDrag struct {
	AnchorID string
	Ref      vector.Pt
	Moved    bool
	Toggled  bool // selection was toggled on pointer-down
}

func (GroupDrag) Kind() SessionKind { return SessionGroupDrag }
