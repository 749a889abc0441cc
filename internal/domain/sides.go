/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// AnchorSide selects where an edge attaches to a tile.
// The zero value is SideCenter.
type AnchorSide uint8

const (
	SideCenter AnchorSide = iota
	SideTop
	SideBottom
	SideLeft
	SideRight
)

var anchorSideNames = [...]string{"center", "top", "bottom", "left", "right"}

func (s AnchorSide) String() string {
	if int(s) < len(anchorSideNames) {
		return anchorSideNames[s]
	}
	return anchorSideNames[SideCenter]
}

// ParseAnchorSide maps a name to a side. Unknown names yield SideCenter.
func ParseAnchorSide(name string) AnchorSide {
	for i, n := range anchorSideNames {
		if n == name {
			return AnchorSide(i)
		}
	}
	return SideCenter
}

func (s AnchorSide) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *AnchorSide) UnmarshalText(b []byte) error {
	*s = ParseAnchorSide(string(b))
	return nil
}

// LabelSide selects how a label box is offset from its path point.
// The zero value is LabelAuto, which offsets along the segment normal.
type LabelSide uint8

const (
	LabelAuto LabelSide = iota
	LabelTop
	LabelBottom
	LabelLeft
	LabelRight
)

var labelSideNames = [...]string{"auto", "top", "bottom", "left", "right"}

func (s LabelSide) String() string {
	if int(s) < len(labelSideNames) {
		return labelSideNames[s]
	}
	return labelSideNames[LabelAuto]
}

// ParseLabelSide maps a name to a side. Unknown names yield LabelAuto.
func ParseLabelSide(name string) LabelSide {
	for i, n := range labelSideNames {
		if n == name {
			return LabelSide(i)
		}
	}
	return LabelAuto
}

func (s LabelSide) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *LabelSide) UnmarshalText(b []byte) error {
	*s = ParseLabelSide(string(b))
	return nil
}
