/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diagram

// Optional label re-indexing. By default labels keep their stored segment
// index across waypoint edits and are clamped at read time. With
// re-indexing enabled, labels follow the segment they were placed on.

import "gocharmap/internal/domain"

// ShiftLabelsForInsert updates labels after a waypoint was inserted at
// waypoint index seg, which splits segment seg at parameter splitT into
// segments seg and seg+1.
func ShiftLabelsForInsert(labels []domain.Label, seg int, splitT float64) []domain.Label {
	if labels == nil {
		return nil
	}
	out := make([]domain.Label, len(labels))
	for i, l := range labels {
		switch {
		case l.SegmentIndex > seg:
			l.SegmentIndex++
		case l.SegmentIndex == seg:
			switch {
			case splitT <= 0:
				l.SegmentIndex++
			case splitT >= 1:
			case l.T <= splitT:
				l.T = l.T / splitT
			default:
				l.SegmentIndex++
				l.T = (l.T - splitT) / (1 - splitT)
			}
		}
		out[i] = l
	}
	return out
}

// ShiftLabelsForDelete updates labels after waypoint idx was removed, which
// joins segments idx and idx+1 into segment idx. ratio is the share of the
// joined length taken by the former segment idx.
func ShiftLabelsForDelete(labels []domain.Label, idx int, ratio float64) []domain.Label {
	if labels == nil {
		return nil
	}
	out := make([]domain.Label, len(labels))
	for i, l := range labels {
		switch {
		case l.SegmentIndex > idx+1:
			l.SegmentIndex--
		case l.SegmentIndex == idx+1:
			l.SegmentIndex = idx
			l.T = ratio + l.T*(1-ratio)
		case l.SegmentIndex == idx:
			l.T = l.T * ratio
		}
		out[i] = l
	}
	return out
}

// JoinRatio is the length share of segment idx in the join of segments idx
// and idx+1. Two zero-length segments split evenly.
func JoinRatio(p Path, idx int) float64 {
	if idx < 0 || idx+1 >= p.SegmentCount() {
		return 0.5
	}
	a := p.Segment(idx).Len()
	b := p.Segment(idx + 1).Len()
	if a+b == 0 {
		return 0.5
	}
	return a / (a + b)
}
