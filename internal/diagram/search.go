/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diagram

import (
	"strings"

	"gocharmap/internal/domain"
)

// MatchesQuery reports whether a node matches a free-text search,
// case-insensitively over name, pronunciation, bio, titles and nicknames.
// A blank query matches everything.
func MatchesQuery(n domain.Node, query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	q := strings.ToLower(query)
	fields := make([]string, 0, 3+len(n.Titles)+len(n.Nicknames))
	fields = append(fields, n.Name, n.Pronunciation, n.Bio)
	fields = append(fields, n.Titles...)
	fields = append(fields, n.Nicknames...)
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
