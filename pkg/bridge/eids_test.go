/*
 * Copyright 2025 HouseholdIQ, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEIDsBelowConfidenceFloor(t *testing.T) {
	eids := BuildEIDs("example.com", "hh-1", 0.79, "cookieSync")
	assert.Empty(t, eids)

	eids = BuildEIDs("example.com", "", 0.99, "cookieSync")
	assert.Empty(t, eids)
}

func TestBuildEIDsMatchMethods(t *testing.T) {
	tests := []struct {
		name        string
		matchSource string
		wantMM      string
		wantAType   string
	}{
		{"cookie sync", "cookieSync", "2", "1"},
		{"deterministic", "crossDomainDeterministic", "3", "3"},
		{"probabilistic", "crossDomainProbabilistic", "5", "3"},
		{"unknown falls back to deterministic", "telepathy", "3", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eids := BuildEIDs("example.com", "hh-1", 0.8, tt.matchSource)
			require.Len(t, eids, 1)

			eid := eids[0]
			assert.Equal(t, "example.com", eid.Source)
			assert.Equal(t, eidInserter, eid.Inserter)
			assert.Equal(t, eidMatcher, eid.Matcher)
			assert.Equal(t, tt.wantMM, eid.MM)

			require.Len(t, eid.UIDs, 1)
			assert.Equal(t, "hh-1", eid.UIDs[0].ID)
			assert.Equal(t, tt.wantAType, eid.UIDs[0].AType)
		})
	}
}
