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

// OpenRTB 2.x extended identifiers for the bid stream.

const (
	eidInserter = "householdiq"
	eidMatcher  = "householdiq"

	// EIDMinConfidence is the floor below which no identifiers are emitted.
	EIDMinConfidence = 0.8
)

// Match-method codes per the OpenRTB EID extension.
var matchMethods = map[string]string{
	"cookieSync":               "2",
	"crossDomainDeterministic": "3",
	"crossDomainProbabilistic": "5",
}

// EIDUID is one uid entry inside an EID.
type EIDUID struct {
	ID    string  `json:"id"`
	AType string  `json:"atype"`
	Ext   *UIDExt `json:"ext,omitempty"`
}

// UIDExt carries stability metadata for a uid.
type UIDExt struct {
	Stype string `json:"stype,omitempty"`
}

// EID is one extended-identifier block.
type EID struct {
	Source   string   `json:"source"`
	Inserter string   `json:"inserter"`
	Matcher  string   `json:"matcher"`
	MM       string   `json:"mm"`
	UIDs     []EIDUID `json:"uids"`
}

// BuildEIDs renders the household identity as OpenRTB eids. Empty below the
// confidence floor; unknown match sources fall back to deterministic.
func BuildEIDs(source, householdID string, confidence float64, matchSource string) []EID {
	if householdID == "" || confidence < EIDMinConfidence {
		return []EID{}
	}

	mm, ok := matchMethods[matchSource]
	if !ok {
		mm = matchMethods["crossDomainDeterministic"]
	}

	// Cross-domain methods identify a person scope; everything else is a
	// browser-scoped id.
	atype := "1"
	if mm == "3" || mm == "5" {
		atype = "3"
	}

	return []EID{{
		Source:   source,
		Inserter: eidInserter,
		Matcher:  eidMatcher,
		MM:       mm,
		UIDs: []EIDUID{{
			ID:    householdID,
			AType: atype,
		}},
	}}
}
