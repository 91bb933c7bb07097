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

// Package privacy decides per event whether identity bridging is allowed.
// It evaluates the aggregator-relevant subset of the IAB TCF and US privacy
// frameworks; malformed signals degrade to "signal absent" and never block
// on their own.
package privacy

import (
	"github.com/householdiq/bridging/pkg/logger"
)

// AggregatorVendorID is HouseholdIQ's IAB Global Vendor List id. A valid TCF
// string must consent this vendor for bridging to proceed.
const AggregatorVendorID = 333

// requiredPurposes are the TCF purposes bridging relies on: 1 (store/access
// information on a device) and 2 (select basic ads).
var requiredPurposes = []int{1, 2}

// Signals carries the raw per-event privacy strings.
type Signals struct {
	TCFString       string `json:"tcf_string,omitempty"`
	USPrivacyString string `json:"us_privacy_string,omitempty"`
}

// Gate computes bridging permission from consent flags plus privacy signals.
type Gate struct {
	logger logger.Logger
}

// NewGate returns a Gate logging parse failures at debug level.
func NewGate(log logger.Logger) *Gate {
	return &Gate{logger: log}
}

// SignalsAllow evaluates only the framework strings, without the partner
// consent flag. An invalid TCF string does not enforce the TCF check; a US
// privacy opt-out in California denies.
func (g *Gate) SignalsAllow(signals Signals) bool {
	tcf := ParseTCF(signals.TCFString)
	if tcf.Valid {
		if !tcf.VendorConsented(AggregatorVendorID) {
			g.logger.Debug().Msg("privacy gate: aggregator vendor not consented")
			return false
		}

		for _, p := range requiredPurposes {
			if !tcf.PurposeAllowed(p) {
				g.logger.Debug().Int("purpose", p).Msg("privacy gate: required purpose missing")
				return false
			}
		}
	}

	// An explicit opt-out of sale denies regardless of the region
	// character; region 'C' (California) is the common case.
	usp := ParseUSPrivacy(signals.USPrivacyString)
	if usp.OptOutSale == 'Y' {
		g.logger.Debug().Msg("privacy gate: US privacy opt-out of sale")
		return false
	}

	return true
}

// Allows folds the partner-supplied cross-device consent into the framework
// checks and returns the final bridging permission for one event.
func (g *Gate) Allows(crossDeviceConsent bool, signals Signals) bool {
	if !crossDeviceConsent {
		return false
	}

	return g.SignalsAllow(signals)
}
