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

package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/householdiq/bridging/pkg/logger"
)

func TestGateDeniesWithoutConsent(t *testing.T) {
	gate := NewGate(logger.NewTestLogger())

	assert.False(t, gate.Allows(false, Signals{}))
}

func TestGateAllowsWithConsentAndNoSignals(t *testing.T) {
	gate := NewGate(logger.NewTestLogger())

	assert.True(t, gate.Allows(true, Signals{}))
}

func TestGateUSPrivacyOptOut(t *testing.T) {
	gate := NewGate(logger.NewTestLogger())

	tests := []struct {
		name    string
		usp     string
		allowed bool
	}{
		{name: "opt out of sale", usp: "1YYY", allowed: false},
		{name: "california opt out", usp: "1CYN", allowed: false},
		{name: "no opt out", usp: "1YNY", allowed: true},
		{name: "not applicable", usp: "1---", allowed: true},
		{name: "too short is absent", usp: "1Y", allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.Allows(true, Signals{USPrivacyString: tt.usp})
			assert.Equal(t, tt.allowed, got)
		})
	}
}

func TestGateMalformedTCFNotEnforced(t *testing.T) {
	gate := NewGate(logger.NewTestLogger())

	// Unparsable TCF degrades to "signal absent" and does not block.
	assert.True(t, gate.Allows(true, Signals{TCFString: "garbage!!"}))
}

func TestGateValidTCFEnforced(t *testing.T) {
	gate := NewGate(logger.NewTestLogger())

	permits := buildTCF([]int{1, 2}, []int{AggregatorVendorID}, 400)
	assert.True(t, gate.Allows(true, Signals{TCFString: permits}))

	noVendor := buildTCF([]int{1, 2}, []int{10}, 400)
	assert.False(t, gate.Allows(true, Signals{TCFString: noVendor}))

	noPurpose := buildTCF([]int{1}, []int{AggregatorVendorID}, 400)
	assert.False(t, gate.Allows(true, Signals{TCFString: noPurpose}))
}

func TestGateConsentTrumpsPermissiveSignals(t *testing.T) {
	gate := NewGate(logger.NewTestLogger())

	permits := buildTCF([]int{1, 2}, []int{AggregatorVendorID}, 400)
	assert.False(t, gate.Allows(false, Signals{TCFString: permits}))
}
