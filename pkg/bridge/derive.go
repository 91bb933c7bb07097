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
	"strings"

	"github.com/householdiq/bridging/pkg/hashutil"
	"github.com/householdiq/bridging/pkg/models"
)

// Suffixes mixed into identity hashes. Changing any of these re-keys the
// whole graph.
const (
	suffixDevice       = "device"
	suffixMergedDevice = "mergedDevice"
	suffixSameUser     = "sameUser"
	suffixUser         = "user"
	suffixHousehold    = "household"
	suffixSoloHouse    = "soloHouse"
)

// PairIdentity is the derived Device/User/Household assignment for a bridged
// event pair. SharedHousehold is true only on the shared-wifi path; the
// deterministic email path yields a shared user but solo households.
type PairIdentity struct {
	DeviceA, DeviceB       string
	UserA, UserB           string
	HouseholdA, HouseholdB string
	SharedHousehold        bool
}

// Deriver turns event partial keys into stable salted identities.
type Deriver struct {
	hasher *hashutil.Hasher
}

func NewDeriver(hasher *hashutil.Hasher) *Deriver {
	return &Deriver{hasher: hasher}
}

// DeviceSignature is the lowercased hashedIP+deviceType concat; it also feeds
// the anonymized sample store.
func DeviceSignature(ev *models.EphemeralEvent) string {
	return strings.ToLower(ev.HashedIP() + ev.DeviceType())
}

// DeviceID hashes the device signature into a device identity.
func (d *Deriver) DeviceID(ev *models.EphemeralEvent) string {
	return d.hasher.Hash(DeviceSignature(ev) + suffixDevice)
}

// SoloHouseholdID is the single-member household for an unbridged user.
func (d *Deriver) SoloHouseholdID(userID string) string {
	return d.hasher.Hash(userID + suffixSoloHouse)
}

// DerivePair computes the identity assignment for events a (new) and b
// (existing). Merged-device and shared-household hashes are keyed off a's raw
// SSID casing; the shared-wifi comparison itself is case-insensitive.
func (d *Deriver) DerivePair(a, b *models.EphemeralEvent) PairIdentity {
	identity := PairIdentity{}

	wifiA, wifiB := a.WifiSSID(), b.WifiSSID()
	sharedWifi := wifiA != "" && strings.EqualFold(wifiA, wifiB)

	if sharedWifi {
		merged := d.hasher.Hash(wifiA + suffixMergedDevice)
		identity.DeviceA, identity.DeviceB = merged, merged
	} else {
		identity.DeviceA = d.DeviceID(a)
		identity.DeviceB = d.DeviceID(b)
	}

	identity.UserA, identity.UserB = d.deriveUsers(a, b, identity)

	if sharedWifi {
		household := d.hasher.Hash(wifiA + suffixHousehold)
		identity.HouseholdA, identity.HouseholdB = household, household
		identity.SharedHousehold = true
	} else {
		identity.HouseholdA = d.SoloHouseholdID(identity.UserA)
		identity.HouseholdB = d.SoloHouseholdID(identity.UserB)
	}

	return identity
}

func (d *Deriver) deriveUsers(a, b *models.EphemeralEvent, identity PairIdentity) (userA, userB string) {
	emailA, emailB := a.HashedEmail(), b.HashedEmail()
	if emailA != "" && emailA == emailB {
		shared := d.hasher.Hash(emailA + suffixSameUser)

		return shared, shared
	}

	profileA, profileB := a.ProfileID(), b.ProfileID()
	if profileA != "" && profileA == profileB {
		shared := d.hasher.Hash(profileA + suffixSameUser)

		return shared, shared
	}

	userA = d.hasher.Hash(identity.DeviceA + profileA + emailA + suffixUser)
	userB = d.hasher.Hash(identity.DeviceB + profileB + emailB + suffixUser)

	return userA, userB
}
