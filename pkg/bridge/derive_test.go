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

	"github.com/householdiq/bridging/pkg/hashutil"
	"github.com/householdiq/bridging/pkg/models"
)

const testSalt = "test-salt"

func testDeriver() *Deriver {
	return NewDeriver(hashutil.NewHasher(testSalt))
}

func TestDeviceSignatureLowercasesConcat(t *testing.T) {
	ev := &models.EphemeralEvent{PartialKeys: map[string]string{
		models.KeyHashedIP:   "IPHash99",
		models.KeyDeviceType: "Mobile",
	}}

	assert.Equal(t, "iphash99mobile", DeviceSignature(ev))
}

func TestDerivePairSharedWifi(t *testing.T) {
	d := testDeriver()

	a := &models.EphemeralEvent{PartialKeys: map[string]string{
		models.KeyWifiSSID:   "HomeNet",
		models.KeyHashedIP:   "ip-a",
		models.KeyDeviceType: "mobile",
	}}
	// SSID match is case-insensitive but hashes key off a's casing.
	b := &models.EphemeralEvent{PartialKeys: map[string]string{
		models.KeyWifiSSID:   "HOMENET",
		models.KeyHashedIP:   "ip-b",
		models.KeyDeviceType: "ctv",
	}}

	identity := d.DerivePair(a, b)

	assert.Equal(t, identity.DeviceA, identity.DeviceB)
	assert.Equal(t, hashutil.Identity(testSalt, "HomeNet"+suffixMergedDevice), identity.DeviceA)

	assert.True(t, identity.SharedHousehold)
	assert.Equal(t, identity.HouseholdA, identity.HouseholdB)
	assert.Equal(t, hashutil.Identity(testSalt, "HomeNet"+suffixHousehold), identity.HouseholdA)
}

func TestDerivePairSharedEmailSoloHouseholds(t *testing.T) {
	d := testDeriver()

	a := &models.EphemeralEvent{PartialKeys: map[string]string{
		models.KeyHashedEmail: "User@Hash",
		models.KeyHashedIP:    "ip-a",
		models.KeyDeviceType:  "mobile",
	}}
	b := &models.EphemeralEvent{PartialKeys: map[string]string{
		models.KeyHashedEmail: "user@hash",
		models.KeyHashedIP:    "ip-b",
		models.KeyDeviceType:  "desktop",
	}}

	identity := d.DerivePair(a, b)

	// Same person, distinct devices, and without shared wifi each side
	// keeps a solo household.
	assert.Equal(t, identity.UserA, identity.UserB)
	assert.Equal(t, hashutil.Identity(testSalt, "user@hash"+suffixSameUser), identity.UserA)
	assert.NotEqual(t, identity.DeviceA, identity.DeviceB)
	assert.False(t, identity.SharedHousehold)
	assert.Equal(t, identity.HouseholdA, identity.HouseholdB)
	assert.Equal(t, d.SoloHouseholdID(identity.UserA), identity.HouseholdA)
}

func TestDerivePairSharedProfile(t *testing.T) {
	d := testDeriver()

	a := &models.EphemeralEvent{PartialKeys: map[string]string{
		models.KeyProfileID: "Prof-7",
	}}
	b := &models.EphemeralEvent{PartialKeys: map[string]string{
		models.KeyProfileID: "Prof-7",
	}}

	identity := d.DerivePair(a, b)

	assert.Equal(t, identity.UserA, identity.UserB)
	assert.Equal(t, hashutil.Identity(testSalt, "Prof-7"+suffixSameUser), identity.UserA)
}

func TestDerivePairDistinctUsers(t *testing.T) {
	d := testDeriver()

	a := &models.EphemeralEvent{PartialKeys: map[string]string{
		models.KeyHashedEmail: "alice@hash",
		models.KeyHashedIP:    "ip-a",
		models.KeyDeviceType:  "mobile",
	}}
	b := &models.EphemeralEvent{PartialKeys: map[string]string{
		models.KeyHashedEmail: "bob@hash",
		models.KeyHashedIP:    "ip-b",
		models.KeyDeviceType:  "desktop",
	}}

	identity := d.DerivePair(a, b)

	assert.NotEqual(t, identity.UserA, identity.UserB)
	assert.Equal(t,
		hashutil.Identity(testSalt, identity.DeviceA+""+"alice@hash"+suffixUser),
		identity.UserA)
	assert.NotEqual(t, identity.HouseholdA, identity.HouseholdB)
}
