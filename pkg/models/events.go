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

package models

import "strings"

// Recognized partial-key names supplied by partners.
const (
	KeyHashedEmail     = "hashedEmail"
	KeyHashedIP        = "hashedIP"
	KeyWifiSSID        = "wifiSSID"
	KeyDeviceType      = "deviceType"
	KeyProfileID       = "profileID"
	KeyIsChild         = "isChild"
	KeyDeviceChildFlag = "deviceChildFlag"

	// LegacyKeyDeviceChildFlag predates the camelCase form. Both are
	// honored on ingest; the partial-keys value stays authoritative.
	LegacyKeyDeviceChildFlag = "device_child_flag"
)

// Event types accepted on ingest.
const (
	EventTypeImpression = "impression"
	EventTypeClick      = "click"
	EventTypeConversion = "conversion"
)

// Bridging outcomes reported back to the ingest caller.
const (
	BridgeStatusNoConsent = "NO_CONSENT_OR_FLAGS"
	BridgeStatusChildFlag = "CHILD_FLAG"
	BridgeStatusDone      = "BRIDGING_DONE"
	BridgeStatusQueued    = "BRIDGING_QUEUED"
)

// ValidEventType reports whether t is one of the accepted event types.
func ValidEventType(t string) bool {
	switch t {
	case EventTypeImpression, EventTypeClick, EventTypeConversion:
		return true
	default:
		return false
	}
}

// PartialKey returns the raw value for key, or "" when absent.
func (e *EphemeralEvent) PartialKey(key string) string {
	if e == nil || e.PartialKeys == nil {
		return ""
	}

	return e.PartialKeys[key]
}

// HashedEmail returns the lowercased hashed email partial key.
func (e *EphemeralEvent) HashedEmail() string {
	return strings.ToLower(e.PartialKey(KeyHashedEmail))
}

// HashedIP returns the hashed IP partial key.
func (e *EphemeralEvent) HashedIP() string {
	return e.PartialKey(KeyHashedIP)
}

// WifiSSID returns the wifi SSID partial key with its original casing.
func (e *EphemeralEvent) WifiSSID() string {
	return e.PartialKey(KeyWifiSSID)
}

// DeviceType returns the device type partial key.
func (e *EphemeralEvent) DeviceType() string {
	return e.PartialKey(KeyDeviceType)
}

// ProfileID returns the profile id partial key.
func (e *EphemeralEvent) ProfileID() string {
	return e.PartialKey(KeyProfileID)
}

// ChildFlagged reports whether either child signal suppresses bridging for
// this event.
func (e *EphemeralEvent) ChildFlagged() bool {
	return e.IsChild || e.DeviceChildFlag
}

// BridgingConsent reports the effective cross-device consent. A missing
// consent row denies bridging.
func (e *EphemeralEvent) BridgingConsent() bool {
	return e.Consent != nil && e.Consent.CrossDeviceBridging
}

// ChildFlagFromKeys derives the boolean child flags from partial keys; the
// migrations flip-flopped between snake and camel case so both spellings of
// the device flag count.
func ChildFlagFromKeys(keys map[string]string) (isChild, deviceChild bool) {
	isChild = strings.EqualFold(keys[KeyIsChild], "true")
	deviceChild = strings.EqualFold(keys[KeyDeviceChildFlag], "true") ||
		strings.EqualFold(keys[LegacyKeyDeviceChildFlag], "true")

	return isChild, deviceChild
}
