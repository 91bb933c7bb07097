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

// Package models holds the domain types shared across the bridging services.
package models

import "time"

// Partner is an ingestion customer. Its salt scopes partner-level hashing and
// its namespace assigns the partner to a tenant.
type Partner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Salt      string    `json:"salt"`
	Namespace string    `json:"namespace,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ConsentFlags records the effective consent attached to one event. The
// cross-device flag already folds in the privacy-gate decision and is
// immutable once written.
type ConsentFlags struct {
	ID                  int64     `json:"id"`
	CrossDeviceBridging bool      `json:"cross_device_bridging"`
	TargetingSegments   bool      `json:"targeting_segments"`
	CreatedAt           time.Time `json:"created_at"`
}

// EphemeralEvent is a single partner-supplied observation. Events are never
// mutated after ingest and age out of bridging by the retention window.
type EphemeralEvent struct {
	ID              int64             `json:"id"`
	EphemID         string            `json:"ephem_id"`
	PartialKeys     map[string]string `json:"partial_keys"`
	EventType       string            `json:"event_type"`
	Timestamp       time.Time         `json:"timestamp"`
	CampaignID      string            `json:"campaign_id,omitempty"`
	PartnerID       int64             `json:"partner_id"`
	ConsentFlagsID  int64             `json:"consent_flags_id"`
	PrivacyTCF      string            `json:"privacy_tcf_string,omitempty"`
	PrivacyUS       string            `json:"privacy_us_string,omitempty"`
	TenantNamespace string            `json:"tenant_namespace,omitempty"`
	IsChild         bool              `json:"is_child"`
	DeviceChildFlag bool              `json:"device_child_flag"`

	// Consent is the joined consent_flags row when the event was loaded
	// through the store. Nil means the row was not fetched.
	Consent *ConsentFlags `json:"-"`
}

// BridgingConfig is the operator-tunable scoring configuration. The latest
// row by LastUpdated wins; nil pointers mean "use the default".
type BridgingConfig struct {
	ID                int64              `json:"id"`
	Threshold         *float64           `json:"threshold,omitempty"`
	PartialKeyWeights map[string]float64 `json:"partial_key_weights,omitempty"`
	TimeDecayFactor   *float64           `json:"time_decay_factor,omitempty"`
	LastUpdated       time.Time          `json:"last_updated"`
}

// MLBridgingThreshold is a model-published override for the bridging
// threshold. The newest row by LastTrained is authoritative over
// BridgingConfig.
type MLBridgingThreshold struct {
	ID             int64     `json:"id"`
	ModelVersion   string    `json:"model_version"`
	ThresholdValue float64   `json:"threshold_value"`
	LastTrained    time.Time `json:"last_trained"`
}

// DailyAggregate is one flushed counter row keyed by
// (date, partner, device, event).
type DailyAggregate struct {
	ID          int64     `json:"id"`
	DateStr     string    `json:"date_str"`
	PartnerID   int64     `json:"partner_id"`
	DeviceType  string    `json:"device_type"`
	EventType   string    `json:"event_type"`
	Count       int64     `json:"count"`
	LastUpdated time.Time `json:"last_updated"`
}

// AnonymizedEvent is a sampled, de-identified copy of an event kept for
// k-anonymity-gated sharing.
type AnonymizedEvent struct {
	ID              int64     `json:"id"`
	EventID         int64     `json:"event_id"`
	HashedDeviceSig string    `json:"hashed_device_sig,omitempty"`
	HashedUserSig   string    `json:"hashed_user_sig,omitempty"`
	EventDay        string    `json:"event_day,omitempty"`
	EventType       string    `json:"event_type,omitempty"`
	PartnerID       int64     `json:"partner_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// FrequencyCap is the per-household daily impression counter used inline by
// the serving path.
type FrequencyCap struct {
	ID               int64     `json:"id"`
	HouseholdID      string    `json:"household_id"`
	DailyImpressions int64     `json:"daily_impressions"`
	CapLimit         int64     `json:"cap_limit"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CapDecision is the serving answer derived from a FrequencyCap row.
type CapDecision struct {
	HouseholdID      string `json:"household_id"`
	CanServe         bool   `json:"can_serve"`
	DailyImpressions int64  `json:"daily_impressions"`
	CapLimit         int64  `json:"cap_limit"`
}

// ConsentRevocation records a downstream opt-out request for an ephemeral id.
type ConsentRevocation struct {
	ID        int64     `json:"id"`
	EphemID   string    `json:"ephem_id"`
	RevokedAt time.Time `json:"revoked_at"`
}

// TouchPoint is one step in an attribution journey.
type TouchPoint struct {
	EphemID   string    `json:"ephem_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// AttributionJourney is a multi-touch record finished by a conversion.
type AttributionJourney struct {
	ID             int64        `json:"id"`
	HouseholdID    string       `json:"household_id"`
	ConversionTime time.Time    `json:"conversion_time"`
	TouchPoints    []TouchPoint `json:"touch_points"`
	CreatedAt      time.Time    `json:"created_at"`
}

// LookalikeSegment is a seed segment expanded to matched households.
type LookalikeSegment struct {
	ID                int64     `json:"id"`
	SeedSegment       string    `json:"seed_segment"`
	MatchedHouseholds []string  `json:"matched_households"`
	CreatedAt         time.Time `json:"created_at"`
}

// DataSharingAgreement gates partner-to-partner exports.
type DataSharingAgreement struct {
	ID                 int64      `json:"id"`
	InitiatorPartnerID int64      `json:"partner_id_initiator"`
	RecipientPartnerID int64      `json:"partner_id_recipient"`
	AgreementDetails   string     `json:"agreement_details,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	AllowAggregated    bool       `json:"allow_aggregated_data_sharing"`
	MinKAnonymity      int64      `json:"min_k_anonymity"`
	CreatedAt          time.Time  `json:"created_at"`
}

// PluginRecord enables or disables a named bridging observer.
type PluginRecord struct {
	ID         int64  `json:"id"`
	PluginName string `json:"plugin_name"`
	PluginPath string `json:"plugin_path"`
	Enabled    bool   `json:"enabled"`
}

// WebhookSubscription is a partner callback registered for an event type.
type WebhookSubscription struct {
	ID             int64     `json:"id"`
	SubscriberName string    `json:"subscriber_name"`
	CallbackURL    string    `json:"callback_url"`
	EventType      string    `json:"event_type"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// BridgeUpdate is the payload handed to bridging observers and published to
// the message queue after a successful pair merge.
type BridgeUpdate struct {
	EventID     int64     `json:"event_id"`
	EphemID     string    `json:"ephem_id"`
	OtherEphem  string    `json:"other_ephem_id"`
	HouseholdID string    `json:"household_id,omitempty"`
	Score       float64   `json:"score"`
	PartnerID   int64     `json:"partner_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}
