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

package db

import (
	"context"
	"fmt"
)

// schemaStatements is applied in order by Setup. Every statement is
// idempotent so repeated startups are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS partners (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		salt TEXT NOT NULL,
		namespace TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS consent_flags (
		id BIGSERIAL PRIMARY KEY,
		cross_device_bridging BOOLEAN NOT NULL DEFAULT true,
		targeting_segments BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ephemeral_events (
		id BIGSERIAL PRIMARY KEY,
		ephem_id TEXT NOT NULL,
		partial_keys JSONB NOT NULL DEFAULT '{}',
		event_type TEXT NOT NULL DEFAULT 'impression',
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
		campaign_id TEXT,
		partner_id BIGINT NOT NULL REFERENCES partners(id),
		consent_flags_id BIGINT REFERENCES consent_flags(id),
		privacy_tcf_string TEXT,
		privacy_us_string TEXT,
		tenant_namespace TEXT,
		is_child BOOLEAN NOT NULL DEFAULT false,
		device_child_flag BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ephemeral_events_ephem_id ON ephemeral_events (ephem_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ephemeral_events_timestamp ON ephemeral_events (timestamp)`,
	`CREATE TABLE IF NOT EXISTS bridging_config (
		id BIGSERIAL PRIMARY KEY,
		threshold DOUBLE PRECISION,
		partial_key_weights JSONB,
		time_decay_factor DOUBLE PRECISION,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ml_bridging_thresholds (
		id BIGSERIAL PRIMARY KEY,
		model_version TEXT NOT NULL,
		threshold_value DOUBLE PRECISION NOT NULL DEFAULT 0.7,
		last_trained TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS daily_aggregates (
		id BIGSERIAL PRIMARY KEY,
		date_str TEXT NOT NULL,
		partner_id BIGINT NOT NULL,
		device_type TEXT NOT NULL,
		event_type TEXT NOT NULL,
		count BIGINT NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (date_str, partner_id, device_type, event_type)
	)`,
	`CREATE TABLE IF NOT EXISTS anonymized_events (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL,
		hashed_device_sig TEXT,
		hashed_user_sig TEXT,
		event_day TEXT,
		event_type TEXT,
		partner_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS frequency_capping (
		id BIGSERIAL PRIMARY KEY,
		household_id TEXT NOT NULL UNIQUE,
		daily_impressions BIGINT NOT NULL DEFAULT 0,
		cap_limit BIGINT NOT NULL DEFAULT 5,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS consent_revocations (
		id BIGSERIAL PRIMARY KEY,
		ephem_id TEXT NOT NULL,
		revoked_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attribution_journeys (
		id BIGSERIAL PRIMARY KEY,
		household_id TEXT NOT NULL,
		conversion_time TIMESTAMPTZ,
		touch_points JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attribution_journeys_household ON attribution_journeys (household_id)`,
	`CREATE TABLE IF NOT EXISTS lookalike_segments (
		id BIGSERIAL PRIMARY KEY,
		seed_segment TEXT NOT NULL,
		matched_households JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS data_sharing_agreements (
		id BIGSERIAL PRIMARY KEY,
		partner_id_initiator BIGINT NOT NULL REFERENCES partners(id),
		partner_id_recipient BIGINT NOT NULL REFERENCES partners(id),
		agreement_details TEXT,
		start_date TIMESTAMPTZ,
		end_date TIMESTAMPTZ,
		allow_aggregated_data_sharing BOOLEAN NOT NULL DEFAULT true,
		min_k_anonymity BIGINT NOT NULL DEFAULT 50,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (partner_id_initiator, partner_id_recipient)
	)`,
	`CREATE TABLE IF NOT EXISTS plugin_registry (
		id BIGSERIAL PRIMARY KEY,
		plugin_name TEXT NOT NULL UNIQUE,
		plugin_path TEXT NOT NULL DEFAULT '',
		enabled BOOLEAN NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_subscriptions (
		id BIGSERIAL PRIMARY KEY,
		subscriber_name TEXT NOT NULL,
		callback_url TEXT NOT NULL,
		event_type TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Setup creates the relational schema. Safe to run on every startup.
func (db *DB) Setup(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToInit, err)
		}
	}

	db.logger.Info().Int("statements", len(schemaStatements)).Msg("relational schema ready")

	return nil
}
