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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/householdiq/bridging/pkg/models"
)

const (
	insertEventSQL = `
INSERT INTO ephemeral_events (
	ephem_id,
	partial_keys,
	event_type,
	timestamp,
	campaign_id,
	partner_id,
	consent_flags_id,
	privacy_tcf_string,
	privacy_us_string,
	tenant_namespace,
	is_child,
	device_child_flag
) VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,NULLIF($7,0),NULLIF($8,''),NULLIF($9,''),NULLIF($10,''),$11,$12)
RETURNING id`

	selectEventColumns = `
SELECT e.id, e.ephem_id, e.partial_keys, e.event_type, e.timestamp,
       COALESCE(e.campaign_id, ''), e.partner_id, COALESCE(e.consent_flags_id, 0),
       COALESCE(e.privacy_tcf_string, ''), COALESCE(e.privacy_us_string, ''),
       COALESCE(e.tenant_namespace, ''), e.is_child, e.device_child_flag,
       COALESCE(c.cross_device_bridging, false), COALESCE(c.targeting_segments, false)
FROM ephemeral_events e
LEFT JOIN consent_flags c ON c.id = e.consent_flags_id`

	getEventSQL = selectEventColumns + `
WHERE e.id = $1`

	getEventsSinceSQL = selectEventColumns + `
WHERE e.timestamp >= $1
ORDER BY e.id`
)

// InsertEvent persists one ephemeral observation and returns its row id.
func (db *DB) InsertEvent(ctx context.Context, ev *models.EphemeralEvent) (int64, error) {
	if ev == nil {
		return 0, ErrEventNil
	}

	if ev.EphemID == "" {
		return 0, ErrEphemIDRequired
	}

	partialKeys, err := json.Marshal(ev.PartialKeys)
	if err != nil {
		return 0, fmt.Errorf("%w: partial keys: %w", ErrFailedToInsert, err)
	}

	timestamp := ev.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var id int64

	err = db.pool.QueryRow(ctx, insertEventSQL,
		ev.EphemID, partialKeys, ev.EventType, timestamp, ev.CampaignID,
		ev.PartnerID, ev.ConsentFlagsID, ev.PrivacyTCF, ev.PrivacyUS,
		ev.TenantNamespace, ev.IsChild, ev.DeviceChildFlag).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: event: %w", ErrFailedToInsert, err)
	}

	return id, nil
}

// GetEvent loads one event with its consent row joined in.
func (db *DB) GetEvent(ctx context.Context, eventID int64) (*models.EphemeralEvent, error) {
	row := db.pool.QueryRow(ctx, getEventSQL, eventID)

	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}

	if err != nil {
		return nil, err
	}

	return ev, nil
}

// GetEventsSince returns events inside the retention window, oldest first.
// The fuzzy drain loads this once per batch rather than per queued id.
func (db *DB) GetEventsSince(ctx context.Context, since time.Time) ([]*models.EphemeralEvent, error) {
	rows, err := db.pool.Query(ctx, getEventsSinceSQL, since)
	if err != nil {
		return nil, fmt.Errorf("%w: events since: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var events []*models.EphemeralEvent

	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: events since: %w", ErrFailedToQuery, err)
	}

	return events, nil
}

func scanEvent(row pgx.Row) (*models.EphemeralEvent, error) {
	ev := &models.EphemeralEvent{}
	consent := &models.ConsentFlags{}

	var partialKeys []byte

	err := row.Scan(&ev.ID, &ev.EphemID, &partialKeys, &ev.EventType, &ev.Timestamp,
		&ev.CampaignID, &ev.PartnerID, &ev.ConsentFlagsID,
		&ev.PrivacyTCF, &ev.PrivacyUS, &ev.TenantNamespace,
		&ev.IsChild, &ev.DeviceChildFlag,
		&consent.CrossDeviceBridging, &consent.TargetingSegments)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("%w: event: %w", ErrFailedToScan, err)
	}

	ev.PartialKeys = map[string]string{}
	if len(partialKeys) > 0 {
		if err := json.Unmarshal(partialKeys, &ev.PartialKeys); err != nil {
			return nil, fmt.Errorf("%w: partial keys: %w", ErrFailedToScan, err)
		}
	}

	if ev.ConsentFlagsID != 0 {
		consent.ID = ev.ConsentFlagsID
		ev.Consent = consent
	}

	return ev, nil
}
