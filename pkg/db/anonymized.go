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

	"github.com/householdiq/bridging/pkg/models"
)

const (
	insertAnonymizedEventSQL = `
INSERT INTO anonymized_events (event_id, hashed_device_sig, hashed_user_sig, event_day, event_type, partner_id)
VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,0))
RETURNING id`

	countAnonymizedEventsSQL = `
SELECT count(*)
FROM anonymized_events
WHERE partner_id = $1`

	listAnonymizedEventsSQL = `
SELECT id, event_id, COALESCE(hashed_device_sig,''), COALESCE(hashed_user_sig,''),
       COALESCE(event_day,''), COALESCE(event_type,''), COALESCE(partner_id,0), created_at
FROM anonymized_events
WHERE partner_id = $1
ORDER BY id DESC
LIMIT $2`
)

// InsertAnonymizedEvent stores one sampled, de-identified event copy.
func (db *DB) InsertAnonymizedEvent(ctx context.Context, ev *models.AnonymizedEvent) (int64, error) {
	if ev == nil {
		return 0, ErrEventNil
	}

	var id int64

	err := db.pool.QueryRow(ctx, insertAnonymizedEventSQL,
		ev.EventID, ev.HashedDeviceSig, ev.HashedUserSig,
		ev.EventDay, ev.EventType, ev.PartnerID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: anonymized event: %w", ErrFailedToInsert, err)
	}

	return id, nil
}

// CountAnonymizedEvents backs the k-anonymity gate on exports.
func (db *DB) CountAnonymizedEvents(ctx context.Context, partnerID int64) (int64, error) {
	var count int64

	err := db.pool.QueryRow(ctx, countAnonymizedEventsSQL, partnerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: anonymized count: %w", ErrFailedToQuery, err)
	}

	return count, nil
}

func (db *DB) ListAnonymizedEvents(ctx context.Context, partnerID int64, limit int) ([]*models.AnonymizedEvent, error) {
	rows, err := db.pool.Query(ctx, listAnonymizedEventsSQL, partnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: anonymized events: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var events []*models.AnonymizedEvent

	for rows.Next() {
		ev := &models.AnonymizedEvent{}

		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.HashedDeviceSig, &ev.HashedUserSig,
			&ev.EventDay, &ev.EventType, &ev.PartnerID, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: anonymized event: %w", ErrFailedToScan, err)
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: anonymized events: %w", ErrFailedToQuery, err)
	}

	return events, nil
}
