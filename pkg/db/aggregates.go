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

	"github.com/jackc/pgx/v5"

	"github.com/householdiq/bridging/pkg/models"
)

const (
	upsertDailyAggregateSQL = `
INSERT INTO daily_aggregates (date_str, partner_id, device_type, event_type, count, last_updated)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (date_str, partner_id, device_type, event_type) DO UPDATE SET
	count = daily_aggregates.count + EXCLUDED.count,
	last_updated = now()`

	queryDailyAggregatesSQL = `
SELECT id, date_str, partner_id, device_type, event_type, count, last_updated
FROM daily_aggregates
WHERE date_str >= $1 AND date_str <= $2
ORDER BY date_str, partner_id, device_type, event_type`
)

// UpsertDailyAggregates adds flushed counter deltas into the relational
// aggregate rows. Existing rows accumulate; re-flushing a delta of zero rows
// is a no-op.
func (db *DB) UpsertDailyAggregates(ctx context.Context, aggregates []*models.DailyAggregate) error {
	if len(aggregates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	for _, agg := range aggregates {
		if agg == nil || agg.Count == 0 {
			continue
		}

		batch.Queue(upsertDailyAggregateSQL,
			agg.DateStr, agg.PartnerID, agg.DeviceType, agg.EventType, agg.Count)
	}

	if batch.Len() == 0 {
		return nil
	}

	return db.sendBatch(ctx, batch, "daily aggregates")
}

// QueryDailyAggregates returns rows in the inclusive [startDate, endDate]
// range. Dates are "YYYY-MM-DD" strings so lexical order is date order.
func (db *DB) QueryDailyAggregates(ctx context.Context, startDate, endDate string) ([]*models.DailyAggregate, error) {
	rows, err := db.pool.Query(ctx, queryDailyAggregatesSQL, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: daily aggregates: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var aggregates []*models.DailyAggregate

	for rows.Next() {
		agg := &models.DailyAggregate{}

		if err := rows.Scan(&agg.ID, &agg.DateStr, &agg.PartnerID,
			&agg.DeviceType, &agg.EventType, &agg.Count, &agg.LastUpdated); err != nil {
			return nil, fmt.Errorf("%w: daily aggregate: %w", ErrFailedToScan, err)
		}

		aggregates = append(aggregates, agg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: daily aggregates: %w", ErrFailedToQuery, err)
	}

	return aggregates, nil
}
