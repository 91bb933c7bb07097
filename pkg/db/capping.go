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
	"strings"

	"github.com/householdiq/bridging/pkg/models"
)

const (
	getOrCreateCapSQL = `
INSERT INTO frequency_capping (household_id)
VALUES ($1)
ON CONFLICT (household_id) DO UPDATE SET household_id = EXCLUDED.household_id
RETURNING id, household_id, daily_impressions, cap_limit, updated_at`

	incrementCapSQL = `
INSERT INTO frequency_capping (household_id, daily_impressions)
VALUES ($1, 1)
ON CONFLICT (household_id) DO UPDATE SET
	daily_impressions = frequency_capping.daily_impressions + 1,
	updated_at = now()
RETURNING id, household_id, daily_impressions, cap_limit, updated_at`
)

// GetOrCreateCap reads the household's cap row, creating a zeroed one when
// absent. The upsert keeps concurrent first reads from racing.
func (db *DB) GetOrCreateCap(ctx context.Context, householdID string) (*models.FrequencyCap, error) {
	householdID = strings.TrimSpace(householdID)
	if householdID == "" {
		return nil, ErrHouseholdIDRequired
	}

	cap := &models.FrequencyCap{}

	err := db.pool.QueryRow(ctx, getOrCreateCapSQL, householdID).
		Scan(&cap.ID, &cap.HouseholdID, &cap.DailyImpressions, &cap.CapLimit, &cap.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: frequency cap: %w", ErrFailedToQuery, err)
	}

	return cap, nil
}

// IncrementCap adds one impression, creating the row at one when absent, and
// returns the row after the increment.
func (db *DB) IncrementCap(ctx context.Context, householdID string) (*models.FrequencyCap, error) {
	householdID = strings.TrimSpace(householdID)
	if householdID == "" {
		return nil, ErrHouseholdIDRequired
	}

	cap := &models.FrequencyCap{}

	err := db.pool.QueryRow(ctx, incrementCapSQL, householdID).
		Scan(&cap.ID, &cap.HouseholdID, &cap.DailyImpressions, &cap.CapLimit, &cap.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: frequency cap increment: %w", ErrFailedToInsert, err)
	}

	return cap, nil
}
