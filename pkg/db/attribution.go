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
	"fmt"

	"github.com/householdiq/bridging/pkg/models"
)

const (
	insertAttributionJourneySQL = `
INSERT INTO attribution_journeys (household_id, conversion_time, touch_points)
VALUES ($1, $2, $3)
RETURNING id`

	journeysForHouseholdSQL = `
SELECT id, household_id, conversion_time, touch_points, created_at
FROM attribution_journeys
WHERE household_id = $1
ORDER BY conversion_time DESC`

	insertLookalikeSegmentSQL = `
INSERT INTO lookalike_segments (seed_segment, matched_households)
VALUES ($1, $2)
RETURNING id`
)

// InsertAttributionJourney records a conversion with its touch points.
func (db *DB) InsertAttributionJourney(ctx context.Context, journey *models.AttributionJourney) (int64, error) {
	if journey == nil {
		return 0, ErrJourneyNil
	}

	if journey.HouseholdID == "" {
		return 0, ErrHouseholdIDRequired
	}

	touchPoints, err := json.Marshal(journey.TouchPoints)
	if err != nil {
		return 0, fmt.Errorf("%w: touch points: %w", ErrFailedToInsert, err)
	}

	var id int64

	err = db.pool.QueryRow(ctx, insertAttributionJourneySQL,
		journey.HouseholdID, journey.ConversionTime, touchPoints).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: attribution journey: %w", ErrFailedToInsert, err)
	}

	return id, nil
}

func (db *DB) JourneysForHousehold(ctx context.Context, householdID string) ([]*models.AttributionJourney, error) {
	rows, err := db.pool.Query(ctx, journeysForHouseholdSQL, householdID)
	if err != nil {
		return nil, fmt.Errorf("%w: journeys: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var journeys []*models.AttributionJourney

	for rows.Next() {
		journey := &models.AttributionJourney{}

		var touchPoints []byte

		if err := rows.Scan(&journey.ID, &journey.HouseholdID,
			&journey.ConversionTime, &touchPoints, &journey.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: journey: %w", ErrFailedToScan, err)
		}

		if len(touchPoints) > 0 {
			if err := json.Unmarshal(touchPoints, &journey.TouchPoints); err != nil {
				return nil, fmt.Errorf("%w: touch points: %w", ErrFailedToScan, err)
			}
		}

		journeys = append(journeys, journey)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: journeys: %w", ErrFailedToQuery, err)
	}

	return journeys, nil
}

func (db *DB) InsertLookalikeSegment(ctx context.Context, segment *models.LookalikeSegment) (int64, error) {
	if segment == nil {
		return 0, ErrJourneyNil
	}

	matched, err := json.Marshal(segment.MatchedHouseholds)
	if err != nil {
		return 0, fmt.Errorf("%w: matched households: %w", ErrFailedToInsert, err)
	}

	var id int64

	err = db.pool.QueryRow(ctx, insertLookalikeSegmentSQL, segment.SeedSegment, matched).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: lookalike segment: %w", ErrFailedToInsert, err)
	}

	return id, nil
}
