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
	insertConsentFlagsSQL = `
INSERT INTO consent_flags (cross_device_bridging, targeting_segments)
VALUES ($1, $2)
RETURNING id`

	insertConsentRevocationSQL = `
INSERT INTO consent_revocations (ephem_id)
VALUES ($1)
RETURNING id, ephem_id, revoked_at`
)

// InsertConsentFlags records the effective consent for one event. The
// cross-device flag already folds in the privacy-gate decision.
func (db *DB) InsertConsentFlags(ctx context.Context, crossDevice, targeting bool) (int64, error) {
	var id int64

	err := db.pool.QueryRow(ctx, insertConsentFlagsSQL, crossDevice, targeting).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: consent flags: %w", ErrFailedToInsert, err)
	}

	return id, nil
}

// InsertConsentRevocation appends an opt-out row for an ephemeral id.
func (db *DB) InsertConsentRevocation(ctx context.Context, ephemID string) (*models.ConsentRevocation, error) {
	ephemID = strings.TrimSpace(ephemID)
	if ephemID == "" {
		return nil, ErrEphemIDRequired
	}

	revocation := &models.ConsentRevocation{}

	err := db.pool.QueryRow(ctx, insertConsentRevocationSQL, ephemID).
		Scan(&revocation.ID, &revocation.EphemID, &revocation.RevokedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: consent revocation: %w", ErrFailedToInsert, err)
	}

	return revocation, nil
}
