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

	"github.com/jackc/pgx/v5"

	"github.com/householdiq/bridging/pkg/models"
)

const (
	latestBridgingConfigSQL = `
SELECT id, threshold, partial_key_weights, time_decay_factor, last_updated
FROM bridging_config
ORDER BY last_updated DESC, id DESC
LIMIT 1`

	insertBridgingConfigSQL = `
INSERT INTO bridging_config (threshold, partial_key_weights, time_decay_factor)
VALUES ($1, $2, $3)
RETURNING id`

	latestMLThresholdSQL = `
SELECT id, model_version, threshold_value, last_trained
FROM ml_bridging_thresholds
ORDER BY last_trained DESC, id DESC
LIMIT 1`

	insertMLThresholdSQL = `
INSERT INTO ml_bridging_thresholds (model_version, threshold_value)
VALUES ($1, $2)
RETURNING id`
)

// LatestBridgingConfig returns the newest operator config, or nil when none
// has been written.
func (db *DB) LatestBridgingConfig(ctx context.Context) (*models.BridgingConfig, error) {
	cfg := &models.BridgingConfig{}

	var weights []byte

	err := db.pool.QueryRow(ctx, latestBridgingConfigSQL).
		Scan(&cfg.ID, &cfg.Threshold, &weights, &cfg.TimeDecayFactor, &cfg.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: bridging config: %w", ErrFailedToQuery, err)
	}

	if len(weights) > 0 {
		if err := json.Unmarshal(weights, &cfg.PartialKeyWeights); err != nil {
			return nil, fmt.Errorf("%w: partial key weights: %w", ErrFailedToScan, err)
		}
	}

	return cfg, nil
}

func (db *DB) InsertBridgingConfig(ctx context.Context, cfg *models.BridgingConfig) (int64, error) {
	var weights any

	if cfg.PartialKeyWeights != nil {
		raw, err := json.Marshal(cfg.PartialKeyWeights)
		if err != nil {
			return 0, fmt.Errorf("%w: partial key weights: %w", ErrFailedToInsert, err)
		}

		weights = raw
	}

	var id int64

	err := db.pool.QueryRow(ctx, insertBridgingConfigSQL,
		cfg.Threshold, weights, cfg.TimeDecayFactor).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: bridging config: %w", ErrFailedToInsert, err)
	}

	return id, nil
}

// LatestMLThreshold returns the newest model-published threshold by training
// time, or nil when no model has published yet.
func (db *DB) LatestMLThreshold(ctx context.Context) (*models.MLBridgingThreshold, error) {
	threshold := &models.MLBridgingThreshold{}

	err := db.pool.QueryRow(ctx, latestMLThresholdSQL).
		Scan(&threshold.ID, &threshold.ModelVersion, &threshold.ThresholdValue, &threshold.LastTrained)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: ml threshold: %w", ErrFailedToQuery, err)
	}

	return threshold, nil
}

func (db *DB) InsertMLThreshold(ctx context.Context, modelVersion string, threshold float64) (int64, error) {
	var id int64

	err := db.pool.QueryRow(ctx, insertMLThresholdSQL, modelVersion, threshold).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: ml threshold: %w", ErrFailedToInsert, err)
	}

	return id, nil
}
