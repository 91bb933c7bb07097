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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, "localhost", cfg.Aerospike.Host)
	assert.Equal(t, 3000, cfg.Aerospike.Port)
	assert.Equal(t, "test", cfg.Aerospike.Namespace)
	assert.Equal(t, "bolt://neo4j:7687", cfg.Neo4j.URI)
	assert.InDelta(t, 0.7, cfg.BridgingConfidenceThreshold, 1e-9)
	assert.Equal(t, 30, cfg.DataRetentionDays)
	assert.Equal(t, 10, cfg.PrivacyMinThreshold)
	assert.InDelta(t, 1.0, cfg.PrivacyNoiseEpsilon, 1e-9)
	assert.True(t, cfg.UseNeo4jBridging)
	assert.True(t, cfg.PruneNeo4jEnabled)
	assert.False(t, cfg.DPModeEnabled)
	assert.Equal(t, 10*time.Second, cfg.FuzzyDrainInterval)
	assert.Equal(t, time.Hour, cfg.AggFlushInterval)

	assert.Equal(t, map[string]int{
		"impression": 10000,
		"click":      3000,
		"conversion": 500,
	}, cfg.SamplingRates)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://u:p@db:5432/ids")
	t.Setenv("AEROSPIKE_PORT", "3100")
	t.Setenv("BRIDGING_CONFIDENCE_THRESHOLD", "0.85")
	t.Setenv("DATA_RETENTION_DAYS", "7")
	t.Setenv("USE_NEO4J_BRIDGING", "false")
	t.Setenv("DP_MODE_ENABLED", "yes")
	t.Setenv("SAMPLING_RATES", `{"impression":500}`)
	t.Setenv("FUZZY_DRAIN_INTERVAL", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgresql://u:p@db:5432/ids", cfg.DatabaseURL)
	assert.Equal(t, 3100, cfg.Aerospike.Port)
	assert.InDelta(t, 0.85, cfg.BridgingConfidenceThreshold, 1e-9)
	assert.Equal(t, 7, cfg.DataRetentionDays)
	assert.False(t, cfg.UseNeo4jBridging)
	assert.True(t, cfg.DPModeEnabled)
	assert.Equal(t, map[string]int{"impression": 500}, cfg.SamplingRates)
	assert.Equal(t, 2*time.Second, cfg.FuzzyDrainInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.RetentionWindow())
}

func TestLoadRejectsBadSamplingRates(t *testing.T) {
	t.Setenv("SAMPLING_RATES", "not-json")

	_, err := Load()
	require.Error(t, err)
}

func TestEnvHelpersIgnoreGarbage(t *testing.T) {
	t.Setenv("DATA_RETENTION_DAYS", "many")
	t.Setenv("PRIVACY_NOISE_EPSILON", "loud")
	t.Setenv("FUZZY_DRAIN_INTERVAL", "-4s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.DataRetentionDays)
	assert.InDelta(t, 1.0, cfg.PrivacyNoiseEpsilon, 1e-9)
	assert.Equal(t, 10*time.Second, cfg.FuzzyDrainInterval)
}
