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

package kv

import (
	"context"
	"errors"
	"time"

	aero "github.com/aerospike/aerospike-client-go/v7"
	aerotypes "github.com/aerospike/aerospike-client-go/v7/types"

	"github.com/householdiq/bridging/pkg/logger"
)

const (
	binHouseholdID = "household_id"
	binEphemIDs    = "ephem_ids"
	binEventIDs    = "event_ids"
	binBatchEvents = "batchEvents"
	binEdges       = "edges"
	binSumScore    = "sum_score"
	binCountScore  = "count_score"
	binCounts      = "counts"

	casMaxRetries = 5
)

// AerospikeConfig addresses the cluster and namespace.
type AerospikeConfig struct {
	Host      string
	Port      int
	Namespace string

	// RetentionDays sets the TTL for everything but the fuzzy queue.
	RetentionDays int
}

// AerospikeCache is the production KVCache backend.
type AerospikeCache struct {
	client    *aero.Client
	namespace string
	ttl       uint32
	logger    logger.Logger
}

// NewAerospikeCache dials the cluster. Connection failures surface
// immediately so services fail fast at startup.
func NewAerospikeCache(cfg *AerospikeConfig, log logger.Logger) (*AerospikeCache, error) {
	client, err := aero.NewClient(cfg.Host, cfg.Port)
	if err != nil {
		return nil, err
	}

	ttl := uint32(time.Duration(cfg.RetentionDays) * 24 * time.Hour / time.Second)

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("namespace", cfg.Namespace).
		Uint32("ttl_seconds", ttl).
		Msg("Connected to Aerospike")

	return &AerospikeCache{
		client:    client,
		namespace: cfg.Namespace,
		ttl:       ttl,
		logger:    log,
	}, nil
}

func (a *AerospikeCache) key(set, userKey string) (*aero.Key, error) {
	k, err := aero.NewKey(a.namespace, set, userKey)
	if err != nil {
		return nil, err
	}

	return k, nil
}

func (a *AerospikeCache) writePolicy(ttl uint32) *aero.WritePolicy {
	wp := aero.NewWritePolicy(0, ttl)
	wp.SendKey = true

	return wp
}

func (a *AerospikeCache) SetHouseholdRef(_ context.Context, ephemID, householdID string) error {
	k, err := a.key(BridgeSet, ephemID)
	if err != nil {
		return err
	}

	return a.client.Put(a.writePolicy(a.ttl), k, aero.BinMap{binHouseholdID: householdID})
}

func (a *AerospikeCache) GetHouseholdRef(_ context.Context, ephemID string) (string, bool, error) {
	k, err := a.key(BridgeSet, ephemID)
	if err != nil {
		return "", false, err
	}

	rec, err := a.client.Get(nil, k, binHouseholdID)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}

		return "", false, err
	}

	household, _ := rec.Bins[binHouseholdID].(string)
	if household == "" {
		return "", false, nil
	}

	return household, true, nil
}

func (a *AerospikeCache) AppendMembership(_ context.Context, householdID, ephemID string) error {
	return a.listAppend(HouseSet, householdID, binEphemIDs, ephemID, a.ttl)
}

func (a *AerospikeCache) Members(_ context.Context, householdID string) ([]string, error) {
	return a.readList(HouseSet, householdID, binEphemIDs)
}

func (a *AerospikeCache) AddEdge(_ context.Context, householdID, ephemA, ephemB string, score float64) error {
	k, err := a.key(HouseScoreSet, householdID)
	if err != nil {
		return err
	}

	pair := EdgeKey(ephemA, ephemB)

	// Generation-checked read-modify-write; edges is a nested map, so the
	// record is rewritten whole.
	for attempt := 0; attempt < casMaxRetries; attempt++ {
		rec, err := a.client.Get(nil, k)
		if err != nil && !isNotFound(err) {
			return err
		}

		edges := map[string]float64{}
		sum := 0.0
		count := int64(0)
		generation := uint32(0)

		if rec != nil {
			edges = toFloatMap(rec.Bins[binEdges])
			sum = toFloat(rec.Bins[binSumScore])
			count = toInt(rec.Bins[binCountScore])
			generation = rec.Generation
		}

		if _, exists := edges[pair]; exists {
			return nil
		}

		edges[pair] = score
		sum += score
		count++

		wp := a.writePolicy(a.ttl)
		wp.GenerationPolicy = aero.EXPECT_GEN_EQUAL
		wp.Generation = generation

		bins := aero.BinMap{
			binEdges:      toInterfaceMap(edges),
			binSumScore:   sum,
			binCountScore: count,
		}

		err = a.client.Put(wp, k, bins)
		if err == nil {
			return nil
		}

		if !isGenerationConflict(err) {
			return err
		}
	}

	return ErrCASExhausted
}

func (a *AerospikeCache) AvgScore(_ context.Context, householdID string) (float64, error) {
	k, err := a.key(HouseScoreSet, householdID)
	if err != nil {
		return 0, err
	}

	rec, err := a.client.Get(nil, k, binSumScore, binCountScore)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}

		return 0, err
	}

	count := toInt(rec.Bins[binCountScore])
	if count == 0 {
		return 0, nil
	}

	return toFloat(rec.Bins[binSumScore]) / float64(count), nil
}

func (a *AerospikeCache) IndexEmail(_ context.Context, hashedEmail string, eventID int64) error {
	return a.listAppend(EmailIndexSet, hashedEmail, binEventIDs, formatInt(eventID), a.ttl)
}

func (a *AerospikeCache) EmailEvents(_ context.Context, hashedEmail string) ([]int64, error) {
	list, err := a.readList(EmailIndexSet, hashedEmail, binEventIDs)
	if err != nil {
		return nil, err
	}

	return toInt64s(list), nil
}

func (a *AerospikeCache) EnqueueFuzzy(_ context.Context, eventID int64) error {
	return a.listAppend(FuzzyQueueSet, fuzzyQueueKey, binBatchEvents, formatInt(eventID), FuzzyQueueTTLSeconds)
}

func (a *AerospikeCache) PopFuzzy(_ context.Context) ([]int64, error) {
	k, err := a.key(FuzzyQueueSet, fuzzyQueueKey)
	if err != nil {
		return nil, err
	}

	rec, err := a.client.Get(nil, k, binBatchEvents)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}

		return nil, err
	}

	batch := toStrings(rec.Bins[binBatchEvents])

	// Get-then-delete; a racing drainer rereads an empty queue and the
	// merges downstream are idempotent either way.
	if _, err := a.client.Delete(a.writePolicy(0), k); err != nil && !isNotFound(err) {
		return nil, err
	}

	return toInt64s(batch), nil
}

func (a *AerospikeCache) IncDaily(_ context.Context, dateStr, fieldKey string) error {
	k, err := a.key(DailyAggSet, dateStr)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < casMaxRetries; attempt++ {
		rec, err := a.client.Get(nil, k, binCounts)
		if err != nil && !isNotFound(err) {
			return err
		}

		counts := map[string]int64{}
		generation := uint32(0)

		if rec != nil {
			counts = toIntMap(rec.Bins[binCounts])
			generation = rec.Generation
		}

		counts[fieldKey]++

		wp := a.writePolicy(a.ttl)
		wp.GenerationPolicy = aero.EXPECT_GEN_EQUAL
		wp.Generation = generation

		err = a.client.Put(wp, k, aero.BinMap{binCounts: toInterfaceIntMap(counts)})
		if err == nil {
			return nil
		}

		if !isGenerationConflict(err) {
			return err
		}
	}

	return ErrCASExhausted
}

func (a *AerospikeCache) ScanDaily(_ context.Context, fn func(dateStr string, counts map[string]int64) error) error {
	sp := aero.NewScanPolicy()

	recordset, err := a.client.ScanAll(sp, a.namespace, DailyAggSet)
	if err != nil {
		return err
	}

	var firstErr error

	for res := range recordset.Results() {
		if res.Err != nil {
			a.logger.Error().Err(res.Err).Msg("daily aggregate scan error")
			continue
		}

		rec := res.Record

		dateStr := ""
		if rec.Key != nil && rec.Key.Value() != nil {
			dateStr, _ = rec.Key.Value().GetObject().(string)
		}

		if dateStr == "" {
			a.logger.Warn().Msg("daily aggregate record without user key, skipping")
			continue
		}

		counts := toIntMap(rec.Bins[binCounts])

		if err := fn(dateStr, counts); err != nil {
			a.logger.Error().Err(err).Str("date", dateStr).Msg("daily aggregate flush callback failed")

			if firstErr == nil {
				firstErr = err
			}
		}

		if _, err := a.client.Delete(a.writePolicy(0), rec.Key); err != nil && !isNotFound(err) {
			a.logger.Error().Err(err).Str("date", dateStr).Msg("failed to remove flushed daily aggregate record")
		}
	}

	return firstErr
}

func (a *AerospikeCache) Close() {
	a.client.Close()
}

func (a *AerospikeCache) listAppend(set, userKey, bin, value string, ttl uint32) error {
	k, err := a.key(set, userKey)
	if err != nil {
		return err
	}

	_, err = a.client.Operate(a.writePolicy(ttl), k, aero.ListAppendOp(bin, value))

	return err
}

func (a *AerospikeCache) readList(set, userKey, bin string) ([]string, error) {
	k, err := a.key(set, userKey)
	if err != nil {
		return nil, err
	}

	rec, err := a.client.Get(nil, k, bin)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}

		return nil, err
	}

	return toStrings(rec.Bins[bin]), nil
}

func isNotFound(err error) bool {
	var ae aero.Error
	return errors.As(err, &ae) && ae.Matches(aerotypes.KEY_NOT_FOUND_ERROR)
}

func isGenerationConflict(err error) bool {
	var ae aero.Error
	return errors.As(err, &ae) && ae.Matches(aerotypes.GENERATION_ERROR)
}

func toStrings(raw interface{}) []string {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(list))

	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func toFloat(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func toInt(raw interface{}) int64 {
	switch v := raw.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toFloatMap(raw interface{}) map[string]float64 {
	out := map[string]float64{}

	m, ok := raw.(map[interface{}]interface{})
	if !ok {
		return out
	}

	for k, v := range m {
		key, ok := k.(string)
		if !ok {
			continue
		}

		out[key] = toFloat(v)
	}

	return out
}

func toIntMap(raw interface{}) map[string]int64 {
	out := map[string]int64{}

	m, ok := raw.(map[interface{}]interface{})
	if !ok {
		return out
	}

	for k, v := range m {
		key, ok := k.(string)
		if !ok {
			continue
		}

		out[key] = toInt(v)
	}

	return out
}

func toInterfaceMap(m map[string]float64) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

func toInterfaceIntMap(m map[string]int64) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
