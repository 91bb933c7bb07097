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

//go:generate mockgen -destination=mock_kv.go -package=kv github.com/householdiq/bridging/pkg/kv KVCache

// Package kv holds the ephemeral derived state of the bridging pipeline:
// household references and membership, edge-score books, the hashed-email
// index, the fuzzy queue, and daily-aggregate counters. Everything here is
// rebuildable; loss of the cache must never corrupt the graph.
package kv

import (
	"context"
	"sort"
	"strings"
)

// Record sets. The Aerospike backend maps these to sets inside the
// configured namespace; the memory backend uses them as key prefixes.
const (
	BridgeSet     = "bridgeSet"
	HouseSet      = "houseSet"
	HouseScoreSet = "houseScoreSet"
	DailyAggSet   = "dailyAggSet"
	EmailIndexSet = "emailIndexSet"
	FuzzyQueueSet = "fuzzyQueueSet"

	// The fuzzy queue is a single record at a well-known key.
	fuzzyQueueKey = "batchQueue"
)

// FuzzyQueueTTLSeconds bounds queue retention so outages cannot accumulate
// work forever. Everything else lives for the retention window.
const FuzzyQueueTTLSeconds = 3600

// KVCache is the contract the bridging engine and schedulers consume.
// Operations are idempotent where semantically meaningful; concurrent use
// must be safe.
type KVCache interface {
	// SetHouseholdRef overwrites the ephemeral->household mapping.
	SetHouseholdRef(ctx context.Context, ephemID, householdID string) error

	// GetHouseholdRef returns the mapped household id, or found=false.
	GetHouseholdRef(ctx context.Context, ephemID string) (householdID string, found bool, err error)

	// AppendMembership appends ephemID to the household's member list.
	// Duplicates are tolerated; readers deduplicate.
	AppendMembership(ctx context.Context, householdID, ephemID string) error

	// Members returns the raw (possibly duplicated) membership list.
	Members(ctx context.Context, householdID string) ([]string, error)

	// AddEdge records the pair score under the sorted pair key. The first
	// insert bumps sum_score and count_score; re-inserting an existing
	// pair is a no-op.
	AddEdge(ctx context.Context, householdID, ephemA, ephemB string, score float64) error

	// AvgScore returns sum_score/count_score, or 0 with no edges.
	AvgScore(ctx context.Context, householdID string) (float64, error)

	// IndexEmail appends the event id to the hashed email's event list.
	IndexEmail(ctx context.Context, hashedEmail string, eventID int64) error

	// EmailEvents returns the indexed event ids for the hashed email.
	EmailEvents(ctx context.Context, hashedEmail string) ([]int64, error)

	// EnqueueFuzzy appends the event id to the shared fuzzy queue.
	EnqueueFuzzy(ctx context.Context, eventID int64) error

	// PopFuzzy reads and deletes the fuzzy queue in one logical step.
	// An absent queue yields an empty batch.
	PopFuzzy(ctx context.Context) ([]int64, error)

	// IncDaily increments counts[fieldKey] on the record at dateStr by 1.
	// Concurrent increments on the same date must not lose updates.
	IncDaily(ctx context.Context, dateStr, fieldKey string) error

	// ScanDaily invokes fn per buffered daily record and removes each
	// record afterwards. A failing fn is logged and does not stop the
	// scan; its record is still removed.
	ScanDaily(ctx context.Context, fn func(dateStr string, counts map[string]int64) error) error

	// Close releases backend resources.
	Close()
}

// EdgeKey builds the order-independent pair key for the edge book.
func EdgeKey(ephemA, ephemB string) string {
	pair := []string{ephemA, ephemB}
	sort.Strings(pair)

	return strings.Join(pair, "|")
}

// DailyFieldKey builds the coalesced counter key partner|device|event.
func DailyFieldKey(partnerID int64, deviceType, eventType string) string {
	return strings.Join([]string{formatInt(partnerID), deviceType, eventType}, "|")
}

// ParseDailyFieldKey splits a counter key back into its parts.
func ParseDailyFieldKey(fieldKey string) (partnerID int64, deviceType, eventType string, ok bool) {
	parts := strings.SplitN(fieldKey, "|", 3)
	if len(parts) != 3 {
		return 0, "", "", false
	}

	partnerID, err := parseInt(parts[0])
	if err != nil {
		return 0, "", "", false
	}

	return partnerID, parts[1], parts[2], true
}
