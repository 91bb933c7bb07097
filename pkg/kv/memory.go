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
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process KVCache used by tests and single-node
// deployments. TTL handling rides on go-cache; read-modify-write sequences
// are serialized by a single mutex, which is plenty at this scale.
type MemoryCache struct {
	mu      sync.Mutex
	store   *gocache.Cache
	ttl     time.Duration
	fuzzTTL time.Duration
}

type edgeBook struct {
	Edges      map[string]float64
	SumScore   float64
	CountScore int64
}

// NewMemoryCache builds a MemoryCache whose records expire after the
// retention window; the fuzzy queue keeps its own short TTL.
func NewMemoryCache(retention time.Duration) *MemoryCache {
	if retention <= 0 {
		retention = gocache.NoExpiration
	}

	return &MemoryCache{
		store:   gocache.New(retention, 10*time.Minute),
		ttl:     retention,
		fuzzTTL: FuzzyQueueTTLSeconds * time.Second,
	}
}

func recordKey(set, key string) string {
	return set + "/" + key
}

func (m *MemoryCache) SetHouseholdRef(_ context.Context, ephemID, householdID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Set(recordKey(BridgeSet, ephemID), householdID, m.ttl)

	return nil
}

func (m *MemoryCache) GetHouseholdRef(_ context.Context, ephemID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, found := m.store.Get(recordKey(BridgeSet, ephemID))
	if !found {
		return "", false, nil
	}

	return raw.(string), true, nil
}

func (m *MemoryCache) AppendMembership(_ context.Context, householdID, ephemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appendString(recordKey(HouseSet, householdID), ephemID, m.ttl)

	return nil
}

func (m *MemoryCache) Members(_ context.Context, householdID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.readStrings(recordKey(HouseSet, householdID)), nil
}

func (m *MemoryCache) AddEdge(_ context.Context, householdID, ephemA, ephemB string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey(HouseScoreSet, householdID)

	book := &edgeBook{Edges: map[string]float64{}}
	if raw, found := m.store.Get(key); found {
		book = raw.(*edgeBook)
	}

	pair := EdgeKey(ephemA, ephemB)
	if _, exists := book.Edges[pair]; !exists {
		book.Edges[pair] = score
		book.SumScore += score
		book.CountScore++
	}

	m.store.Set(key, book, m.ttl)

	return nil
}

func (m *MemoryCache) AvgScore(_ context.Context, householdID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, found := m.store.Get(recordKey(HouseScoreSet, householdID))
	if !found {
		return 0, nil
	}

	book := raw.(*edgeBook)
	if book.CountScore == 0 {
		return 0, nil
	}

	return book.SumScore / float64(book.CountScore), nil
}

func (m *MemoryCache) IndexEmail(_ context.Context, hashedEmail string, eventID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appendString(recordKey(EmailIndexSet, hashedEmail), formatInt(eventID), m.ttl)

	return nil
}

func (m *MemoryCache) EmailEvents(_ context.Context, hashedEmail string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return toInt64s(m.readStrings(recordKey(EmailIndexSet, hashedEmail))), nil
}

func (m *MemoryCache) EnqueueFuzzy(_ context.Context, eventID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appendString(recordKey(FuzzyQueueSet, fuzzyQueueKey), formatInt(eventID), m.fuzzTTL)

	return nil
}

func (m *MemoryCache) PopFuzzy(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey(FuzzyQueueSet, fuzzyQueueKey)
	ids := toInt64s(m.readStrings(key))
	m.store.Delete(key)

	return ids, nil
}

func (m *MemoryCache) IncDaily(_ context.Context, dateStr, fieldKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey(DailyAggSet, dateStr)

	counts := map[string]int64{}
	if raw, found := m.store.Get(key); found {
		counts = raw.(map[string]int64)
	}

	counts[fieldKey]++
	m.store.Set(key, counts, m.ttl)

	return nil
}

func (m *MemoryCache) ScanDaily(_ context.Context, fn func(dateStr string, counts map[string]int64) error) error {
	m.mu.Lock()

	type dailyRecord struct {
		date   string
		counts map[string]int64
	}

	var records []dailyRecord

	prefix := recordKey(DailyAggSet, "")
	for key, item := range m.store.Items() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		records = append(records, dailyRecord{
			date:   strings.TrimPrefix(key, prefix),
			counts: item.Object.(map[string]int64),
		})
		m.store.Delete(key)
	}
	m.mu.Unlock()

	// fn runs outside the lock; errors are the caller's to log, the scan
	// continues regardless.
	var firstErr error

	for _, rec := range records {
		if err := fn(rec.date, rec.counts); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (m *MemoryCache) Close() {
	m.store.Flush()
}

func (m *MemoryCache) appendString(key, value string, ttl time.Duration) {
	var list []string
	if raw, found := m.store.Get(key); found {
		list = raw.([]string)
	}

	m.store.Set(key, append(list, value), ttl)
}

func (m *MemoryCache) readStrings(key string) []string {
	raw, found := m.store.Get(key)
	if !found {
		return nil
	}

	list := raw.([]string)
	out := make([]string, len(list))
	copy(out, list)

	return out
}

func toInt64s(list []string) []int64 {
	out := make([]int64, 0, len(list))

	for _, s := range list {
		v, err := parseInt(s)
		if err != nil {
			continue
		}

		out = append(out, v)
	}

	return out
}
