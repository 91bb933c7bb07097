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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() *MemoryCache {
	return NewMemoryCache(time.Hour)
}

func TestHouseholdRefOverwrite(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache()

	_, found, err := cache.GetHouseholdRef(ctx, "ephem-a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.SetHouseholdRef(ctx, "ephem-a", "hh-1"))
	require.NoError(t, cache.SetHouseholdRef(ctx, "ephem-a", "hh-2"))

	household, found, err := cache.GetHouseholdRef(ctx, "ephem-a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hh-2", household)
}

func TestMembershipToleratesDuplicates(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache()

	require.NoError(t, cache.AppendMembership(ctx, "hh-1", "a"))
	require.NoError(t, cache.AppendMembership(ctx, "hh-1", "b"))
	require.NoError(t, cache.AppendMembership(ctx, "hh-1", "a"))

	members, err := cache.Members(ctx, "hh-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a"}, members)
}

func TestEdgeBookInvariant(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache()

	require.NoError(t, cache.AddEdge(ctx, "hh-1", "a", "b", 0.8))
	require.NoError(t, cache.AddEdge(ctx, "hh-1", "b", "c", 0.6))

	avg, err := cache.AvgScore(ctx, "hh-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, avg, 1e-9)

	// Re-inserting an existing pair in either order is a no-op on sums.
	require.NoError(t, cache.AddEdge(ctx, "hh-1", "b", "a", 0.99))

	avg, err = cache.AvgScore(ctx, "hh-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, avg, 1e-9)
}

func TestAvgScoreEmptyHousehold(t *testing.T) {
	cache := newTestCache()

	avg, err := cache.AvgScore(context.Background(), "nope")
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestEmailIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache()

	events, err := cache.EmailEvents(ctx, "h1")
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, cache.IndexEmail(ctx, "h1", 11))
	require.NoError(t, cache.IndexEmail(ctx, "h1", 12))

	events, err = cache.EmailEvents(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, events)
}

func TestFuzzyQueueEnqueuePop(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache()

	require.NoError(t, cache.EnqueueFuzzy(ctx, 7))
	require.NoError(t, cache.EnqueueFuzzy(ctx, 8))

	batch, err := cache.PopFuzzy(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, batch)

	batch, err = cache.PopFuzzy(ctx)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestIncDailyConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			for j := 0; j < perWorker; j++ {
				_ = cache.IncDaily(ctx, "2025-06-01", "1|mobile|impression")
			}
		}()
	}

	wg.Wait()

	var got int64

	err := cache.ScanDaily(ctx, func(dateStr string, counts map[string]int64) error {
		assert.Equal(t, "2025-06-01", dateStr)
		got = counts["1|mobile|impression"]

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), got)
}

func TestScanDailyRemovesRecords(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache()

	require.NoError(t, cache.IncDaily(ctx, "2025-06-01", "1|ctv|click"))
	require.NoError(t, cache.IncDaily(ctx, "2025-06-02", "1|ctv|click"))

	seen := map[string]bool{}

	err := cache.ScanDaily(ctx, func(dateStr string, _ map[string]int64) error {
		seen[dateStr] = true

		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 2)

	// A second scan finds nothing; the records were consumed.
	err = cache.ScanDaily(ctx, func(string, map[string]int64) error {
		t.Fatal("unexpected record after flush")

		return nil
	})
	require.NoError(t, err)
}

func TestEdgeKeySortsPair(t *testing.T) {
	assert.Equal(t, EdgeKey("b", "a"), EdgeKey("a", "b"))
	assert.Equal(t, "a|b", EdgeKey("b", "a"))
}

func TestDailyFieldKeyRoundTrip(t *testing.T) {
	key := DailyFieldKey(42, "mobile", "impression")
	assert.Equal(t, "42|mobile|impression", key)

	partner, device, event, ok := ParseDailyFieldKey(key)
	require.True(t, ok)
	assert.Equal(t, int64(42), partner)
	assert.Equal(t, "mobile", device)
	assert.Equal(t, "impression", event)

	_, _, _, ok = ParseDailyFieldKey("bogus")
	assert.False(t, ok)
}
