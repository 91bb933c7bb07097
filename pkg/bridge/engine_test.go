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

package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/graph"
	"github.com/householdiq/bridging/pkg/hashutil"
	"github.com/householdiq/bridging/pkg/kv"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

type engineFixture struct {
	engine *Engine
	store  *db.MockService
	cache  *kv.MemoryCache
	linker *graph.MemoryLinker
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)
	cache := kv.NewMemoryCache(time.Hour)
	linker := graph.NewMemoryLinker()

	engine := NewEngine(
		store,
		cache,
		linker,
		hashutil.NewHasher(testSalt),
		NewTokenMinter("engine-test-secret"),
		EngineConfig{DefaultThreshold: 0.7, Retention: 30 * 24 * time.Hour},
		logger.NewTestLogger(),
	)

	return &engineFixture{engine: engine, store: store, cache: cache, linker: linker}
}

func (f *engineFixture) expectDefaultScoring() {
	f.store.EXPECT().LatestBridgingConfig(gomock.Any()).Return(nil, nil).AnyTimes()
	f.store.EXPECT().LatestMLThreshold(gomock.Any()).Return(nil, nil).AnyTimes()
}

func consentedEvent(id int64, ephemID string, keys map[string]string) *models.EphemeralEvent {
	return &models.EphemeralEvent{
		ID:          id,
		EphemID:     ephemID,
		PartialKeys: keys,
		EventType:   models.EventTypeImpression,
		Timestamp:   time.Now().UTC(),
		Consent:     &models.ConsentFlags{CrossDeviceBridging: true, TargetingSegments: true},
	}
}

func TestBridgeDeniedWithoutConsent(t *testing.T) {
	f := newEngineFixture(t)

	ev := consentedEvent(1, "e1", nil)
	ev.Consent = &models.ConsentFlags{CrossDeviceBridging: false}

	result := f.engine.Bridge(context.Background(), ev)
	assert.Equal(t, models.BridgeStatusNoConsent, result.Status)
	assert.Empty(t, result.HouseholdID)

	// A missing consent row denies too.
	ev.Consent = nil
	result = f.engine.Bridge(context.Background(), ev)
	assert.Equal(t, models.BridgeStatusNoConsent, result.Status)
}

func TestBridgeChildFlagSuppresses(t *testing.T) {
	f := newEngineFixture(t)

	ev := consentedEvent(1, "e1", map[string]string{models.KeyHashedEmail: "kid@hash"})
	ev.IsChild = true

	result := f.engine.Bridge(context.Background(), ev)
	assert.Equal(t, models.BridgeStatusChildFlag, result.Status)

	// No edges may touch a child-flagged event.
	assert.Zero(t, f.linker.RelationshipsTouching("e1"))
}

func TestBridgeWithoutEmailQueues(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)

	ev := consentedEvent(7, "e7", map[string]string{models.KeyHashedIP: "ip-1"})

	result := f.engine.Bridge(ctx, ev)
	assert.Equal(t, models.BridgeStatusQueued, result.Status)

	queued, err := f.cache.PopFuzzy(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, queued)
}

func TestBridgeDeterministicFirstSighting(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)

	ev := consentedEvent(1, "e1", map[string]string{models.KeyHashedEmail: "A@Hash"})

	result := f.engine.Bridge(ctx, ev)
	assert.Equal(t, models.BridgeStatusDone, result.Status)
	assert.Empty(t, result.HouseholdID)
	assert.Empty(t, result.Token)

	// The event is indexed after the attempt, under the lowercased email.
	ids, err := f.cache.EmailEvents(ctx, "a@hash")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestBridgeDeterministicMatchMintsToken(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.expectDefaultScoring()

	other := consentedEvent(1, "e1", map[string]string{
		models.KeyHashedEmail: "a@hash",
		models.KeyWifiSSID:    "HomeNet",
	})
	require.NoError(t, f.cache.IndexEmail(ctx, "a@hash", 1))

	f.store.EXPECT().GetEvent(gomock.Any(), int64(1)).Return(other, nil)
	f.store.EXPECT().IsPluginEnabled(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	ev := consentedEvent(2, "e2", map[string]string{
		models.KeyHashedEmail: "A@hash",
		models.KeyWifiSSID:    "HomeNet",
	})

	result := f.engine.Bridge(ctx, ev)
	require.Equal(t, models.BridgeStatusDone, result.Status)

	wantHousehold := hashutil.Identity(testSalt, "HomeNet"+suffixHousehold)
	assert.Equal(t, wantHousehold, result.HouseholdID)

	claims, err := f.engine.minter.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "e2", claims.Subject)
	assert.Equal(t, wantHousehold, claims.Household)

	// Both sides carry the household ref and membership.
	household, found, err := f.cache.GetHouseholdRef(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, wantHousehold, household)

	members, err := f.cache.Members(ctx, wantHousehold)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e1", "e2"}, members)

	avg, err := f.cache.AvgScore(ctx, wantHousehold)
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)

	// Index now holds both events.
	ids, err := f.cache.EmailEvents(ctx, "a@hash")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestBridgeDeterministicSoloHouseholdNoEdgeBook(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.expectDefaultScoring()

	// Same email, no shared wifi: shared user, solo households, no
	// membership rows.
	other := consentedEvent(1, "e1", map[string]string{models.KeyHashedEmail: "a@hash"})
	require.NoError(t, f.cache.IndexEmail(ctx, "a@hash", 1))

	f.store.EXPECT().GetEvent(gomock.Any(), int64(1)).Return(other, nil)
	f.store.EXPECT().IsPluginEnabled(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	ev := consentedEvent(2, "e2", map[string]string{models.KeyHashedEmail: "a@hash"})

	result := f.engine.Bridge(ctx, ev)
	require.Equal(t, models.BridgeStatusDone, result.Status)
	require.NotEmpty(t, result.HouseholdID)

	members, err := f.cache.Members(ctx, result.HouseholdID)
	require.NoError(t, err)
	assert.Empty(t, members)

	avg, err := f.cache.AvgScore(ctx, result.HouseholdID)
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestFuzzyBridgeBelowThresholdSkips(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.expectDefaultScoring()

	a := consentedEvent(1, "e1", map[string]string{models.KeyDeviceType: "mobile"})
	b := consentedEvent(2, "e2", map[string]string{models.KeyDeviceType: "mobile"})

	// deviceType alone contributes 0.2, well under 0.7.
	bridged, err := f.engine.FuzzyBridge(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, bridged)
	assert.Zero(t, f.linker.RelationshipCount())
}

func TestFuzzyBridgeSkipsChildAndNonConsent(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.expectDefaultScoring()

	keys := map[string]string{models.KeyHashedIP: "ip-1", models.KeyWifiSSID: "HomeNet"}

	a := consentedEvent(1, "e1", keys)
	child := consentedEvent(2, "e2", keys)
	child.DeviceChildFlag = true

	bridged, err := f.engine.FuzzyBridge(ctx, a, child)
	require.NoError(t, err)
	assert.False(t, bridged)

	noConsent := consentedEvent(3, "e3", keys)
	noConsent.Consent.CrossDeviceBridging = false

	bridged, err = f.engine.FuzzyBridge(ctx, a, noConsent)
	require.NoError(t, err)
	assert.False(t, bridged)
}

func TestProcessFuzzyQueueBridgesRecentPair(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.expectDefaultScoring()
	f.store.EXPECT().IsPluginEnabled(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	queued := consentedEvent(10, "e10", map[string]string{
		models.KeyHashedIP:   "ip-1",
		models.KeyWifiSSID:   "HomeNet",
		models.KeyDeviceType: "mobile",
	})
	neighbor := consentedEvent(11, "e11", map[string]string{
		models.KeyHashedIP:   "ip-1",
		models.KeyWifiSSID:   "homenet",
		models.KeyDeviceType: "ctv",
	})

	require.NoError(t, f.cache.EnqueueFuzzy(ctx, 10))

	f.store.EXPECT().GetEventsSince(gomock.Any(), gomock.Any()).
		Return([]*models.EphemeralEvent{queued, neighbor}, nil)

	bridged, err := f.engine.ProcessFuzzyQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, bridged)

	wantHousehold := hashutil.Identity(testSalt, "HomeNet"+suffixHousehold)

	household, found, err := f.cache.GetHouseholdRef(ctx, "e10")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, wantHousehold, household)

	// Graph carries the full Event->Device->User->Household chain.
	assert.Equal(t, 2, f.linker.NodeCount(graph.LabelEvent))
	assert.Equal(t, 1, f.linker.NodeCount(graph.LabelDevice))
	assert.Equal(t, 1, f.linker.NodeCount(graph.LabelHousehold))
}

func TestProcessFuzzyQueueSkipsMissingEvents(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.expectDefaultScoring()

	require.NoError(t, f.cache.EnqueueFuzzy(ctx, 99))

	f.store.EXPECT().GetEventsSince(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	bridged, err := f.engine.ProcessFuzzyQueue(ctx)
	require.NoError(t, err)
	assert.Zero(t, bridged)
}

func TestProcessFuzzyQueueEmptyQueueNoStoreLoad(t *testing.T) {
	f := newEngineFixture(t)

	// No GetEventsSince expectation: an empty queue must not load events.
	bridged, err := f.engine.ProcessFuzzyQueue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, bridged)
}

type recordingObserver struct {
	name    string
	updates []*models.BridgeUpdate
}

func (o *recordingObserver) Name() string { return o.name }

func (o *recordingObserver) OnBridgingUpdate(_ context.Context, update *models.BridgeUpdate) error {
	o.updates = append(o.updates, update)

	return nil
}

func TestObserversGatedByPluginRegistry(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.expectDefaultScoring()

	enabled := &recordingObserver{name: "enabled_observer"}
	disabled := &recordingObserver{name: "disabled_observer"}

	f.engine.RegisterObserver(enabled)
	f.engine.RegisterObserver(disabled)

	f.store.EXPECT().IsPluginEnabled(gomock.Any(), "enabled_observer").Return(true, nil)
	f.store.EXPECT().IsPluginEnabled(gomock.Any(), "disabled_observer").Return(false, nil)

	keys := map[string]string{models.KeyHashedIP: "ip-1", models.KeyWifiSSID: "HomeNet"}

	a := consentedEvent(1, "e1", keys)
	b := consentedEvent(2, "e2", keys)

	bridged, err := f.engine.FuzzyBridge(ctx, a, b)
	require.NoError(t, err)
	require.True(t, bridged)

	require.Len(t, enabled.updates, 1)
	assert.Empty(t, disabled.updates)

	update := enabled.updates[0]
	assert.Equal(t, "e1", update.EphemID)
	assert.Equal(t, "e2", update.OtherEphem)
	assert.NotEmpty(t, update.HouseholdID)
	assert.GreaterOrEqual(t, update.Score, 0.7)
}
