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

package capping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

// capStore emulates the relational counter semantics for a single household.
type capStore struct {
	impressions int64
	capLimit    int64
}

func newManagerFixture(t *testing.T) (*Manager, *capStore) {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)
	state := &capStore{capLimit: 5}

	store.EXPECT().GetOrCreateCap(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, householdID string) (*models.FrequencyCap, error) {
			return &models.FrequencyCap{
				HouseholdID:      householdID,
				DailyImpressions: state.impressions,
				CapLimit:         state.capLimit,
			}, nil
		}).AnyTimes()

	store.EXPECT().IncrementCap(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, householdID string) (*models.FrequencyCap, error) {
			state.impressions++

			return &models.FrequencyCap{
				HouseholdID:      householdID,
				DailyImpressions: state.impressions,
				CapLimit:         state.capLimit,
			}, nil
		}).AnyTimes()

	return NewManager(store, logger.NewTestLogger()), state
}

func TestCheckFreshHouseholdServes(t *testing.T) {
	manager, _ := newManagerFixture(t)

	decision, err := manager.Check(context.Background(), "hh-1")
	require.NoError(t, err)
	assert.True(t, decision.CanServe)
	assert.Zero(t, decision.DailyImpressions)
	assert.Equal(t, int64(5), decision.CapLimit)
}

func TestIncrementFiveServesSixthDenied(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManagerFixture(t)

	for i := 1; i <= 5; i++ {
		decision, err := manager.Increment(ctx, "hh-1")
		require.NoError(t, err)
		assert.True(t, decision.CanServe, "impression %d should serve", i)
		assert.Equal(t, int64(i), decision.DailyImpressions)
	}

	decision, err := manager.Increment(ctx, "hh-1")
	require.NoError(t, err)
	assert.False(t, decision.CanServe)
	assert.Equal(t, int64(6), decision.DailyImpressions)
}

func TestCheckAtLimitDenies(t *testing.T) {
	manager, state := newManagerFixture(t)
	state.impressions = 5

	decision, err := manager.Check(context.Background(), "hh-1")
	require.NoError(t, err)
	assert.False(t, decision.CanServe)
}
