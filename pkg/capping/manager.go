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

// Package capping answers per-household frequency-cap decisions on the
// serving path.
package capping

import (
	"context"

	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

// Manager wraps the relational cap counters.
type Manager struct {
	store  db.Service
	logger logger.Logger
}

func NewManager(store db.Service, log logger.Logger) *Manager {
	return &Manager{store: store, logger: log.WithComponent("capping")}
}

// Check reads the household's counter without consuming budget. A missing
// row is created at zero, so the first check always serves.
func (m *Manager) Check(ctx context.Context, householdID string) (*models.CapDecision, error) {
	cap, err := m.store.GetOrCreateCap(ctx, householdID)
	if err != nil {
		return nil, err
	}

	return &models.CapDecision{
		HouseholdID:      cap.HouseholdID,
		CanServe:         cap.DailyImpressions < cap.CapLimit,
		DailyImpressions: cap.DailyImpressions,
		CapLimit:         cap.CapLimit,
	}, nil
}

// Increment consumes one impression and reports whether that impression was
// still within the cap. The comparison is inclusive: the impression that
// lands exactly on the limit serves, the one after does not.
func (m *Manager) Increment(ctx context.Context, householdID string) (*models.CapDecision, error) {
	cap, err := m.store.IncrementCap(ctx, householdID)
	if err != nil {
		return nil, err
	}

	return &models.CapDecision{
		HouseholdID:      cap.HouseholdID,
		CanServe:         cap.DailyImpressions <= cap.CapLimit,
		DailyImpressions: cap.DailyImpressions,
		CapLimit:         cap.CapLimit,
	}, nil
}
