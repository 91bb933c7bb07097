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

//go:generate mockgen -destination=mock_graph.go -package=graph github.com/householdiq/bridging/pkg/graph Linker

// Package graph owns the Device/User/Household linkage topology. Every
// operation is an idempotent upsert and relationship confidence never
// decreases, so out-of-order or duplicate processing converges.
package graph

import (
	"context"
	"time"

	"github.com/householdiq/bridging/pkg/models"
)

// Node labels.
const (
	LabelEvent     = "Event"
	LabelDevice    = "Device"
	LabelUser      = "User"
	LabelHousehold = "Household"
)

// Relationship types.
const (
	RelFromDevice = "FROM_DEVICE"
	RelUsedBy     = "USED_BY"
	RelMemberOf   = "MEMBER_OF"
)

// Linker is the property-graph contract the bridging engine consumes.
type Linker interface {
	// MergeEvent upserts the Event node for ev, storing its partial keys
	// as a JSON string and refreshing lastSeen.
	MergeEvent(ctx context.Context, ev *models.EphemeralEvent) error

	// LinkEventDevice upserts Event-[:FROM_DEVICE]->Device with set-max
	// confidence.
	LinkEventDevice(ctx context.Context, ephemID, deviceID string, confidence float64) error

	// LinkDeviceUser upserts Device-[:USED_BY]->User.
	LinkDeviceUser(ctx context.Context, deviceID, userID string, confidence float64) error

	// LinkUserHousehold upserts User-[:MEMBER_OF]->Household.
	LinkUserHousehold(ctx context.Context, userID, householdID string, confidence float64) error

	// PruneEvents detach-deletes Event nodes created before the retention
	// window and returns how many were removed.
	PruneEvents(ctx context.Context, retention time.Duration) (int64, error)

	// Close releases the driver.
	Close(ctx context.Context) error
}
