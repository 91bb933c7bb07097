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

	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/models"
)

// Built-in observer names; plugin_registry rows gate them by these names.
const (
	ObserverQueuePublisher = "queue_publisher"
	ObserverMetrics        = "metrics"
	ObserverAttribution    = "attribution"
)

// BridgingObserver is notified after each successful pair bridge. Observer
// failures are logged by the engine and never propagate to the bridging path.
type BridgingObserver interface {
	Name() string
	OnBridgingUpdate(ctx context.Context, update *models.BridgeUpdate) error
}

// UpdatePublisher pushes bridge updates onto the message queue; pkg/queue
// provides the AMQP implementation.
type UpdatePublisher interface {
	PublishBridgeUpdate(ctx context.Context, update *models.BridgeUpdate) error
}

// QueueObserver forwards updates to the queue for the worker daemon
// (webhooks, attribution consumers).
type QueueObserver struct {
	publisher UpdatePublisher
}

func NewQueueObserver(publisher UpdatePublisher) *QueueObserver {
	return &QueueObserver{publisher: publisher}
}

func (o *QueueObserver) Name() string { return ObserverQueuePublisher }

func (o *QueueObserver) OnBridgingUpdate(ctx context.Context, update *models.BridgeUpdate) error {
	return o.publisher.PublishBridgeUpdate(ctx, update)
}

// MetricsObserver counts bridged pairs. The sink is a plain func so the
// engine does not import the metrics registry.
type MetricsObserver struct {
	record func(update *models.BridgeUpdate)
}

func NewMetricsObserver(record func(update *models.BridgeUpdate)) *MetricsObserver {
	return &MetricsObserver{record: record}
}

func (o *MetricsObserver) Name() string { return ObserverMetrics }

func (o *MetricsObserver) OnBridgingUpdate(_ context.Context, update *models.BridgeUpdate) error {
	o.record(update)

	return nil
}

// AttributionObserver opens a journey row whenever a conversion event gets
// bridged into a household.
type AttributionObserver struct {
	store db.Service
}

func NewAttributionObserver(store db.Service) *AttributionObserver {
	return &AttributionObserver{store: store}
}

func (o *AttributionObserver) Name() string { return ObserverAttribution }

func (o *AttributionObserver) OnBridgingUpdate(ctx context.Context, update *models.BridgeUpdate) error {
	if update.EventType != models.EventTypeConversion || update.HouseholdID == "" {
		return nil
	}

	journey := &models.AttributionJourney{
		HouseholdID:    update.HouseholdID,
		ConversionTime: update.Timestamp,
		TouchPoints: []models.TouchPoint{{
			EphemID:   update.EphemID,
			EventType: update.EventType,
			Timestamp: update.Timestamp,
		}},
	}

	_, err := o.store.InsertAttributionJourney(ctx, journey)

	return err
}
