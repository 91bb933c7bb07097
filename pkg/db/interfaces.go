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

// Package db is the relational store for the bridging platform, backed by a
// pgx pool. All reads and writes are context-bounded; upserts use
// ON CONFLICT so repeated flushes and re-registrations converge.
package db

import (
	"context"
	"time"

	"github.com/householdiq/bridging/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/householdiq/bridging/pkg/db Service

// Service represents all relational operations for the bridging platform.
type Service interface {
	Close()

	// Partner operations.

	CreatePartner(ctx context.Context, name, salt, namespace string) (*models.Partner, error)
	GetPartner(ctx context.Context, partnerID int64) (*models.Partner, error)
	GetPartnerByName(ctx context.Context, name string) (*models.Partner, error)
	UpdatePartner(ctx context.Context, partner *models.Partner) error

	// Consent operations.

	InsertConsentFlags(ctx context.Context, crossDevice, targeting bool) (int64, error)
	InsertConsentRevocation(ctx context.Context, ephemID string) (*models.ConsentRevocation, error)

	// Event operations.

	InsertEvent(ctx context.Context, ev *models.EphemeralEvent) (int64, error)
	GetEvent(ctx context.Context, eventID int64) (*models.EphemeralEvent, error)
	GetEventsSince(ctx context.Context, since time.Time) ([]*models.EphemeralEvent, error)

	// Scoring configuration.

	LatestBridgingConfig(ctx context.Context) (*models.BridgingConfig, error)
	InsertBridgingConfig(ctx context.Context, cfg *models.BridgingConfig) (int64, error)
	LatestMLThreshold(ctx context.Context) (*models.MLBridgingThreshold, error)
	InsertMLThreshold(ctx context.Context, modelVersion string, threshold float64) (int64, error)

	// Daily aggregates.

	UpsertDailyAggregates(ctx context.Context, aggregates []*models.DailyAggregate) error
	QueryDailyAggregates(ctx context.Context, startDate, endDate string) ([]*models.DailyAggregate, error)

	// Anonymized sample store.

	InsertAnonymizedEvent(ctx context.Context, ev *models.AnonymizedEvent) (int64, error)
	CountAnonymizedEvents(ctx context.Context, partnerID int64) (int64, error)
	ListAnonymizedEvents(ctx context.Context, partnerID int64, limit int) ([]*models.AnonymizedEvent, error)

	// Frequency capping.

	GetOrCreateCap(ctx context.Context, householdID string) (*models.FrequencyCap, error)
	IncrementCap(ctx context.Context, householdID string) (*models.FrequencyCap, error)

	// Attribution.

	InsertAttributionJourney(ctx context.Context, journey *models.AttributionJourney) (int64, error)
	JourneysForHousehold(ctx context.Context, householdID string) ([]*models.AttributionJourney, error)
	InsertLookalikeSegment(ctx context.Context, segment *models.LookalikeSegment) (int64, error)

	// Data sharing.

	UpsertDataSharingAgreement(ctx context.Context, agreement *models.DataSharingAgreement) (*models.DataSharingAgreement, error)
	GetDataSharingAgreement(ctx context.Context, initiatorID, recipientID int64) (*models.DataSharingAgreement, error)

	// Plugin registry.

	ListPlugins(ctx context.Context) ([]*models.PluginRecord, error)
	SetPluginEnabled(ctx context.Context, pluginName string, enabled bool) error
	IsPluginEnabled(ctx context.Context, pluginName string) (bool, error)

	// Webhook subscriptions.

	InsertWebhookSubscription(ctx context.Context, sub *models.WebhookSubscription) (int64, error)
	ActiveWebhookSubscriptions(ctx context.Context, eventType string) ([]*models.WebhookSubscription, error)
}
