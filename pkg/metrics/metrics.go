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

// Package metrics exposes the Prometheus collectors shared by the bridging
// services. Every service serves them on /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/householdiq/bridging/pkg/models"
)

var (
	// IngestedEvents counts ingest requests by bridge status.
	IngestedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "householdiq",
		Name:      "ingested_events_total",
		Help:      "Ingested events by bridging status.",
	}, []string{"status"})

	// BridgedPairs counts successful pair merges by event type.
	BridgedPairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "householdiq",
		Name:      "bridged_pairs_total",
		Help:      "Successful pair bridges by event type.",
	}, []string{"event_type"})

	// FuzzyQueueDrained counts events processed by the fuzzy drain.
	FuzzyQueueDrained = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "householdiq",
		Name:      "fuzzy_queue_drained_total",
		Help:      "Events drained from the fuzzy bridging queue.",
	})

	// JobDuration observes scheduler job runtimes.
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "householdiq",
		Name:      "job_duration_seconds",
		Help:      "Scheduler job durations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})

	// CappingDecisions counts cap answers by outcome.
	CappingDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "householdiq",
		Name:      "capping_decisions_total",
		Help:      "Frequency-capping decisions by outcome.",
	}, []string{"can_serve"})

	// WebhookDeliveries counts webhook outcomes.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "householdiq",
		Name:      "webhook_deliveries_total",
		Help:      "Webhook delivery outcomes.",
	}, []string{"outcome"})
)

// RecordBridgeUpdate is the sink for the engine's metrics observer.
func RecordBridgeUpdate(update *models.BridgeUpdate) {
	BridgedPairs.WithLabelValues(update.EventType).Inc()
}

// RecordCapDecision counts one capping answer.
func RecordCapDecision(decision *models.CapDecision) {
	CappingDecisions.WithLabelValues(strconv.FormatBool(decision.CanServe)).Inc()
}
