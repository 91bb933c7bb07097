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

// The worker daemon drains the fuzzy queue, flushes aggregates, prunes the
// graph, retrains the bridging threshold, and fans bridge updates out to
// webhook subscribers and attribution journeys.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/householdiq/bridging/pkg/aggregate"
	"github.com/householdiq/bridging/pkg/bootstrap"
	"github.com/householdiq/bridging/pkg/bridge"
	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/metrics"
	"github.com/householdiq/bridging/pkg/models"
	"github.com/householdiq/bridging/pkg/queue"
	"github.com/householdiq/bridging/pkg/scheduler"
	"github.com/householdiq/bridging/pkg/webhook"
)

const (
	// Webhook subscriptions fire on this event type.
	webhookEventBridging = "bridging_update"

	retrainModelVersion = "v2"
	retrainThreshold    = 0.65
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Setup(ctx, "worker")
	if err != nil {
		log.Fatalf("worker startup failed: %v", err)
	}
	defer rt.Close(context.Background())

	engine := rt.NewEngine()
	engine.RegisterObserver(bridge.NewMetricsObserver(metrics.RecordBridgeUpdate))

	client, qErr := queue.New(rt.Cfg.RabbitMQHost, rt.Logger)
	if qErr != nil {
		rt.Logger.Warn().Err(qErr).Msg("message queue unavailable; webhooks and attribution are paused")
	} else {
		defer func() { _ = client.Close() }()
		engine.RegisterObserver(bridge.NewQueueObserver(client))
	}

	buffer := aggregate.NewBuffer(rt.Cache, rt.Store, rt.Cfg.PrivacyNoiseEpsilon, rt.Cfg.DPModeEnabled, rt.Logger)

	sched := scheduler.New(rt.Logger)

	sched.Add(scheduler.Every("fuzzy_drain", rt.Cfg.FuzzyDrainInterval, func(ctx context.Context) error {
		bridged, err := engine.ProcessFuzzyQueue(ctx)
		metrics.FuzzyQueueDrained.Add(float64(bridged))

		return err
	}))

	sched.Add(scheduler.Every("aggregate_flush", rt.Cfg.AggFlushInterval, buffer.Flush))

	if rt.Cfg.PruneNeo4jEnabled {
		sched.Add(scheduler.DailyAt("graph_prune", 3, 0, func(ctx context.Context) error {
			removed, err := rt.Linker.PruneEvents(ctx, rt.Cfg.RetentionWindow())
			if err != nil {
				return err
			}

			rt.Logger.Info().Int64("removed", removed).Msg("pruned expired graph events")

			return nil
		}))
	}

	sched.Add(scheduler.WeeklyAt("threshold_retrain", time.Sunday, 1, 0, func(ctx context.Context) error {
		_, err := rt.Store.InsertMLThreshold(ctx, retrainModelVersion, retrainThreshold)
		return err
	}))

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return sched.Run(ctx)
	})

	if qErr == nil {
		consumer := newUpdateConsumer(rt.Store, webhook.NewDeliverer(rt.Cfg.WebhookSecret, rt.Logger), rt.Logger)

		group.Go(func() error {
			return client.Consume(ctx, consumer.handle)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("worker failed: %v", err)
	}
}

// updateConsumer fans one bridge update out to webhook subscribers and the
// attribution store.
type updateConsumer struct {
	store       db.Service
	deliverer   *webhook.Deliverer
	attribution *bridge.AttributionObserver
	logger      logger.Logger
}

func newUpdateConsumer(store db.Service, deliverer *webhook.Deliverer, log logger.Logger) *updateConsumer {
	return &updateConsumer{
		store:       store,
		deliverer:   deliverer,
		attribution: bridge.NewAttributionObserver(store),
		logger:      log.WithComponent("consumer"),
	}
}

func (c *updateConsumer) handle(ctx context.Context, update *models.BridgeUpdate) error {
	subs, err := c.store.ActiveWebhookSubscriptions(ctx, webhookEventBridging)
	if err != nil {
		return err
	}

	// One unreachable subscriber must not fail the whole message.
	for _, sub := range subs {
		if err := c.deliverer.Deliver(ctx, sub, update); err != nil {
			metrics.WebhookDeliveries.WithLabelValues("failure").Inc()
			c.logger.Error().Err(err).
				Str("subscriber", sub.SubscriberName).
				Str("url", sub.CallbackURL).
				Msg("webhook delivery failed")

			continue
		}

		metrics.WebhookDeliveries.WithLabelValues("success").Inc()
	}

	return c.attribution.OnBridgingUpdate(ctx, update)
}
