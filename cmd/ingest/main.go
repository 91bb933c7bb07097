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

// The ingest service accepts partner events and runs the bridging pipeline
// inline.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/householdiq/bridging/pkg/aggregate"
	"github.com/householdiq/bridging/pkg/bootstrap"
	"github.com/householdiq/bridging/pkg/bridge"
	"github.com/householdiq/bridging/pkg/capping"
	"github.com/householdiq/bridging/pkg/httpsrv"
	"github.com/householdiq/bridging/pkg/ingest"
	"github.com/householdiq/bridging/pkg/metrics"
	"github.com/householdiq/bridging/pkg/privacy"
	"github.com/householdiq/bridging/pkg/queue"
)

const defaultAddr = ":8081"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Setup(ctx, "ingest")
	if err != nil {
		log.Fatalf("ingest startup failed: %v", err)
	}
	defer rt.Close(context.Background())

	engine := rt.NewEngine()
	engine.RegisterObserver(bridge.NewMetricsObserver(metrics.RecordBridgeUpdate))

	// The queue is best effort on the ingest path; bridging proceeds without
	// downstream fan-out (webhooks, attribution) when the broker is down.
	if client, err := queue.New(rt.Cfg.RabbitMQHost, rt.Logger); err != nil {
		rt.Logger.Warn().Err(err).Msg("message queue unavailable; bridge updates will not be published")
	} else {
		defer func() { _ = client.Close() }()
		engine.RegisterObserver(bridge.NewQueueObserver(client))
	}

	service := ingest.NewService(
		rt.Store,
		engine,
		privacy.NewGate(rt.Logger),
		aggregate.NewBuffer(rt.Cache, rt.Store, rt.Cfg.PrivacyNoiseEpsilon, rt.Cfg.DPModeEnabled, rt.Logger),
		capping.NewManager(rt.Store, rt.Logger),
		ingest.NewSampler(rt.Cfg.SamplingRates),
		rt.Logger,
	)

	router := httpsrv.NewRouter(rt.Logger)
	service.RegisterRoutes(router)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	if err := httpsrv.NewServer(addr, router, rt.Logger).Run(ctx); err != nil {
		log.Fatalf("ingest server failed: %v", err)
	}
}
