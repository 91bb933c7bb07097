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

// The reporting service exposes aggregate roll-ups, data sharing, attribution
// journeys, and plugin controls.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/householdiq/bridging/pkg/bootstrap"
	"github.com/householdiq/bridging/pkg/httpsrv"
	"github.com/householdiq/bridging/pkg/reporting"
)

const defaultAddr = ":8083"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Setup(ctx, "reporting")
	if err != nil {
		log.Fatalf("reporting startup failed: %v", err)
	}
	defer rt.Close(context.Background())

	service := reporting.NewService(rt.Store, reporting.Config{
		DPEnabled:    rt.Cfg.DPModeEnabled,
		Epsilon:      rt.Cfg.PrivacyNoiseEpsilon,
		MinThreshold: int64(rt.Cfg.PrivacyMinThreshold),
	}, rt.Logger)

	router := httpsrv.NewRouter(rt.Logger)
	service.RegisterRoutes(router)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	if err := httpsrv.NewServer(addr, router, rt.Logger).Run(ctx); err != nil {
		log.Fatalf("reporting server failed: %v", err)
	}
}
