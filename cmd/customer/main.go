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

// The customer service administers partner accounts and consent revocations
// behind an API key.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/householdiq/bridging/pkg/bootstrap"
	"github.com/householdiq/bridging/pkg/customer"
	"github.com/householdiq/bridging/pkg/httpsrv"
)

const defaultAddr = ":8084"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Setup(ctx, "customer")
	if err != nil {
		log.Fatalf("customer startup failed: %v", err)
	}
	defer rt.Close(context.Background())

	if rt.Cfg.APIKey == "" {
		log.Fatal("API_KEY must be set for the customer service")
	}

	service := customer.NewService(rt.Store, rt.Logger)

	router := httpsrv.NewRouter(rt.Logger)
	router.Use(httpsrv.APIKeyMiddleware(rt.Cfg.APIKey, rt.Logger))
	service.RegisterRoutes(router)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	if err := httpsrv.NewServer(addr, router, rt.Logger).Run(ctx); err != nil {
		log.Fatalf("customer server failed: %v", err)
	}
}
