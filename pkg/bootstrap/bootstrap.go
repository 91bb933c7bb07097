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

// Package bootstrap wires the shared backends for a service process: config,
// logging, the relational store, the KV cache, and the graph linker. Each
// cmd/ binary composes its own surface on top of a Runtime.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/householdiq/bridging/pkg/bridge"
	"github.com/householdiq/bridging/pkg/config"
	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/graph"
	"github.com/householdiq/bridging/pkg/hashutil"
	"github.com/householdiq/bridging/pkg/kv"
	"github.com/householdiq/bridging/pkg/logger"
)

// Runtime holds the live backends for one service process.
type Runtime struct {
	Cfg    *config.Config
	Logger logger.Logger
	Store  db.Service
	Cache  kv.KVCache
	Linker graph.Linker
}

// Setup loads configuration and dials every backend the services share.
// Backends fail fast: a bad endpoint stops the process at startup.
func Setup(ctx context.Context, component string) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	if cfg.Debug {
		logCfg.Debug = true
	}

	log, err := logger.NewComponentLogger(component, logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	store, err := db.New(ctx, pool, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	cache, err := newCache(cfg, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to kv cache: %w", err)
	}

	linker, err := newLinker(ctx, cfg, log)
	if err != nil {
		cache.Close()
		pool.Close()

		return nil, fmt.Errorf("failed to connect to graph: %w", err)
	}

	return &Runtime{
		Cfg:    cfg,
		Logger: log,
		Store:  store,
		Cache:  cache,
		Linker: linker,
	}, nil
}

func newCache(cfg *config.Config, log logger.Logger) (kv.KVCache, error) {
	if !cfg.UseAerospikeCache {
		log.Warn().Msg("using in-memory KV cache; derived state will not survive restarts")
		return kv.NewMemoryCache(cfg.RetentionWindow()), nil
	}

	return kv.NewAerospikeCache(&kv.AerospikeConfig{
		Host:          cfg.Aerospike.Host,
		Port:          cfg.Aerospike.Port,
		Namespace:     cfg.Aerospike.Namespace,
		RetentionDays: cfg.DataRetentionDays,
	}, log)
}

func newLinker(ctx context.Context, cfg *config.Config, log logger.Logger) (graph.Linker, error) {
	if !cfg.UseNeo4jBridging {
		log.Warn().Msg("using in-memory graph linker; identity graph will not survive restarts")
		return graph.NewMemoryLinker(), nil
	}

	return graph.NewNeo4jLinker(ctx, &graph.Neo4jConfig{
		URI:      cfg.Neo4j.URI,
		User:     cfg.Neo4j.User,
		Password: cfg.Neo4j.Password,
	}, log)
}

// NewEngine builds a bridging engine on the runtime's backends. Observers are
// registered by the caller.
func (r *Runtime) NewEngine() *bridge.Engine {
	return bridge.NewEngine(
		r.Store,
		r.Cache,
		r.Linker,
		hashutil.NewHasher(r.Cfg.GlobalSalt),
		bridge.NewTokenMinter(r.Cfg.TokenSecret),
		bridge.EngineConfig{
			DefaultThreshold: r.Cfg.BridgingConfidenceThreshold,
			Retention:        r.Cfg.RetentionWindow(),
		},
		r.Logger,
	)
}

// Close releases every backend in reverse dependency order.
func (r *Runtime) Close(ctx context.Context) {
	if err := r.Linker.Close(ctx); err != nil {
		r.Logger.Error().Err(err).Msg("failed to close graph linker")
	}

	r.Cache.Close()

	// Store.Close closes the underlying pool.
	r.Store.Close()
}
