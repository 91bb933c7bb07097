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

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"

	"github.com/householdiq/bridging/pkg/logger"
)

const (
	partnerCacheTTL   = 5 * time.Minute
	partnerCacheSweep = 10 * time.Minute
)

// DB implements Service over a pgx pool. Partner rows are cached briefly
// because every ingest validates its partner.
type DB struct {
	pool         *pgxpool.Pool
	logger       logger.Logger
	partnerCache *gocache.Cache
}

// New wraps an established pool and applies the schema.
func New(ctx context.Context, pool *pgxpool.Pool, log logger.Logger) (*DB, error) {
	db := &DB{
		pool:         pool,
		logger:       log.WithComponent("db"),
		partnerCache: gocache.New(partnerCacheTTL, partnerCacheSweep),
	}

	if err := db.Setup(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// sendBatch runs a batch and surfaces the first per-statement error.
func (db *DB) sendBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	results := db.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("%w: %s batch statement %d: %w", ErrFailedToInsert, what, i, err)
		}
	}

	return nil
}
