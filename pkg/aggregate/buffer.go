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

// Package aggregate buffers per-day ingest counters in the KV cache and
// flushes them into the relational daily_aggregates rows.
package aggregate

import (
	"context"
	"time"

	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/kv"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
	"github.com/householdiq/bridging/pkg/privacy"
)

const dateLayout = "2006-01-02"

// Buffer accumulates counters keyed (date, partner, device, event). With DP
// mode enabled, flushed counts are perturbed with Laplace noise before they
// reach the relational store.
type Buffer struct {
	cache     kv.KVCache
	store     db.Service
	logger    logger.Logger
	epsilon   float64
	dpEnabled bool
	nowFn     func() time.Time
}

func NewBuffer(cache kv.KVCache, store db.Service, epsilon float64, dpEnabled bool, log logger.Logger) *Buffer {
	return &Buffer{
		cache:     cache,
		store:     store,
		logger:    log.WithComponent("aggregate"),
		epsilon:   epsilon,
		dpEnabled: dpEnabled,
		nowFn:     time.Now,
	}
}

// Increment bumps today's counter for the partner/device/event triple.
func (b *Buffer) Increment(ctx context.Context, partnerID int64, deviceType, eventType string) error {
	dateStr := b.nowFn().UTC().Format(dateLayout)

	return b.cache.IncDaily(ctx, dateStr, kv.DailyFieldKey(partnerID, deviceType, eventType))
}

// Flush drains the buffered counters into the relational store. Per-date
// failures are logged and do not abort the scan.
func (b *Buffer) Flush(ctx context.Context) error {
	return b.cache.ScanDaily(ctx, func(dateStr string, counts map[string]int64) error {
		aggregates := make([]*models.DailyAggregate, 0, len(counts))

		for fieldKey, count := range counts {
			partnerID, deviceType, eventType, ok := kv.ParseDailyFieldKey(fieldKey)
			if !ok {
				b.logger.Warn().Str("field", fieldKey).Msg("malformed daily counter key, dropping")
				continue
			}

			if b.dpEnabled {
				count = int64(privacy.Laplace(float64(count), b.epsilon))
			}

			aggregates = append(aggregates, &models.DailyAggregate{
				DateStr:    dateStr,
				PartnerID:  partnerID,
				DeviceType: deviceType,
				EventType:  eventType,
				Count:      count,
			})
		}

		if err := b.store.UpsertDailyAggregates(ctx, aggregates); err != nil {
			b.logger.Error().Err(err).Str("date", dateStr).Msg("daily aggregate flush failed")

			// The record is already consumed from the cache; report and
			// keep scanning.
			return nil
		}

		b.logger.Debug().Str("date", dateStr).Int("rows", len(aggregates)).Msg("flushed daily aggregates")

		return nil
	})
}
