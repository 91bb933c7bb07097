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

	"github.com/householdiq/bridging/pkg/models"
)

const (
	insertWebhookSubscriptionSQL = `
INSERT INTO webhook_subscriptions (subscriber_name, callback_url, event_type, active)
VALUES ($1, $2, $3, $4)
RETURNING id`

	activeWebhookSubscriptionsSQL = `
SELECT id, subscriber_name, callback_url, event_type, active, created_at
FROM webhook_subscriptions
WHERE active AND event_type = $1
ORDER BY id`
)

// InsertWebhookSubscription registers a partner callback.
func (db *DB) InsertWebhookSubscription(ctx context.Context, sub *models.WebhookSubscription) (int64, error) {
	if sub == nil {
		return 0, ErrSubscriptionNil
	}

	var id int64

	err := db.pool.QueryRow(ctx, insertWebhookSubscriptionSQL,
		sub.SubscriberName, sub.CallbackURL, sub.EventType, sub.Active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: webhook subscription: %w", ErrFailedToInsert, err)
	}

	return id, nil
}

// ActiveWebhookSubscriptions returns the active callbacks for an event type.
func (db *DB) ActiveWebhookSubscriptions(ctx context.Context, eventType string) ([]*models.WebhookSubscription, error) {
	rows, err := db.pool.Query(ctx, activeWebhookSubscriptionsSQL, eventType)
	if err != nil {
		return nil, fmt.Errorf("%w: webhook subscriptions: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var subs []*models.WebhookSubscription

	for rows.Next() {
		sub := &models.WebhookSubscription{}

		if err := rows.Scan(&sub.ID, &sub.SubscriberName, &sub.CallbackURL,
			&sub.EventType, &sub.Active, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: webhook subscription: %w", ErrFailedToScan, err)
		}

		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: webhook subscriptions: %w", ErrFailedToQuery, err)
	}

	return subs, nil
}
