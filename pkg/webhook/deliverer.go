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

// Package webhook delivers signed bridge-update callbacks to partner
// subscriptions.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the request body.
	SignatureHeader = "X-HouseholdIQ-Signature"

	requestTimeout = 3 * time.Second
	maxAttempts    = 3
	retryBackoff   = 500 * time.Millisecond
)

// Deliverer posts JSON payloads with an HMAC signature and bounded retries.
type Deliverer struct {
	client  *http.Client
	secret  []byte
	logger  logger.Logger
	backoff time.Duration
}

func NewDeliverer(secret string, log logger.Logger) *Deliverer {
	return &Deliverer{
		client:  &http.Client{Timeout: requestTimeout},
		secret:  []byte(secret),
		logger:  log.WithComponent("webhook"),
		backoff: retryBackoff,
	}
}

// Signature returns the hex HMAC-SHA256 of body under the shared secret.
func (d *Deliverer) Signature(body []byte) string {
	mac := hmac.New(sha256.New, d.secret)
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}

// Deliver posts the update to one subscription, retrying transient failures
// with linear backoff. Any 2xx response counts as delivered.
func (d *Deliverer) Deliver(ctx context.Context, sub *models.WebhookSubscription, update *models.BridgeUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	signature := d.Signature(body)

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * d.backoff):
			}
		}

		lastErr = d.post(ctx, sub.CallbackURL, body, signature)
		if lastErr == nil {
			d.logger.Debug().
				Str("subscriber", sub.SubscriberName).
				Int("attempt", attempt).
				Msg("webhook delivered")

			return nil
		}

		d.logger.Warn().Err(lastErr).
			Str("subscriber", sub.SubscriberName).
			Int("attempt", attempt).
			Msg("webhook delivery attempt failed")
	}

	return fmt.Errorf("webhook to %s failed after %d attempts: %w", sub.SubscriberName, maxAttempts, lastErr)
}

func (d *Deliverer) post(ctx context.Context, url string, body []byte, signature string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, signature)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}
