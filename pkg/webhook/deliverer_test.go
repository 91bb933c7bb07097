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

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

func testUpdate() *models.BridgeUpdate {
	return &models.BridgeUpdate{
		EventID:     1,
		EphemID:     "e1",
		OtherEphem:  "e2",
		HouseholdID: "hh-1",
		Score:       0.91,
		PartnerID:   4,
		EventType:   models.EventTypeConversion,
		Timestamp:   time.Now().UTC(),
	}
}

func testSubscription(url string) *models.WebhookSubscription {
	return &models.WebhookSubscription{
		SubscriberName: "acme",
		CallbackURL:    url,
		EventType:      "bridging_update",
		Active:         true,
	}
}

func TestDeliverSignsPayload(t *testing.T) {
	var gotSignature string

	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	deliverer := NewDeliverer("hook-secret", logger.NewTestLogger())
	update := testUpdate()

	require.NoError(t, deliverer.Deliver(context.Background(), testSubscription(server.URL), update))

	mac := hmac.New(sha256.New, []byte("hook-secret"))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)

	decoded := &models.BridgeUpdate{}
	require.NoError(t, json.Unmarshal(gotBody, decoded))
	assert.Equal(t, "e1", decoded.EphemID)
	assert.Equal(t, "hh-1", decoded.HouseholdID)
}

func TestDeliverRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	deliverer := NewDeliverer("hook-secret", logger.NewTestLogger())
	deliverer.backoff = time.Millisecond

	require.NoError(t, deliverer.Deliver(context.Background(), testSubscription(server.URL), testUpdate()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	deliverer := NewDeliverer("hook-secret", logger.NewTestLogger())
	deliverer.backoff = time.Millisecond

	err := deliverer.Deliver(context.Background(), testSubscription(server.URL), testUpdate())
	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}
