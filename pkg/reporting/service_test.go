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

package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/httpsrv"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

type serviceFixture struct {
	store  *db.MockService
	router http.Handler
}

func newServiceFixture(t *testing.T, cfg Config) *serviceFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)
	log := logger.NewTestLogger()

	service := NewService(store, cfg, log)

	router := httpsrv.NewRouter(log)
	service.RegisterRoutes(router)

	return &serviceFixture{store: store, router: router}
}

func (f *serviceFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw)))

	return rec
}

func sampleAggregates() []*models.DailyAggregate {
	return []*models.DailyAggregate{
		{DateStr: "2025-06-01", PartnerID: 1, DeviceType: "ctv", EventType: "impression", Count: 100},
		{DateStr: "2025-06-01", PartnerID: 1, DeviceType: "mobile", EventType: "click", Count: 7},
		{DateStr: "2025-06-02", PartnerID: 2, DeviceType: "ctv", EventType: "impression", Count: 55},
	}
}

func TestDailyReportKeysRows(t *testing.T) {
	f := newServiceFixture(t, Config{})

	f.store.EXPECT().QueryDailyAggregates(gomock.Any(), "2025-06-01", "2025-06-30").
		Return(sampleAggregates(), nil)

	rec := f.post(t, "/v1/reporting/daily", DailyRequest{StartDate: "2025-06-01", EndDate: "2025-06-30"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DailyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(100), resp.Counts["2025-06-01|1|ctv|impression"])
	assert.Equal(t, int64(7), resp.Counts["2025-06-01|1|mobile|click"])
	assert.Equal(t, int64(55), resp.Counts["2025-06-02|2|ctv|impression"])
	assert.Len(t, resp.Counts, 3)
}

func TestDailyReportRejectsBadDates(t *testing.T) {
	f := newServiceFixture(t, Config{})

	rec := f.post(t, "/v1/reporting/daily", DailyRequest{StartDate: "June 1st", EndDate: "2025-06-30"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyReportSuppressesSmallCohorts(t *testing.T) {
	f := newServiceFixture(t, Config{MinThreshold: 10})

	f.store.EXPECT().QueryDailyAggregates(gomock.Any(), "2025-06-01", "2025-06-30").
		Return(sampleAggregates(), nil)

	rec := f.post(t, "/v1/reporting/daily", DailyRequest{StartDate: "2025-06-01", EndDate: "2025-06-30"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DailyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// The 7-click cohort sits below the floor and reports zero.
	assert.Equal(t, int64(0), resp.Counts["2025-06-01|1|mobile|click"])
	assert.Equal(t, int64(100), resp.Counts["2025-06-01|1|ctv|impression"])
}

func TestDailyReportAppliesNoise(t *testing.T) {
	f := newServiceFixture(t, Config{DPEnabled: true, Epsilon: 1.0})

	f.store.EXPECT().QueryDailyAggregates(gomock.Any(), "2025-06-01", "2025-06-30").
		Return(sampleAggregates(), nil)

	rec := f.post(t, "/v1/reporting/daily", DailyRequest{StartDate: "2025-06-01", EndDate: "2025-06-30"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DailyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Noise is random; the contract is that counts stay non-negative.
	require.Len(t, resp.Counts, 3)
	for key, count := range resp.Counts {
		assert.GreaterOrEqual(t, count, int64(0), key)
	}
}

func TestAttributionJourneys(t *testing.T) {
	f := newServiceFixture(t, Config{})

	journeys := []*models.AttributionJourney{{
		ID:             1,
		HouseholdID:    "house-1",
		ConversionTime: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		TouchPoints: []models.TouchPoint{
			{EphemID: "e1", EventType: "impression"},
			{EphemID: "e2", EventType: "conversion"},
		},
	}}

	f.store.EXPECT().JourneysForHousehold(gomock.Any(), "house-1").Return(journeys, nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reporting/attribution/house-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		HouseholdID string                       `json:"household_id"`
		Journeys    []*models.AttributionJourney `json:"journeys"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "house-1", resp.HouseholdID)
	require.Len(t, resp.Journeys, 1)
	assert.Len(t, resp.Journeys[0].TouchPoints, 2)
}

func TestUpsertAgreement(t *testing.T) {
	f := newServiceFixture(t, Config{})

	f.store.EXPECT().UpsertDataSharingAgreement(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, agreement *models.DataSharingAgreement) (*models.DataSharingAgreement, error) {
			out := *agreement
			out.ID = 9
			out.MinKAnonymity = 50
			return &out, nil
		})

	rec := f.post(t, "/v1/data_sharing/agreements", AgreementRequest{
		InitiatorPartnerID: 1,
		RecipientPartnerID: 2,
		AllowAggregated:    true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var agreement models.DataSharingAgreement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agreement))

	assert.Equal(t, int64(9), agreement.ID)
	assert.Equal(t, int64(50), agreement.MinKAnonymity)
}

func TestUpsertAgreementRequiresPartners(t *testing.T) {
	f := newServiceFixture(t, Config{})

	rec := f.post(t, "/v1/data_sharing/agreements", AgreementRequest{InitiatorPartnerID: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportWithoutAgreementForbidden(t *testing.T) {
	f := newServiceFixture(t, Config{})

	f.store.EXPECT().GetDataSharingAgreement(gomock.Any(), int64(1), int64(2)).
		Return(nil, db.ErrAgreementNotFound)

	rec := f.post(t, "/v1/data_sharing/export", ExportRequest{InitiatorPartnerID: 1, RecipientPartnerID: 2})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportAggregated(t *testing.T) {
	f := newServiceFixture(t, Config{})

	f.store.EXPECT().GetDataSharingAgreement(gomock.Any(), int64(1), int64(2)).
		Return(&models.DataSharingAgreement{
			InitiatorPartnerID: 1,
			RecipientPartnerID: 2,
			AllowAggregated:    true,
		}, nil)
	f.store.EXPECT().QueryDailyAggregates(gomock.Any(), "2025-06-01", "2025-06-30").
		Return(sampleAggregates(), nil)

	rec := f.post(t, "/v1/data_sharing/export", ExportRequest{
		InitiatorPartnerID: 1,
		RecipientPartnerID: 2,
		StartDate:          "2025-06-01",
		EndDate:            "2025-06-30",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "aggregated", resp.Mode)
	assert.Len(t, resp.Aggregates, 3)
	assert.Empty(t, resp.Events)
}

func TestExportAnonymizedBelowKDenied(t *testing.T) {
	f := newServiceFixture(t, Config{})

	f.store.EXPECT().GetDataSharingAgreement(gomock.Any(), int64(1), int64(2)).
		Return(&models.DataSharingAgreement{
			InitiatorPartnerID: 1,
			RecipientPartnerID: 2,
			MinKAnonymity:      50,
		}, nil)
	f.store.EXPECT().CountAnonymizedEvents(gomock.Any(), int64(1)).Return(int64(12), nil)

	rec := f.post(t, "/v1/data_sharing/export", ExportRequest{InitiatorPartnerID: 1, RecipientPartnerID: 2})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportAnonymizedAboveK(t *testing.T) {
	f := newServiceFixture(t, Config{})

	f.store.EXPECT().GetDataSharingAgreement(gomock.Any(), int64(1), int64(2)).
		Return(&models.DataSharingAgreement{
			InitiatorPartnerID: 1,
			RecipientPartnerID: 2,
			MinKAnonymity:      50,
		}, nil)
	f.store.EXPECT().CountAnonymizedEvents(gomock.Any(), int64(1)).Return(int64(120), nil)
	f.store.EXPECT().ListAnonymizedEvents(gomock.Any(), int64(1), anonymizedShareLimit).
		Return([]*models.AnonymizedEvent{{EventID: 5, EventDay: "2025-06-01"}}, nil)

	rec := f.post(t, "/v1/data_sharing/export", ExportRequest{InitiatorPartnerID: 1, RecipientPartnerID: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "anonymized", resp.Mode)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, int64(5), resp.Events[0].EventID)
}

func TestPluginListAndToggle(t *testing.T) {
	f := newServiceFixture(t, Config{})

	f.store.EXPECT().ListPlugins(gomock.Any()).Return([]*models.PluginRecord{
		{PluginName: "queuePublisher", Enabled: true},
	}, nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/plugins/list", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	f.store.EXPECT().SetPluginEnabled(gomock.Any(), "queuePublisher", false).Return(nil)

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/plugins/disable?plugin_name=queuePublisher", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plugin_name":"queuePublisher","enabled":false}`, rec.Body.String())
}

func TestCreateLookalikeSegment(t *testing.T) {
	f := newServiceFixture(t, Config{})

	f.store.EXPECT().InsertLookalikeSegment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, segment *models.LookalikeSegment) (int64, error) {
			assert.Equal(t, "high-value-ctv", segment.SeedSegment)
			assert.Len(t, segment.MatchedHouseholds, 2)
			return 6, nil
		})

	rec := f.post(t, "/v1/segments/lookalike", LookalikeRequest{
		SeedSegment:       "high-value-ctv",
		MatchedHouseholds: []string{"house-1", "house-2"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var segment models.LookalikeSegment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &segment))
	assert.Equal(t, int64(6), segment.ID)
}

func TestSubscribeWebhook(t *testing.T) {
	f := newServiceFixture(t, Config{})

	f.store.EXPECT().InsertWebhookSubscription(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sub *models.WebhookSubscription) (int64, error) {
			assert.Equal(t, "bridging_update", sub.EventType) // default
			assert.True(t, sub.Active)
			return 4, nil
		})

	rec := f.post(t, "/v1/webhooks/subscriptions", WebhookSubscribeRequest{
		SubscriberName: "dsp-east",
		CallbackURL:    "https://dsp.example.com/hooks/bridging",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var sub models.WebhookSubscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.Equal(t, int64(4), sub.ID)
}

func TestSubscribeWebhookRequiresURL(t *testing.T) {
	f := newServiceFixture(t, Config{})

	rec := f.post(t, "/v1/webhooks/subscriptions", WebhookSubscribeRequest{SubscriberName: "dsp-east"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPluginToggleRequiresName(t *testing.T) {
	f := newServiceFixture(t, Config{})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/plugins/enable", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
