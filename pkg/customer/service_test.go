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

package customer

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

const testAPIKey = "customer-test-key"

type serviceFixture struct {
	store  *db.MockService
	router http.Handler
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)
	log := logger.NewTestLogger()

	service := NewService(store, log)

	router := httpsrv.NewRouter(log)
	router.Use(httpsrv.APIKeyMiddleware(testAPIKey, log))
	service.RegisterRoutes(router)

	return &serviceFixture{store: store, router: router}
}

func (f *serviceFixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("X-API-Key", testAPIKey)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func TestCreatePartner(t *testing.T) {
	f := newServiceFixture(t)

	f.store.EXPECT().CreatePartner(gomock.Any(), "acme", gomock.Any(), "tenant-a").
		DoAndReturn(func(_ context.Context, name, salt, namespace string) (*models.Partner, error) {
			assert.NotEmpty(t, salt) // omitted salt gets generated
			return &models.Partner{
				ID:        7,
				Name:      name,
				Salt:      salt,
				Namespace: namespace,
				CreatedAt: time.Now().UTC(),
			}, nil
		})

	rec := f.do(t, http.MethodPost, "/v1/customers/create", CreateRequest{Name: "acme", Namespace: "tenant-a"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var partner models.Partner
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &partner))
	assert.Equal(t, int64(7), partner.ID)
	assert.Equal(t, "acme", partner.Name)
}

func TestCreatePartnerDuplicateName(t *testing.T) {
	f := newServiceFixture(t)

	f.store.EXPECT().CreatePartner(gomock.Any(), "acme", gomock.Any(), "").
		Return(nil, db.ErrPartnerNameTaken)

	rec := f.do(t, http.MethodPost, "/v1/customers/create", CreateRequest{Name: "acme"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreatePartnerRequiresName(t *testing.T) {
	f := newServiceFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/customers/create", CreateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePartnerRequiresAPIKey(t *testing.T) {
	f := newServiceFixture(t)

	raw, err := json.Marshal(CreateRequest{Name: "acme"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/customers/create", bytes.NewReader(raw)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetPartner(t *testing.T) {
	f := newServiceFixture(t)

	f.store.EXPECT().GetPartner(gomock.Any(), int64(7)).Return(&models.Partner{ID: 7, Name: "acme"}, nil)

	rec := f.do(t, http.MethodGet, "/v1/customers/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var partner models.Partner
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &partner))
	assert.Equal(t, "acme", partner.Name)
}

func TestGetPartnerNotFound(t *testing.T) {
	f := newServiceFixture(t)

	f.store.EXPECT().GetPartner(gomock.Any(), int64(99)).Return(nil, db.ErrPartnerNotFound)

	rec := f.do(t, http.MethodGet, "/v1/customers/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePartnerPatchesFields(t *testing.T) {
	f := newServiceFixture(t)

	f.store.EXPECT().GetPartner(gomock.Any(), int64(7)).Return(&models.Partner{
		ID:        7,
		Name:      "acme",
		Salt:      "old-salt",
		Namespace: "tenant-a",
	}, nil)

	f.store.EXPECT().UpdatePartner(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, partner *models.Partner) error {
			assert.Equal(t, "acme-renamed", partner.Name)
			assert.Equal(t, "old-salt", partner.Salt) // untouched
			return nil
		})

	rec := f.do(t, http.MethodPost, "/v1/customers/update/7", UpdateRequest{Name: "acme-renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdatePartnerInvalidID(t *testing.T) {
	f := newServiceFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/customers/update/banana", UpdateRequest{Name: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevokeConsent(t *testing.T) {
	f := newServiceFixture(t)

	f.store.EXPECT().InsertConsentRevocation(gomock.Any(), "e1").Return(&models.ConsentRevocation{
		ID:        3,
		EphemID:   "e1",
		RevokedAt: time.Now().UTC(),
	}, nil)

	rec := f.do(t, http.MethodPost, "/v1/consent/revoke", RevokeRequest{EphemID: "e1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var revocation models.ConsentRevocation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &revocation))
	assert.Equal(t, "e1", revocation.EphemID)
}

func TestGetPartnerByName(t *testing.T) {
	f := newServiceFixture(t)

	f.store.EXPECT().GetPartnerByName(gomock.Any(), "acme").Return(&models.Partner{ID: 7, Name: "acme"}, nil)

	rec := f.do(t, http.MethodGet, "/v1/customers/by-name/acme", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var partner models.Partner
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &partner))
	assert.Equal(t, int64(7), partner.ID)
}

func TestPublishBridgingConfig(t *testing.T) {
	f := newServiceFixture(t)

	threshold := 0.75

	f.store.EXPECT().InsertBridgingConfig(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg *models.BridgingConfig) (int64, error) {
			require.NotNil(t, cfg.Threshold)
			assert.InDelta(t, 0.75, *cfg.Threshold, 1e-9)
			return 5, nil
		})

	rec := f.do(t, http.MethodPost, "/v1/config/bridging", BridgingConfigRequest{Threshold: &threshold})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestPublishBridgingConfigRequiresField(t *testing.T) {
	f := newServiceFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/config/bridging", BridgingConfigRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevokeConsentRequiresEphemID(t *testing.T) {
	f := newServiceFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/consent/revoke", RevokeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
