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

// Package lookup is the read-side household resolution service: ephemeral id
// to household reference, frequency-cap checks, and OpenRTB-style EID
// emission.
package lookup

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/householdiq/bridging/pkg/bridge"
	"github.com/householdiq/bridging/pkg/capping"
	"github.com/householdiq/bridging/pkg/httpsrv"
	"github.com/householdiq/bridging/pkg/kv"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/metrics"
)

// Lookup statuses.
const (
	StatusMatched  = "matched"
	StatusNotFound = "not_found"
)

// Service handles the lookup HTTP surface.
type Service struct {
	cache  kv.KVCache
	capper *capping.Manager
	logger logger.Logger
}

func NewService(cache kv.KVCache, capper *capping.Manager, log logger.Logger) *Service {
	return &Service{
		cache:  cache,
		capper: capper,
		logger: log.WithComponent("lookup"),
	}
}

// RegisterRoutes attaches the lookup endpoints to the router.
func (s *Service) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/lookup", s.handleLookup).Methods(http.MethodGet)
	router.HandleFunc("/v1/eids", s.handleEIDs).Methods(http.MethodGet)
	router.HandleFunc("/v1/capping/check", s.handleCapCheck).Methods(http.MethodPost)
}

// Response is the household resolution answer.
type Response struct {
	EphemID         string  `json:"ephem_id"`
	HouseholdID     string  `json:"household_id,omitempty"`
	ConfidenceScore float64 `json:"confidence_score,omitempty"`
	Status          string  `json:"status"`
}

func (s *Service) handleLookup(w http.ResponseWriter, r *http.Request) {
	ephemID := r.URL.Query().Get("ephem_id")
	if ephemID == "" {
		httpsrv.WriteError(w, http.StatusBadRequest, "ephem_id is required")
		return
	}

	householdID, confidence, found, err := s.resolve(r, ephemID)
	if err != nil {
		httpsrv.WriteError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	resp := Response{EphemID: ephemID, Status: StatusNotFound}
	if found {
		resp.Status = StatusMatched
		resp.HouseholdID = householdID
		resp.ConfidenceScore = confidence
	}

	httpsrv.WriteJSON(w, http.StatusOK, resp)
}

// EIDResponse carries the extended identifiers for one ephemeral id. EIDs is
// empty when confidence falls below the emission floor.
type EIDResponse struct {
	EphemID string       `json:"ephem_id"`
	EIDs    []bridge.EID `json:"eids"`
}

func (s *Service) handleEIDs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	ephemID := query.Get("ephem_id")
	if ephemID == "" {
		httpsrv.WriteError(w, http.StatusBadRequest, "ephem_id is required")
		return
	}

	source := query.Get("source")
	if source == "" {
		source = "householdiq.com"
	}

	householdID, confidence, found, err := s.resolve(r, ephemID)
	if err != nil {
		httpsrv.WriteError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	resp := EIDResponse{EphemID: ephemID, EIDs: []bridge.EID{}}
	if found {
		eids := bridge.BuildEIDs(source, householdID, confidence, query.Get("match_source"))
		if eids != nil {
			resp.EIDs = eids
		}
	}

	httpsrv.WriteJSON(w, http.StatusOK, resp)
}

// resolve maps an ephemeral id to its household and average edge score.
func (s *Service) resolve(r *http.Request, ephemID string) (householdID string, confidence float64, found bool, err error) {
	ctx := r.Context()

	householdID, found, err = s.cache.GetHouseholdRef(ctx, ephemID)
	if err != nil {
		s.logger.Error().Err(err).Str("ephem_id", ephemID).Msg("household lookup failed")
		return "", 0, false, err
	}

	if !found {
		return "", 0, false, nil
	}

	confidence, err = s.cache.AvgScore(ctx, householdID)
	if err != nil {
		s.logger.Error().Err(err).Str("household_id", householdID).Msg("edge score lookup failed")
		return "", 0, false, err
	}

	return householdID, confidence, true, nil
}

type capRequest struct {
	HouseholdID string `json:"household_id"`
}

func (s *Service) handleCapCheck(w http.ResponseWriter, r *http.Request) {
	var req capRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HouseholdID == "" {
		httpsrv.WriteError(w, http.StatusBadRequest, "household_id is required")
		return
	}

	decision, err := s.capper.Check(r.Context(), req.HouseholdID)
	if err != nil {
		s.logger.Error().Err(err).Str("household_id", req.HouseholdID).Msg("cap check failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "cap check failed")

		return
	}

	metrics.RecordCapDecision(decision)
	httpsrv.WriteJSON(w, http.StatusOK, decision)
}
