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

// Package customer is the operator-facing partner administration service.
// Every route sits behind the API-key middleware.
package customer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/httpsrv"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

// Service handles the customer administration HTTP surface.
type Service struct {
	store  db.Service
	logger logger.Logger
}

func NewService(store db.Service, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log.WithComponent("customer"),
	}
}

// RegisterRoutes attaches the customer endpoints to the router.
func (s *Service) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/customers/create", s.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/v1/customers/update/{partner_id}", s.handleUpdate).Methods(http.MethodPost)
	router.HandleFunc("/v1/customers/by-name/{name}", s.handleGetByName).Methods(http.MethodGet)
	router.HandleFunc("/v1/customers/{partner_id}", s.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/v1/consent/revoke", s.handleRevoke).Methods(http.MethodPost)
	router.HandleFunc("/v1/config/bridging", s.handleBridgingConfig).Methods(http.MethodPost)
}

// CreateRequest registers a new ingestion partner. Salt defaults to a fresh
// random value when omitted.
type CreateRequest struct {
	Name      string `json:"name"`
	Salt      string `json:"salt,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		httpsrv.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	salt := req.Salt
	if salt == "" {
		salt = uuid.NewString()
	}

	partner, err := s.store.CreatePartner(r.Context(), req.Name, salt, req.Namespace)
	if err != nil {
		if errors.Is(err, db.ErrPartnerNameTaken) {
			httpsrv.WriteError(w, http.StatusConflict, "partner name already taken")
			return
		}

		if errors.Is(err, db.ErrPartnerNameRequired) {
			httpsrv.WriteError(w, http.StatusBadRequest, "name is required")
			return
		}

		s.logger.Error().Err(err).Str("name", req.Name).Msg("partner create failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "partner create failed")

		return
	}

	s.logger.Info().Int64("partner_id", partner.ID).Str("name", partner.Name).Msg("partner created")
	httpsrv.WriteJSON(w, http.StatusCreated, partner)
}

// UpdateRequest patches a partner; empty fields keep their current value.
type UpdateRequest struct {
	Name      string `json:"name,omitempty"`
	Salt      string `json:"salt,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

func (s *Service) handleUpdate(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partnerIDFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	partner, err := s.store.GetPartner(ctx, partnerID)
	if err != nil {
		s.writePartnerError(w, partnerID, err)
		return
	}

	if req.Name != "" {
		partner.Name = req.Name
	}

	if req.Salt != "" {
		partner.Salt = req.Salt
	}

	if req.Namespace != "" {
		partner.Namespace = req.Namespace
	}

	if err := s.store.UpdatePartner(ctx, partner); err != nil {
		if errors.Is(err, db.ErrPartnerNameTaken) {
			httpsrv.WriteError(w, http.StatusConflict, "partner name already taken")
			return
		}

		s.writePartnerError(w, partnerID, err)

		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, partner)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partnerIDFromPath(w, r)
	if !ok {
		return
	}

	partner, err := s.store.GetPartner(r.Context(), partnerID)
	if err != nil {
		s.writePartnerError(w, partnerID, err)
		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, partner)
}

func (s *Service) handleGetByName(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	partner, err := s.store.GetPartnerByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, db.ErrPartnerNotFound) {
			httpsrv.WriteError(w, http.StatusNotFound, "partner not found")
			return
		}

		s.logger.Error().Err(err).Str("name", name).Msg("partner lookup failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "partner lookup failed")

		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, partner)
}

// BridgingConfigRequest publishes new scoring parameters. Omitted fields keep
// the engine defaults.
type BridgingConfigRequest struct {
	Threshold         *float64           `json:"threshold,omitempty"`
	PartialKeyWeights map[string]float64 `json:"partial_key_weights,omitempty"`
	TimeDecayFactor   *float64           `json:"time_decay_factor,omitempty"`
}

func (s *Service) handleBridgingConfig(w http.ResponseWriter, r *http.Request) {
	var req BridgingConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Threshold == nil && req.PartialKeyWeights == nil && req.TimeDecayFactor == nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "at least one scoring field is required")
		return
	}

	cfg := &models.BridgingConfig{
		Threshold:         req.Threshold,
		PartialKeyWeights: req.PartialKeyWeights,
		TimeDecayFactor:   req.TimeDecayFactor,
	}

	id, err := s.store.InsertBridgingConfig(r.Context(), cfg)
	if err != nil {
		s.logger.Error().Err(err).Msg("bridging config insert failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "bridging config insert failed")

		return
	}

	cfg.ID = id
	httpsrv.WriteJSON(w, http.StatusCreated, cfg)
}

// RevokeRequest records a downstream opt-out for an ephemeral id.
type RevokeRequest struct {
	EphemID string `json:"ephem_id"`
}

func (s *Service) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EphemID == "" {
		httpsrv.WriteError(w, http.StatusBadRequest, "ephem_id is required")
		return
	}

	revocation, err := s.store.InsertConsentRevocation(r.Context(), req.EphemID)
	if err != nil {
		s.logger.Error().Err(err).Str("ephem_id", req.EphemID).Msg("consent revocation failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "consent revocation failed")

		return
	}

	s.logger.Info().Str("ephem_id", req.EphemID).Msg("consent revoked")
	httpsrv.WriteJSON(w, http.StatusOK, revocation)
}

func (s *Service) writePartnerError(w http.ResponseWriter, partnerID int64, err error) {
	if errors.Is(err, db.ErrPartnerNotFound) {
		httpsrv.WriteError(w, http.StatusNotFound, "partner not found")
		return
	}

	s.logger.Error().Err(err).Int64("partner_id", partnerID).Msg("partner operation failed")
	httpsrv.WriteError(w, http.StatusInternalServerError, "partner operation failed")
}

func partnerIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	partnerID, err := strconv.ParseInt(mux.Vars(r)["partner_id"], 10, 64)
	if err != nil || partnerID <= 0 {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid partner_id")
		return 0, false
	}

	return partnerID, true
}
