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

// Package ingest is the partner-facing event intake service. Every accepted
// event gets a consent row, a durable event row, a bridging attempt, a daily
// aggregate increment, and (sampled) an anonymized copy.
package ingest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/householdiq/bridging/pkg/aggregate"
	"github.com/householdiq/bridging/pkg/bridge"
	"github.com/householdiq/bridging/pkg/capping"
	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/httpsrv"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/metrics"
	"github.com/householdiq/bridging/pkg/models"
	"github.com/householdiq/bridging/pkg/privacy"
)

const eventDayLayout = "2006-01-02"

// Service handles the ingest HTTP surface.
type Service struct {
	store   db.Service
	engine  *bridge.Engine
	gate    *privacy.Gate
	buffer  *aggregate.Buffer
	capper  *capping.Manager
	sampler *Sampler
	logger  logger.Logger
}

func NewService(
	store db.Service,
	engine *bridge.Engine,
	gate *privacy.Gate,
	buffer *aggregate.Buffer,
	capper *capping.Manager,
	sampler *Sampler,
	log logger.Logger,
) *Service {
	return &Service{
		store:   store,
		engine:  engine,
		gate:    gate,
		buffer:  buffer,
		capper:  capper,
		sampler: sampler,
		logger:  log.WithComponent("ingest"),
	}
}

// RegisterRoutes attaches the ingest endpoints to the router.
func (s *Service) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/ingest", s.handleIngest).Methods(http.MethodPost)
	router.HandleFunc("/v1/capping/increment", s.handleCapIncrement).Methods(http.MethodPost)
}

// ConsentInput is the partner-declared consent on one event.
type ConsentInput struct {
	CrossDeviceBridging bool `json:"cross_device_bridging"`
	TargetingSegments   bool `json:"targeting_segments"`
}

// Request is the ingest payload. DeviceData is the partner-scoped device
// token and becomes the event's ephem_id, so partners can resolve the same
// token later through the lookup service.
type Request struct {
	PartnerID      int64             `json:"partner_id"`
	DeviceData     string            `json:"device_data"`
	PartialKeys    map[string]string `json:"partial_keys"`
	EventType      string            `json:"event_type"`
	CampaignID     string            `json:"campaign_id,omitempty"`
	Timestamp      *time.Time        `json:"timestamp,omitempty"`
	ConsentFlags   ConsentInput      `json:"consent_flags"`
	PrivacySignals *privacy.Signals  `json:"privacy_signals,omitempty"`
}

// Response echoes the stored event plus the bridging outcome.
type Response struct {
	ID                 int64     `json:"id"`
	EphemID            string    `json:"ephem_id"`
	Timestamp          time.Time `json:"timestamp"`
	EventType          string    `json:"event_type"`
	CampaignID         string    `json:"campaign_id,omitempty"`
	BridgingStatus     string    `json:"bridging_status"`
	BridgingSkipReason string    `json:"bridging_skip_reason,omitempty"`
	HouseholdID        string    `json:"household_id,omitempty"`
	BridgingToken      string    `json:"bridging_token,omitempty"`
}

func (s *Service) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PartnerID <= 0 {
		httpsrv.WriteError(w, http.StatusBadRequest, "partner_id is required")
		return
	}

	if req.DeviceData == "" {
		httpsrv.WriteError(w, http.StatusBadRequest, "device_data is required")
		return
	}

	if !models.ValidEventType(req.EventType) {
		httpsrv.WriteError(w, http.StatusUnprocessableEntity, "unknown event_type")
		return
	}

	ctx := r.Context()

	partner, err := s.store.GetPartner(ctx, req.PartnerID)
	if err != nil {
		if errors.Is(err, db.ErrPartnerNotFound) {
			httpsrv.WriteError(w, http.StatusBadRequest, "unknown partner")
			return
		}

		s.logger.Error().Err(err).Int64("partner_id", req.PartnerID).Msg("partner lookup failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "partner lookup failed")

		return
	}

	var signals privacy.Signals
	if req.PrivacySignals != nil {
		signals = *req.PrivacySignals
	}

	// The stored consent flag already folds the privacy-framework decision
	// into the partner-declared one, so downstream readers never re-evaluate
	// TCF or US privacy strings.
	finalConsent := s.gate.Allows(req.ConsentFlags.CrossDeviceBridging, signals)

	consentID, err := s.store.InsertConsentFlags(ctx, finalConsent, req.ConsentFlags.TargetingSegments)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to insert consent flags")
		httpsrv.WriteError(w, http.StatusInternalServerError, "failed to record consent")

		return
	}

	isChild, deviceChild := models.ChildFlagFromKeys(req.PartialKeys)

	// Without effective consent the raw partial keys are never persisted.
	keys := req.PartialKeys
	if !finalConsent {
		keys = nil
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	ev := &models.EphemeralEvent{
		EphemID:         req.DeviceData,
		PartialKeys:     keys,
		EventType:       req.EventType,
		Timestamp:       ts,
		CampaignID:      req.CampaignID,
		PartnerID:       partner.ID,
		ConsentFlagsID:  consentID,
		PrivacyTCF:      signals.TCFString,
		PrivacyUS:       signals.USPrivacyString,
		TenantNamespace: partner.Namespace,
		IsChild:         isChild,
		DeviceChildFlag: deviceChild,
	}

	id, err := s.store.InsertEvent(ctx, ev)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to insert event")
		httpsrv.WriteError(w, http.StatusInternalServerError, "failed to store event")

		return
	}

	ev.ID = id
	ev.Consent = &models.ConsentFlags{
		ID:                  consentID,
		CrossDeviceBridging: finalConsent,
		TargetingSegments:   req.ConsentFlags.TargetingSegments,
	}

	result := s.engine.Bridge(ctx, ev)
	metrics.IngestedEvents.WithLabelValues(result.Status).Inc()

	s.sampleEvent(r, ev)
	s.countEvent(r, ev, finalConsent)

	resp := Response{
		ID:             ev.ID,
		EphemID:        ev.EphemID,
		Timestamp:      ev.Timestamp,
		EventType:      ev.EventType,
		CampaignID:     ev.CampaignID,
		BridgingStatus: result.Status,
		HouseholdID:    result.HouseholdID,
		BridgingToken:  result.Token,
	}

	switch result.Status {
	case models.BridgeStatusNoConsent, models.BridgeStatusChildFlag:
		resp.BridgingSkipReason = result.Status
	}

	httpsrv.WriteJSON(w, http.StatusOK, resp)
}

// sampleEvent copies 1-in-N events into the anonymized store. Failures are
// logged; sampling never affects the ingest response.
func (s *Service) sampleEvent(r *http.Request, ev *models.EphemeralEvent) {
	if !s.sampler.Sample(ev.EventType) {
		return
	}

	anon := &models.AnonymizedEvent{
		EventID:         ev.ID,
		HashedDeviceSig: bridge.DeviceSignature(ev),
		HashedUserSig:   ev.HashedEmail(),
		EventDay:        ev.Timestamp.Format(eventDayLayout),
		EventType:       ev.EventType,
		PartnerID:       ev.PartnerID,
	}

	if _, err := s.store.InsertAnonymizedEvent(r.Context(), anon); err != nil {
		s.logger.Error().Err(err).Int64("event_id", ev.ID).Msg("failed to sample anonymized event")
	}
}

// countEvent bumps the buffered daily aggregate. Device type coalesces to
// "unknown" when consent stripped the partial keys.
func (s *Service) countEvent(r *http.Request, ev *models.EphemeralEvent, finalConsent bool) {
	deviceType := ev.DeviceType()
	if !finalConsent || deviceType == "" {
		deviceType = "unknown"
	}

	if err := s.buffer.Increment(r.Context(), ev.PartnerID, deviceType, ev.EventType); err != nil {
		s.logger.Error().Err(err).Int64("event_id", ev.ID).Msg("failed to increment daily aggregate")
	}
}

type capRequest struct {
	HouseholdID string `json:"household_id"`
}

func (s *Service) handleCapIncrement(w http.ResponseWriter, r *http.Request) {
	var req capRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HouseholdID == "" {
		httpsrv.WriteError(w, http.StatusBadRequest, "household_id is required")
		return
	}

	decision, err := s.capper.Increment(r.Context(), req.HouseholdID)
	if err != nil {
		s.logger.Error().Err(err).Str("household_id", req.HouseholdID).Msg("cap increment failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "cap increment failed")

		return
	}

	metrics.RecordCapDecision(decision)
	httpsrv.WriteJSON(w, http.StatusOK, decision)
}
