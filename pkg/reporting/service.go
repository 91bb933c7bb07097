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

// Package reporting serves the aggregate read side: daily roll-ups (with
// optional differential-privacy noise), agreement-gated data sharing,
// attribution journeys, and the plugin registry controls.
package reporting

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/httpsrv"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
	"github.com/householdiq/bridging/pkg/privacy"
)

const (
	dateLayout = "2006-01-02"

	// anonymizedShareLimit bounds one export batch.
	anonymizedShareLimit = 1000
)

// Config carries the reporting tunables.
type Config struct {
	// DPEnabled adds Laplace noise to every reported count.
	DPEnabled bool

	// Epsilon is the differential-privacy budget per reported count.
	Epsilon float64

	// MinThreshold suppresses counts below this floor to zero so small
	// cohorts are never revealed.
	MinThreshold int64
}

// Service handles the reporting HTTP surface.
type Service struct {
	store  db.Service
	cfg    Config
	logger logger.Logger
}

func NewService(store db.Service, cfg Config, log logger.Logger) *Service {
	return &Service{
		store:  store,
		cfg:    cfg,
		logger: log.WithComponent("reporting"),
	}
}

// RegisterRoutes attaches the reporting endpoints to the router.
func (s *Service) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/reporting/daily", s.handleDaily).Methods(http.MethodPost)
	router.HandleFunc("/v1/reporting/attribution/{household_id}", s.handleAttribution).Methods(http.MethodGet)
	router.HandleFunc("/v1/data_sharing/agreements", s.handleUpsertAgreement).Methods(http.MethodPost)
	router.HandleFunc("/v1/data_sharing/export", s.handleExport).Methods(http.MethodPost)
	router.HandleFunc("/v1/segments/lookalike", s.handleCreateLookalike).Methods(http.MethodPost)
	router.HandleFunc("/v1/webhooks/subscriptions", s.handleSubscribeWebhook).Methods(http.MethodPost)
	router.HandleFunc("/v1/plugins/list", s.handleListPlugins).Methods(http.MethodGet)
	router.HandleFunc("/v1/plugins/enable", s.setPluginEnabled(true)).Methods(http.MethodPost)
	router.HandleFunc("/v1/plugins/disable", s.setPluginEnabled(false)).Methods(http.MethodPost)
}

// DailyRequest bounds the reporting window, inclusive on both ends.
type DailyRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// DailyResponse maps "date|partner|device|event" to its count.
type DailyResponse struct {
	Counts map[string]int64 `json:"counts"`
}

func (s *Service) handleDaily(w http.ResponseWriter, r *http.Request) {
	var req DailyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !validDate(req.StartDate) || !validDate(req.EndDate) {
		httpsrv.WriteError(w, http.StatusBadRequest, "start_date and end_date must be YYYY-MM-DD")
		return
	}

	rows, err := s.store.QueryDailyAggregates(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Error().Err(err).Msg("daily aggregate query failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "report query failed")

		return
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := strings.Join([]string{
			row.DateStr,
			fmt.Sprintf("%d", row.PartnerID),
			row.DeviceType,
			row.EventType,
		}, "|")
		counts[key] += row.Count
	}

	for key, count := range counts {
		if count < s.cfg.MinThreshold {
			counts[key] = 0
			continue
		}

		if s.cfg.DPEnabled {
			counts[key] = int64(privacy.Laplace(float64(count), s.cfg.Epsilon))
		}
	}

	httpsrv.WriteJSON(w, http.StatusOK, DailyResponse{Counts: counts})
}

func (s *Service) handleAttribution(w http.ResponseWriter, r *http.Request) {
	householdID := mux.Vars(r)["household_id"]

	journeys, err := s.store.JourneysForHousehold(r.Context(), householdID)
	if err != nil {
		s.logger.Error().Err(err).Str("household_id", householdID).Msg("attribution query failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "attribution query failed")

		return
	}

	if journeys == nil {
		journeys = []*models.AttributionJourney{}
	}

	httpsrv.WriteJSON(w, http.StatusOK, map[string]any{
		"household_id": householdID,
		"journeys":     journeys,
	})
}

// AgreementRequest creates or updates the initiator→recipient sharing terms.
type AgreementRequest struct {
	InitiatorPartnerID int64  `json:"partner_id_initiator"`
	RecipientPartnerID int64  `json:"partner_id_recipient"`
	AgreementDetails   string `json:"agreement_details,omitempty"`
	AllowAggregated    bool   `json:"allow_aggregated_data_sharing"`
	MinKAnonymity      int64  `json:"min_k_anonymity,omitempty"`
}

func (s *Service) handleUpsertAgreement(w http.ResponseWriter, r *http.Request) {
	var req AgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.InitiatorPartnerID <= 0 || req.RecipientPartnerID <= 0 {
		httpsrv.WriteError(w, http.StatusBadRequest, "both partner ids are required")
		return
	}

	agreement, err := s.store.UpsertDataSharingAgreement(r.Context(), &models.DataSharingAgreement{
		InitiatorPartnerID: req.InitiatorPartnerID,
		RecipientPartnerID: req.RecipientPartnerID,
		AgreementDetails:   req.AgreementDetails,
		AllowAggregated:    req.AllowAggregated,
		MinKAnonymity:      req.MinKAnonymity,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("agreement upsert failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "agreement upsert failed")

		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, agreement)
}

// ExportRequest asks for the initiator's data on behalf of the recipient.
type ExportRequest struct {
	InitiatorPartnerID int64  `json:"partner_id_initiator"`
	RecipientPartnerID int64  `json:"partner_id_recipient"`
	StartDate          string `json:"start_date,omitempty"`
	EndDate            string `json:"end_date,omitempty"`
}

// ExportResponse is either an aggregated share or a k-anonymity-gated
// anonymized share, per the agreement.
type ExportResponse struct {
	Mode       string                    `json:"mode"`
	Aggregates []*models.DailyAggregate  `json:"aggregates,omitempty"`
	Events     []*models.AnonymizedEvent `json:"events,omitempty"`
}

func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	agreement, err := s.store.GetDataSharingAgreement(ctx, req.InitiatorPartnerID, req.RecipientPartnerID)
	if err != nil {
		if errors.Is(err, db.ErrAgreementNotFound) {
			httpsrv.WriteError(w, http.StatusForbidden, "no data sharing agreement")
			return
		}

		s.logger.Error().Err(err).Msg("agreement lookup failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "agreement lookup failed")

		return
	}

	if agreement.AllowAggregated {
		s.exportAggregated(w, r, req)
		return
	}

	s.exportAnonymized(w, r, agreement)
}

func (s *Service) exportAggregated(w http.ResponseWriter, r *http.Request, req ExportRequest) {
	start, end := req.StartDate, req.EndDate
	if !validDate(start) || !validDate(end) {
		end = time.Now().UTC().Format(dateLayout)
		start = time.Now().UTC().AddDate(0, 0, -30).Format(dateLayout)
	}

	rows, err := s.store.QueryDailyAggregates(r.Context(), start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("aggregated export failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "export failed")

		return
	}

	if rows == nil {
		rows = []*models.DailyAggregate{}
	}

	httpsrv.WriteJSON(w, http.StatusOK, ExportResponse{Mode: "aggregated", Aggregates: rows})
}

// exportAnonymized releases sampled events only when the initiator's pool is
// at least the agreed k-anonymity floor.
func (s *Service) exportAnonymized(w http.ResponseWriter, r *http.Request, agreement *models.DataSharingAgreement) {
	ctx := r.Context()

	count, err := s.store.CountAnonymizedEvents(ctx, agreement.InitiatorPartnerID)
	if err != nil {
		s.logger.Error().Err(err).Msg("anonymized count failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "export failed")

		return
	}

	if count < agreement.MinKAnonymity {
		s.logger.Info().
			Int64("initiator", agreement.InitiatorPartnerID).
			Int64("count", count).
			Int64("min_k", agreement.MinKAnonymity).
			Msg("anonymized export denied below k-anonymity floor")
		httpsrv.WriteError(w, http.StatusForbidden, "dataset below k-anonymity threshold")

		return
	}

	events, err := s.store.ListAnonymizedEvents(ctx, agreement.InitiatorPartnerID, anonymizedShareLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("anonymized export failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "export failed")

		return
	}

	httpsrv.WriteJSON(w, http.StatusOK, ExportResponse{Mode: "anonymized", Events: events})
}

// LookalikeRequest seeds a segment with its matched households.
type LookalikeRequest struct {
	SeedSegment       string   `json:"seed_segment"`
	MatchedHouseholds []string `json:"matched_households"`
}

func (s *Service) handleCreateLookalike(w http.ResponseWriter, r *http.Request) {
	var req LookalikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SeedSegment == "" {
		httpsrv.WriteError(w, http.StatusBadRequest, "seed_segment is required")
		return
	}

	segment := &models.LookalikeSegment{
		SeedSegment:       req.SeedSegment,
		MatchedHouseholds: req.MatchedHouseholds,
	}

	id, err := s.store.InsertLookalikeSegment(r.Context(), segment)
	if err != nil {
		s.logger.Error().Err(err).Str("seed", req.SeedSegment).Msg("lookalike segment insert failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "lookalike segment insert failed")

		return
	}

	segment.ID = id
	httpsrv.WriteJSON(w, http.StatusCreated, segment)
}

// WebhookSubscribeRequest registers a callback for bridge updates. Event
// type defaults to "bridging_update".
type WebhookSubscribeRequest struct {
	SubscriberName string `json:"subscriber_name"`
	CallbackURL    string `json:"callback_url"`
	EventType      string `json:"event_type,omitempty"`
}

func (s *Service) handleSubscribeWebhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookSubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpsrv.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SubscriberName == "" || req.CallbackURL == "" {
		httpsrv.WriteError(w, http.StatusBadRequest, "subscriber_name and callback_url are required")
		return
	}

	if req.EventType == "" {
		req.EventType = "bridging_update"
	}

	sub := &models.WebhookSubscription{
		SubscriberName: req.SubscriberName,
		CallbackURL:    req.CallbackURL,
		EventType:      req.EventType,
		Active:         true,
	}

	id, err := s.store.InsertWebhookSubscription(r.Context(), sub)
	if err != nil {
		s.logger.Error().Err(err).Str("subscriber", req.SubscriberName).Msg("webhook subscription failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "webhook subscription failed")

		return
	}

	sub.ID = id
	httpsrv.WriteJSON(w, http.StatusCreated, sub)
}

func (s *Service) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	plugins, err := s.store.ListPlugins(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("plugin list failed")
		httpsrv.WriteError(w, http.StatusInternalServerError, "plugin list failed")

		return
	}

	if plugins == nil {
		plugins = []*models.PluginRecord{}
	}

	httpsrv.WriteJSON(w, http.StatusOK, map[string]any{"plugins": plugins})
}

func (s *Service) setPluginEnabled(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("plugin_name")
		if name == "" {
			httpsrv.WriteError(w, http.StatusBadRequest, "plugin_name is required")
			return
		}

		if err := s.store.SetPluginEnabled(r.Context(), name, enabled); err != nil {
			s.logger.Error().Err(err).Str("plugin", name).Msg("plugin toggle failed")
			httpsrv.WriteError(w, http.StatusInternalServerError, "plugin toggle failed")

			return
		}

		httpsrv.WriteJSON(w, http.StatusOK, map[string]any{
			"plugin_name": name,
			"enabled":     enabled,
		})
	}
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
