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

// Package bridge implements the identity-bridging engine: pair scoring,
// Device/User/Household derivation, the deterministic email path, and the
// queued fuzzy path drained by the worker.
package bridge

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/householdiq/bridging/pkg/db"
	"github.com/householdiq/bridging/pkg/graph"
	"github.com/householdiq/bridging/pkg/hashutil"
	"github.com/householdiq/bridging/pkg/kv"
	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

const (
	scoringCacheKey = "scoring"
	scoringCacheTTL = time.Minute
)

// Result is the bridging outcome reported back to the ingest caller.
type Result struct {
	Status      string
	HouseholdID string
	Token       string
}

// EngineConfig carries the static engine tunables.
type EngineConfig struct {
	// DefaultThreshold applies when neither an ML model nor an operator
	// config has published one.
	DefaultThreshold float64

	// Retention bounds which events the fuzzy drain considers.
	Retention time.Duration
}

type scoring struct {
	scorer    *Scorer
	threshold float64
}

// Engine routes events through the deterministic or fuzzy bridging path. It
// holds no globals; every handle is injected at construction.
type Engine struct {
	store   db.Service
	cache   kv.KVCache
	graph   graph.Linker
	deriver *Deriver
	minter  *TokenMinter
	logger  logger.Logger
	cfg     EngineConfig

	// Threshold/weights resolution is cached briefly; the hot path must
	// not hit the config tables per event.
	scoringCache *gocache.Cache

	mu        sync.RWMutex
	observers []BridgingObserver
}

func NewEngine(
	store db.Service,
	cache kv.KVCache,
	linker graph.Linker,
	hasher *hashutil.Hasher,
	minter *TokenMinter,
	cfg EngineConfig,
	log logger.Logger,
) *Engine {
	if cfg.DefaultThreshold <= 0 {
		cfg.DefaultThreshold = 0.7
	}

	return &Engine{
		store:        store,
		cache:        cache,
		graph:        linker,
		deriver:      NewDeriver(hasher),
		minter:       minter,
		logger:       log.WithComponent("bridge"),
		cfg:          cfg,
		scoringCache: gocache.New(scoringCacheTTL, 5*time.Minute),
	}
}

// RegisterObserver adds a bridging observer. Enabled state is checked against
// the plugin registry at notification time, not registration time.
func (e *Engine) RegisterObserver(observer BridgingObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observers = append(e.observers, observer)
}

// Bridge routes one freshly ingested event.
func (e *Engine) Bridge(ctx context.Context, ev *models.EphemeralEvent) *Result {
	if !ev.BridgingConsent() {
		return &Result{Status: models.BridgeStatusNoConsent}
	}

	if ev.ChildFlagged() {
		return &Result{Status: models.BridgeStatusChildFlag}
	}

	email := ev.HashedEmail()
	if email == "" {
		if err := e.cache.EnqueueFuzzy(ctx, ev.ID); err != nil {
			e.logger.Error().Err(err).Int64("event_id", ev.ID).Msg("failed to enqueue fuzzy event")
		}

		return &Result{Status: models.BridgeStatusQueued}
	}

	result := &Result{Status: models.BridgeStatusDone}

	e.bridgeDeterministic(ctx, ev, email, result)

	// The event becomes discoverable only after its own bridging attempt,
	// so it never matches itself.
	if err := e.cache.IndexEmail(ctx, email, ev.ID); err != nil {
		e.logger.Error().Err(err).Int64("event_id", ev.ID).Msg("failed to index email")
	}

	return result
}

func (e *Engine) bridgeDeterministic(ctx context.Context, ev *models.EphemeralEvent, email string, result *Result) {
	ids, err := e.cache.EmailEvents(ctx, email)
	if err != nil {
		e.logger.Error().Err(err).Int64("event_id", ev.ID).Msg("email index read failed, abandoning bridging")

		return
	}

	if len(ids) > 0 {
		if err := e.graph.MergeEvent(ctx, ev); err != nil {
			e.logger.Error().Err(err).Str("ephem_id", ev.EphemID).Msg("event merge failed, abandoning bridging")

			return
		}

		sc := e.resolveScoring(ctx)

		for _, id := range ids {
			other, err := e.store.GetEvent(ctx, id)
			if err != nil {
				e.logger.Warn().Err(err).Int64("event_id", id).Msg("indexed event not loadable, skipping")
				continue
			}

			if _, err := e.bridgePair(ctx, ev, other, sc); err != nil {
				e.logger.Error().Err(err).
					Int64("event_id", ev.ID).
					Int64("other_id", id).
					Msg("pair bridge failed")
			}
		}
	}

	householdID, found, err := e.cache.GetHouseholdRef(ctx, ev.EphemID)
	if err != nil {
		e.logger.Error().Err(err).Str("ephem_id", ev.EphemID).Msg("household ref read failed")

		return
	}

	if !found {
		return
	}

	result.HouseholdID = householdID

	token, err := e.minter.Mint(ev.EphemID, householdID)
	if err != nil {
		e.logger.Error().Err(err).Str("ephem_id", ev.EphemID).Msg("token minting failed")

		return
	}

	result.Token = token
}

// FuzzyBridge scores and, above threshold, merges one event pair. Returns
// whether the pair bridged.
func (e *Engine) FuzzyBridge(ctx context.Context, newEv, other *models.EphemeralEvent) (bool, error) {
	return e.bridgePair(ctx, newEv, other, e.resolveScoring(ctx))
}

func (e *Engine) bridgePair(ctx context.Context, newEv, other *models.EphemeralEvent, sc scoring) (bool, error) {
	if other.ID == newEv.ID {
		return false, nil
	}

	if !other.BridgingConsent() || newEv.ChildFlagged() || other.ChildFlagged() {
		return false, nil
	}

	score := sc.scorer.Score(newEv, other)
	if score < sc.threshold {
		return false, nil
	}

	identity := e.deriver.DerivePair(newEv, other)

	if err := e.applyGraph(ctx, newEv, other, identity, score); err != nil {
		return false, err
	}

	if err := e.applyCache(ctx, newEv, other, identity, score); err != nil {
		return false, err
	}

	e.notifyObservers(ctx, &models.BridgeUpdate{
		EventID:     newEv.ID,
		EphemID:     newEv.EphemID,
		OtherEphem:  other.EphemID,
		HouseholdID: identity.HouseholdA,
		Score:       score,
		PartnerID:   newEv.PartnerID,
		EventType:   newEv.EventType,
		Timestamp:   newEv.Timestamp,
	})

	return true, nil
}

func (e *Engine) applyGraph(ctx context.Context, newEv, other *models.EphemeralEvent, identity PairIdentity, score float64) error {
	if err := e.graph.MergeEvent(ctx, newEv); err != nil {
		return err
	}

	if err := e.graph.MergeEvent(ctx, other); err != nil {
		return err
	}

	if err := e.graph.LinkEventDevice(ctx, newEv.EphemID, identity.DeviceA, score); err != nil {
		return err
	}

	if err := e.graph.LinkEventDevice(ctx, other.EphemID, identity.DeviceB, score); err != nil {
		return err
	}

	if err := e.graph.LinkDeviceUser(ctx, identity.DeviceA, identity.UserA, score); err != nil {
		return err
	}

	if err := e.graph.LinkDeviceUser(ctx, identity.DeviceB, identity.UserB, score); err != nil {
		return err
	}

	if err := e.graph.LinkUserHousehold(ctx, identity.UserA, identity.HouseholdA, score); err != nil {
		return err
	}

	return e.graph.LinkUserHousehold(ctx, identity.UserB, identity.HouseholdB, score)
}

func (e *Engine) applyCache(ctx context.Context, newEv, other *models.EphemeralEvent, identity PairIdentity, score float64) error {
	if err := e.cache.SetHouseholdRef(ctx, newEv.EphemID, identity.HouseholdA); err != nil {
		return err
	}

	if err := e.cache.SetHouseholdRef(ctx, other.EphemID, identity.HouseholdB); err != nil {
		return err
	}

	// Memberships and the edge book exist only for shared households;
	// solo households keep the bare ref.
	if !identity.SharedHousehold {
		return nil
	}

	if err := e.cache.AppendMembership(ctx, identity.HouseholdA, newEv.EphemID); err != nil {
		return err
	}

	if err := e.cache.AppendMembership(ctx, identity.HouseholdA, other.EphemID); err != nil {
		return err
	}

	return e.cache.AddEdge(ctx, identity.HouseholdA, newEv.EphemID, other.EphemID, score)
}

// ProcessFuzzyQueue drains the queued events and runs the fuzzy pass against
// the retention-window event set. Per-event failures are logged and isolated.
func (e *Engine) ProcessFuzzyQueue(ctx context.Context) (bridged int, err error) {
	ids, err := e.cache.PopFuzzy(ctx)
	if err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		return 0, nil
	}

	since := time.Now().UTC().Add(-e.cfg.Retention)

	recent, err := e.store.GetEventsSince(ctx, since)
	if err != nil {
		return 0, err
	}

	byID := make(map[int64]*models.EphemeralEvent, len(recent))
	for _, ev := range recent {
		byID[ev.ID] = ev
	}

	sc := e.resolveScoring(ctx)

	for _, id := range ids {
		ev, ok := byID[id]
		if !ok {
			e.logger.Warn().Int64("event_id", id).Msg("queued event absent or outside retention window")
			continue
		}

		for _, other := range recent {
			ok, err := e.bridgePair(ctx, ev, other, sc)
			if err != nil {
				e.logger.Error().Err(err).
					Int64("event_id", id).
					Int64("other_id", other.ID).
					Msg("fuzzy pair bridge failed")

				continue
			}

			if ok {
				bridged++
			}
		}
	}

	return bridged, nil
}

// resolveScoring returns the effective scorer and threshold. The newest ML
// threshold wins over operator config, which wins over the static default.
func (e *Engine) resolveScoring(ctx context.Context) scoring {
	if cached, found := e.scoringCache.Get(scoringCacheKey); found {
		return cached.(scoring)
	}

	threshold := e.cfg.DefaultThreshold
	weights := DefaultWeights()
	decay := defaultTimeDecayFactor

	cfg, err := e.store.LatestBridgingConfig(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("bridging config read failed, using defaults")
	} else if cfg != nil {
		if cfg.Threshold != nil {
			threshold = *cfg.Threshold
		}

		if cfg.PartialKeyWeights != nil {
			weights = cfg.PartialKeyWeights
		}

		if cfg.TimeDecayFactor != nil {
			decay = *cfg.TimeDecayFactor
		}
	}

	ml, err := e.store.LatestMLThreshold(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("ml threshold read failed")
	} else if ml != nil {
		threshold = ml.ThresholdValue
	}

	sc := scoring{scorer: NewScorer(weights, decay), threshold: threshold}
	e.scoringCache.Set(scoringCacheKey, sc, gocache.DefaultExpiration)

	return sc
}

func (e *Engine) notifyObservers(ctx context.Context, update *models.BridgeUpdate) {
	e.mu.RLock()
	observers := make([]BridgingObserver, len(e.observers))
	copy(observers, e.observers)
	e.mu.RUnlock()

	for _, observer := range observers {
		enabled, err := e.store.IsPluginEnabled(ctx, observer.Name())
		if err != nil {
			e.logger.Warn().Err(err).Str("plugin", observer.Name()).Msg("plugin registry read failed, skipping observer")
			continue
		}

		if !enabled {
			continue
		}

		if err := observer.OnBridgingUpdate(ctx, update); err != nil {
			e.logger.Error().Err(err).Str("plugin", observer.Name()).Msg("bridging observer failed")
		}
	}
}
