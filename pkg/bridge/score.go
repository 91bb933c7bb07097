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

package bridge

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/householdiq/bridging/pkg/models"
)

const defaultTimeDecayFactor = 0.5

// DefaultWeights returns the stock per-key contribution weights.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		models.KeyHashedEmail: 1.0,
		models.KeyHashedIP:    0.9,
		models.KeyWifiSSID:    0.3,
		models.KeyDeviceType:  0.2,
		models.KeyProfileID:   0.2,
	}
}

// Scorer computes the pairwise match confidence between two events. A shared
// hashed email short-circuits to exactly 1.0; otherwise overlapping partial
// keys contribute weight x similarity, the sum is decayed by event-time
// distance, and the result is clamped to 1.0 once at the end.
type Scorer struct {
	Weights         map[string]float64
	TimeDecayFactor float64
}

// NewScorer builds a scorer; nil weights or a non-positive decay fall back to
// the defaults.
func NewScorer(weights map[string]float64, timeDecayFactor float64) *Scorer {
	if weights == nil {
		weights = DefaultWeights()
	}

	if timeDecayFactor <= 0 {
		timeDecayFactor = defaultTimeDecayFactor
	}

	return &Scorer{Weights: weights, TimeDecayFactor: timeDecayFactor}
}

// Score is symmetric in its arguments.
func (s *Scorer) Score(a, b *models.EphemeralEvent) float64 {
	emailA, emailB := a.HashedEmail(), b.HashedEmail()
	if emailA != "" && emailA == emailB {
		return 1.0
	}

	var sum float64

	for key, weight := range s.Weights {
		valA, valB := a.PartialKey(key), b.PartialKey(key)
		if valA == "" || valB == "" {
			continue
		}

		sum += weight * similarity(valA, valB)
	}

	if sum == 0 {
		return 0
	}

	sum *= s.recency(a, b)

	return math.Min(sum, 1.0)
}

// recency decays by half (at the default factor) per 24h of separation.
func (s *Scorer) recency(a, b *models.EphemeralEvent) float64 {
	hours := math.Abs(a.Timestamp.Sub(b.Timestamp).Hours())

	return math.Pow(s.TimeDecayFactor, hours/24)
}

// similarity is 1 - normalized Levenshtein distance, case-insensitive.
func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1.0
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)

	sim := 1.0 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0
	}

	return sim
}
