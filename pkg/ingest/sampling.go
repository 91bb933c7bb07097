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

package ingest

import "math/rand"

// Sampler selects 1-in-N events per event type for the anonymized store.
type Sampler struct {
	rates  map[string]int
	randFn func(n int) int
}

// NewSampler takes the per-event-type N values; types without a rate are
// never sampled.
func NewSampler(rates map[string]int) *Sampler {
	return &Sampler{rates: rates, randFn: rand.Intn}
}

func (s *Sampler) Sample(eventType string) bool {
	n, ok := s.rates[eventType]
	if !ok || n <= 0 {
		return false
	}

	return s.randFn(n)+1 == 1
}
