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

package privacy

import (
	"math"
	"math/rand"
)

// Laplace perturbs count with Laplace noise of scale sensitivity/epsilon
// (sensitivity 1 for counting queries) and clamps at zero. Epsilon values
// <= 0 disable the noise.
func Laplace(count float64, epsilon float64) float64 {
	return laplaceWith(count, epsilon, rand.Float64)
}

func laplaceWith(count, epsilon float64, uniform func() float64) float64 {
	if epsilon <= 0 {
		return count
	}

	scale := 1.0 / epsilon

	// Inverse-CDF sampling: u uniform on (-0.5, 0.5).
	u := uniform() - 0.5
	noise := -scale * sign(u) * math.Log(1-2*math.Abs(u))

	return math.Max(0, count+noise)
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}

	return 1
}
