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

// USPrivacy is the decoded 4-character US privacy (CCPA/CPRA) string:
// [version][region][opt_out_sale][lspa]. Zero-valued fields mean the signal
// was absent or too short.
type USPrivacy struct {
	Version    byte
	Region     byte
	OptOutSale byte
	LSPA       byte
}

// ParseUSPrivacy decodes usp. Strings shorter than four characters yield the
// zero value (signal absent).
func ParseUSPrivacy(usp string) USPrivacy {
	if len(usp) < 4 {
		return USPrivacy{}
	}

	return USPrivacy{
		Version:    usp[0],
		Region:     usp[1],
		OptOutSale: usp[2],
		LSPA:       usp[3],
	}
}
