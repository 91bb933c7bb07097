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

// Package hashutil provides the salted one-way hash used to derive device,
// user, and household identifiers from identity tokens.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// Identity hashes value under the global salt and returns the lowercase hex
// digest. The salt is prefixed with a dash separator so "ab"+"c" and
// "a"+"bc" cannot collide with a moved boundary.
func Identity(salt, value string) string {
	sum := sha256.Sum256([]byte(salt + "-" + value))
	return hex.EncodeToString(sum[:])
}

// Hasher binds a salt so callers do not thread it through every derivation.
type Hasher struct {
	salt string
}

// NewHasher returns a Hasher for the given global salt.
func NewHasher(salt string) *Hasher {
	return &Hasher{salt: salt}
}

// Hash returns the salted digest of value.
func (h *Hasher) Hash(value string) string {
	return Identity(h.salt, value)
}
