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
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	tokenVersion  = "1.0"
	tokenLifetime = 24 * time.Hour
)

var (
	ErrTokenInvalid            = errors.New("bridging token invalid")
	ErrUnexpectedSigningMethod = errors.New("unexpected token signing method")
)

// TokenClaims is the bridging token payload handed to downstream bidders.
type TokenClaims struct {
	Household string `json:"household"`
	Version   string `json:"ver"`
	jwt.RegisteredClaims
}

// TokenMinter issues and validates 24h HS256 bridging tokens.
type TokenMinter struct {
	secret []byte
	nowFn  func() time.Time
}

func NewTokenMinter(secret string) *TokenMinter {
	return &TokenMinter{secret: []byte(secret), nowFn: time.Now}
}

// Mint issues a token binding ephemID to its household ref.
func (m *TokenMinter) Mint(ephemID, householdID string) (string, error) {
	now := m.nowFn().UTC()

	claims := TokenClaims{
		Household: householdID,
		Version:   tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ephemID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing bridging token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a bridging token.
func (m *TokenMinter) Validate(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, t.Header["alg"])
		}

		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
