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

package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gocache "github.com/patrickmn/go-cache"

	"github.com/householdiq/bridging/pkg/models"
)

const (
	insertPartnerSQL = `
INSERT INTO partners (name, salt, namespace)
VALUES ($1, $2, NULLIF($3, ''))
RETURNING id, name, salt, COALESCE(namespace, ''), created_at`

	getPartnerSQL = `
SELECT id, name, salt, COALESCE(namespace, ''), created_at
FROM partners
WHERE id = $1`

	getPartnerByNameSQL = `
SELECT id, name, salt, COALESCE(namespace, ''), created_at
FROM partners
WHERE name = $1`

	updatePartnerSQL = `
UPDATE partners
SET name = $2, salt = $3, namespace = NULLIF($4, '')
WHERE id = $1`
)

const pgUniqueViolation = "23505"

// CreatePartner registers a new ingestion customer.
func (db *DB) CreatePartner(ctx context.Context, name, salt, namespace string) (*models.Partner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPartnerNameRequired
	}

	partner := &models.Partner{}

	err := db.pool.QueryRow(ctx, insertPartnerSQL, name, salt, namespace).
		Scan(&partner.ID, &partner.Name, &partner.Salt, &partner.Namespace, &partner.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrPartnerNameTaken
		}

		return nil, fmt.Errorf("%w: partner: %w", ErrFailedToInsert, err)
	}

	db.partnerCache.Set(partnerCacheKey(partner.ID), partner, gocache.DefaultExpiration)

	return partner, nil
}

// GetPartner loads one partner row with a short read-through cache; the hot
// ingest path validates its partner on every request.
func (db *DB) GetPartner(ctx context.Context, partnerID int64) (*models.Partner, error) {
	if cached, found := db.partnerCache.Get(partnerCacheKey(partnerID)); found {
		return cached.(*models.Partner), nil
	}

	partner := &models.Partner{}

	err := db.pool.QueryRow(ctx, getPartnerSQL, partnerID).
		Scan(&partner.ID, &partner.Name, &partner.Salt, &partner.Namespace, &partner.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPartnerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: partner: %w", ErrFailedToQuery, err)
	}

	db.partnerCache.Set(partnerCacheKey(partnerID), partner, gocache.DefaultExpiration)

	return partner, nil
}

func (db *DB) GetPartnerByName(ctx context.Context, name string) (*models.Partner, error) {
	partner := &models.Partner{}

	err := db.pool.QueryRow(ctx, getPartnerByNameSQL, name).
		Scan(&partner.ID, &partner.Name, &partner.Salt, &partner.Namespace, &partner.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPartnerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: partner by name: %w", ErrFailedToQuery, err)
	}

	return partner, nil
}

// UpdatePartner rewrites the mutable partner fields, including the tenant
// namespace assignment.
func (db *DB) UpdatePartner(ctx context.Context, partner *models.Partner) error {
	if partner == nil || strings.TrimSpace(partner.Name) == "" {
		return ErrPartnerNameRequired
	}

	tag, err := db.pool.Exec(ctx, updatePartnerSQL,
		partner.ID, partner.Name, partner.Salt, partner.Namespace)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrPartnerNameTaken
		}

		return fmt.Errorf("%w: partner update: %w", ErrFailedToInsert, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrPartnerNotFound
	}

	db.partnerCache.Delete(partnerCacheKey(partner.ID))

	return nil
}

func partnerCacheKey(partnerID int64) string {
	return "partner:" + strconv.FormatInt(partnerID, 10)
}
