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

	"github.com/jackc/pgx/v5"

	"github.com/householdiq/bridging/pkg/models"
)

const (
	upsertAgreementSQL = `
INSERT INTO data_sharing_agreements (
	partner_id_initiator, partner_id_recipient, agreement_details,
	start_date, end_date, allow_aggregated_data_sharing, min_k_anonymity
) VALUES ($1, $2, NULLIF($3,''), $4, $5, $6, $7)
ON CONFLICT (partner_id_initiator, partner_id_recipient) DO UPDATE SET
	agreement_details = EXCLUDED.agreement_details,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	allow_aggregated_data_sharing = EXCLUDED.allow_aggregated_data_sharing,
	min_k_anonymity = EXCLUDED.min_k_anonymity
RETURNING id, partner_id_initiator, partner_id_recipient, COALESCE(agreement_details,''),
          start_date, end_date, allow_aggregated_data_sharing, min_k_anonymity, created_at`

	getAgreementSQL = `
SELECT id, partner_id_initiator, partner_id_recipient, COALESCE(agreement_details,''),
       start_date, end_date, allow_aggregated_data_sharing, min_k_anonymity, created_at
FROM data_sharing_agreements
WHERE partner_id_initiator = $1 AND partner_id_recipient = $2`
)

// UpsertDataSharingAgreement creates or refreshes the agreement for one
// initiator/recipient pair and returns the stored row.
func (db *DB) UpsertDataSharingAgreement(ctx context.Context, agreement *models.DataSharingAgreement) (*models.DataSharingAgreement, error) {
	if agreement == nil {
		return nil, ErrAgreementNil
	}

	minK := agreement.MinKAnonymity
	if minK <= 0 {
		minK = 50
	}

	stored := &models.DataSharingAgreement{}

	err := db.pool.QueryRow(ctx, upsertAgreementSQL,
		agreement.InitiatorPartnerID, agreement.RecipientPartnerID,
		agreement.AgreementDetails, agreement.StartDate, agreement.EndDate,
		agreement.AllowAggregated, minK).
		Scan(&stored.ID, &stored.InitiatorPartnerID, &stored.RecipientPartnerID,
			&stored.AgreementDetails, &stored.StartDate, &stored.EndDate,
			&stored.AllowAggregated, &stored.MinKAnonymity, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: data sharing agreement: %w", ErrFailedToInsert, err)
	}

	return stored, nil
}

func (db *DB) GetDataSharingAgreement(ctx context.Context, initiatorID, recipientID int64) (*models.DataSharingAgreement, error) {
	agreement := &models.DataSharingAgreement{}

	err := db.pool.QueryRow(ctx, getAgreementSQL, initiatorID, recipientID).
		Scan(&agreement.ID, &agreement.InitiatorPartnerID, &agreement.RecipientPartnerID,
			&agreement.AgreementDetails, &agreement.StartDate, &agreement.EndDate,
			&agreement.AllowAggregated, &agreement.MinKAnonymity, &agreement.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAgreementNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: data sharing agreement: %w", ErrFailedToQuery, err)
	}

	return agreement, nil
}
