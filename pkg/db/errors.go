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

import "errors"

var (

	// Core database errors.

	ErrFailedToScan   = errors.New("failed to scan")
	ErrFailedToQuery  = errors.New("failed to query")
	ErrFailedToInsert = errors.New("failed to insert")
	ErrFailedToInit   = errors.New("failed to initialize schema")
	ErrFailedOpenDB   = errors.New("failed to open database")

	// Lookup results.

	ErrPartnerNotFound   = errors.New("partner not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrAgreementNotFound = errors.New("data sharing agreement not found")
	ErrPluginNotFound    = errors.New("plugin not found")

	// Validation errors.

	ErrPartnerNameRequired = errors.New("partner name is required")
	ErrPartnerNameTaken    = errors.New("partner name already exists")
	ErrEventNil            = errors.New("event is nil")
	ErrEphemIDRequired     = errors.New("ephem_id is required")
	ErrHouseholdIDRequired = errors.New("household_id is required")
	ErrJourneyNil          = errors.New("attribution journey is nil")
	ErrAgreementNil        = errors.New("data sharing agreement is nil")
	ErrSubscriptionNil     = errors.New("webhook subscription is nil")
	ErrPluginNameRequired  = errors.New("plugin name is required")
)
