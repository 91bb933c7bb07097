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

package graph

import (
	"context"
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

const mergeEventCypher = `
MERGE (e:Event {id: $eid})
ON CREATE SET e.createdAt = timestamp(),
              e.partialKeys = $partialKeysJSON,
              e.timestamp = $timestamp
SET e.lastSeen = timestamp()
`

const linkEventDeviceCypher = `
MERGE (d:Device {device_id: $did})
ON CREATE SET d.createdAt = timestamp()
SET d.lastUpdated = timestamp()
MERGE (e:Event {id: $eid})
MERGE (e)-[r:FROM_DEVICE]->(d)
ON CREATE SET r.createdAt = timestamp(), r.confidence = $confidence
SET r.lastUpdated = timestamp(),
    r.confidence = CASE WHEN r.confidence < $confidence THEN $confidence ELSE r.confidence END
`

const linkDeviceUserCypher = `
MERGE (u:User {user_id: $uid})
ON CREATE SET u.createdAt = timestamp()
SET u.lastUpdated = timestamp()
MERGE (d:Device {device_id: $did})
MERGE (d)-[r:USED_BY]->(u)
ON CREATE SET r.createdAt = timestamp(), r.confidence = $confidence
SET r.lastUpdated = timestamp(),
    r.confidence = CASE WHEN r.confidence < $confidence THEN $confidence ELSE r.confidence END
`

const linkUserHouseholdCypher = `
MERGE (h:Household {household_id: $hid})
ON CREATE SET h.createdAt = timestamp()
SET h.lastUpdated = timestamp()
MERGE (u:User {user_id: $uid})
MERGE (u)-[r:MEMBER_OF]->(h)
ON CREATE SET r.createdAt = timestamp(), r.confidence = $confidence
SET r.lastUpdated = timestamp(),
    r.confidence = CASE WHEN r.confidence < $confidence THEN $confidence ELSE r.confidence END
`

const pruneEventsCypher = `
MATCH (e:Event)
WHERE e.createdAt < (timestamp() - $retentionMs)
DETACH DELETE e
`

// Neo4jConfig addresses the bolt endpoint.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
}

// Neo4jLinker is the production Linker over the bolt driver.
type Neo4jLinker struct {
	driver neo4j.DriverWithContext
	logger logger.Logger
}

// NewNeo4jLinker dials the graph. Connectivity is verified eagerly so a bad
// endpoint fails at startup, not mid-merge.
func NewNeo4jLinker(ctx context.Context, cfg *Neo4jConfig, log logger.Logger) (*Neo4jLinker, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("uri", cfg.URI).Msg("Connected to Neo4j")

	return &Neo4jLinker{driver: driver, logger: log}, nil
}

func (l *Neo4jLinker) write(ctx context.Context, cypher string, params map[string]any) error {
	session := l.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		return res.Consume(ctx)
	})

	return err
}

func (l *Neo4jLinker) MergeEvent(ctx context.Context, ev *models.EphemeralEvent) error {
	partialKeys := "{}"

	if len(ev.PartialKeys) > 0 {
		raw, err := json.Marshal(ev.PartialKeys)
		if err != nil {
			return err
		}

		partialKeys = string(raw)
	}

	return l.write(ctx, mergeEventCypher, map[string]any{
		"eid":             ev.EphemID,
		"partialKeysJSON": partialKeys,
		"timestamp":       ev.Timestamp.UTC().Format(time.RFC3339),
	})
}

func (l *Neo4jLinker) LinkEventDevice(ctx context.Context, ephemID, deviceID string, confidence float64) error {
	return l.write(ctx, linkEventDeviceCypher, map[string]any{
		"eid":        ephemID,
		"did":        deviceID,
		"confidence": confidence,
	})
}

func (l *Neo4jLinker) LinkDeviceUser(ctx context.Context, deviceID, userID string, confidence float64) error {
	return l.write(ctx, linkDeviceUserCypher, map[string]any{
		"did":        deviceID,
		"uid":        userID,
		"confidence": confidence,
	})
}

func (l *Neo4jLinker) LinkUserHousehold(ctx context.Context, userID, householdID string, confidence float64) error {
	return l.write(ctx, linkUserHouseholdCypher, map[string]any{
		"uid":        userID,
		"hid":        householdID,
		"confidence": confidence,
	})
}

func (l *Neo4jLinker) PruneEvents(ctx context.Context, retention time.Duration) (int64, error) {
	session := l.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() { _ = session.Close(ctx) }()

	deleted, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, pruneEventsCypher, map[string]any{
			"retentionMs": retention.Milliseconds(),
		})
		if err != nil {
			return nil, err
		}

		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}

		return int64(summary.Counters().NodesDeleted()), nil
	})
	if err != nil {
		return 0, err
	}

	return deleted.(int64), nil
}

func (l *Neo4jLinker) Close(ctx context.Context) error {
	return l.driver.Close(ctx)
}
