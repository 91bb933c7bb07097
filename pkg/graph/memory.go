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
	"sync"
	"time"

	"github.com/householdiq/bridging/pkg/models"
)

// MemoryLinker mirrors the Neo4j semantics in process. It backs tests and
// deployments that run with USE_NEO4J_BRIDGING disabled.
type MemoryLinker struct {
	mu    sync.Mutex
	nodes map[string]map[string]*MemoryNode
	rels  map[relKey]*MemoryRel
	nowFn func() time.Time
}

// MemoryNode is one labeled node with its behaviorally relevant properties.
type MemoryNode struct {
	Label       string
	ID          string
	PartialKeys string
	Timestamp   string
	CreatedAt   time.Time
	LastSeen    time.Time
}

// MemoryRel is one typed relationship carrying a monotone confidence.
type MemoryRel struct {
	Type       string
	FromID     string
	ToID       string
	Confidence float64
	CreatedAt  time.Time
}

type relKey struct {
	relType string
	from    string
	to      string
}

// NewMemoryLinker builds an empty in-memory graph.
func NewMemoryLinker() *MemoryLinker {
	return &MemoryLinker{
		nodes: map[string]map[string]*MemoryNode{},
		rels:  map[relKey]*MemoryRel{},
		nowFn: time.Now,
	}
}

func (g *MemoryLinker) upsertNode(label, id string) *MemoryNode {
	byID, ok := g.nodes[label]
	if !ok {
		byID = map[string]*MemoryNode{}
		g.nodes[label] = byID
	}

	node, ok := byID[id]
	if !ok {
		node = &MemoryNode{Label: label, ID: id, CreatedAt: g.nowFn()}
		byID[id] = node
	}

	node.LastSeen = g.nowFn()

	return node
}

func (g *MemoryLinker) upsertRel(relType, fromID, toID string, confidence float64) {
	key := relKey{relType: relType, from: fromID, to: toID}

	rel, ok := g.rels[key]
	if !ok {
		g.rels[key] = &MemoryRel{
			Type:       relType,
			FromID:     fromID,
			ToID:       toID,
			Confidence: confidence,
			CreatedAt:  g.nowFn(),
		}

		return
	}

	// Confidence is monotone; a lower repeat score is a no-op.
	if confidence > rel.Confidence {
		rel.Confidence = confidence
	}
}

func (g *MemoryLinker) MergeEvent(_ context.Context, ev *models.EphemeralEvent) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.upsertNode(LabelEvent, ev.EphemID)

	if node.PartialKeys == "" {
		partialKeys := "{}"

		if len(ev.PartialKeys) > 0 {
			raw, err := json.Marshal(ev.PartialKeys)
			if err != nil {
				return err
			}

			partialKeys = string(raw)
		}

		node.PartialKeys = partialKeys
		node.Timestamp = ev.Timestamp.UTC().Format(time.RFC3339)
	}

	return nil
}

func (g *MemoryLinker) LinkEventDevice(_ context.Context, ephemID, deviceID string, confidence float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.upsertNode(LabelDevice, deviceID)
	g.upsertNode(LabelEvent, ephemID)
	g.upsertRel(RelFromDevice, ephemID, deviceID, confidence)

	return nil
}

func (g *MemoryLinker) LinkDeviceUser(_ context.Context, deviceID, userID string, confidence float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.upsertNode(LabelUser, userID)
	g.upsertNode(LabelDevice, deviceID)
	g.upsertRel(RelUsedBy, deviceID, userID, confidence)

	return nil
}

func (g *MemoryLinker) LinkUserHousehold(_ context.Context, userID, householdID string, confidence float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.upsertNode(LabelHousehold, householdID)
	g.upsertNode(LabelUser, userID)
	g.upsertRel(RelMemberOf, userID, householdID, confidence)

	return nil
}

func (g *MemoryLinker) PruneEvents(_ context.Context, retention time.Duration) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.nowFn().Add(-retention)
	events := g.nodes[LabelEvent]

	var pruned int64

	for id, node := range events {
		if !node.CreatedAt.Before(cutoff) {
			continue
		}

		delete(events, id)
		pruned++

		// Detach: drop dangling relationships touching the event.
		for key := range g.rels {
			if key.from == id || key.to == id {
				delete(g.rels, key)
			}
		}
	}

	return pruned, nil
}

func (g *MemoryLinker) Close(context.Context) error {
	return nil
}

// Node returns a copy of the identified node, if present.
func (g *MemoryLinker) Node(label, id string) (MemoryNode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[label][id]
	if !ok {
		return MemoryNode{}, false
	}

	return *node, true
}

// NodeCount returns how many nodes carry the label.
func (g *MemoryLinker) NodeCount(label string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.nodes[label])
}

// Confidence returns the relationship confidence, or found=false.
func (g *MemoryLinker) Confidence(relType, fromID, toID string) (float64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rel, ok := g.rels[relKey{relType: relType, from: fromID, to: toID}]
	if !ok {
		return 0, false
	}

	return rel.Confidence, true
}

// RelationshipsTouching counts relationships with id on either end.
func (g *MemoryLinker) RelationshipsTouching(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := 0

	for key := range g.rels {
		if key.from == id || key.to == id {
			count++
		}
	}

	return count
}

// RelationshipCount returns the total number of relationships.
func (g *MemoryLinker) RelationshipCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.rels)
}

// SetCreatedAt backdates a node; test hook for prune coverage.
func (g *MemoryLinker) SetCreatedAt(label, id string, createdAt time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if node, ok := g.nodes[label][id]; ok {
		node.CreatedAt = createdAt
	}
}
