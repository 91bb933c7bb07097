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
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/householdiq/bridging/pkg/models"
)

const (
	listPluginsSQL = `
SELECT id, plugin_name, plugin_path, enabled
FROM plugin_registry
ORDER BY plugin_name`

	setPluginEnabledSQL = `
INSERT INTO plugin_registry (plugin_name, enabled)
VALUES ($1, $2)
ON CONFLICT (plugin_name) DO UPDATE SET enabled = EXCLUDED.enabled`

	isPluginEnabledSQL = `
SELECT enabled
FROM plugin_registry
WHERE plugin_name = $1`
)

// ListPlugins returns every registered bridging observer row.
func (db *DB) ListPlugins(ctx context.Context) ([]*models.PluginRecord, error) {
	rows, err := db.pool.Query(ctx, listPluginsSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: plugins: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var plugins []*models.PluginRecord

	for rows.Next() {
		plugin := &models.PluginRecord{}

		if err := rows.Scan(&plugin.ID, &plugin.PluginName, &plugin.PluginPath, &plugin.Enabled); err != nil {
			return nil, fmt.Errorf("%w: plugin: %w", ErrFailedToScan, err)
		}

		plugins = append(plugins, plugin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: plugins: %w", ErrFailedToQuery, err)
	}

	return plugins, nil
}

// SetPluginEnabled flips (or registers) the named observer.
func (db *DB) SetPluginEnabled(ctx context.Context, pluginName string, enabled bool) error {
	pluginName = strings.TrimSpace(pluginName)
	if pluginName == "" {
		return ErrPluginNameRequired
	}

	if _, err := db.pool.Exec(ctx, setPluginEnabledSQL, pluginName, enabled); err != nil {
		return fmt.Errorf("%w: plugin %s: %w", ErrFailedToInsert, pluginName, err)
	}

	return nil
}

// IsPluginEnabled reports the registry flag. Unregistered plugins default to
// enabled so built-in observers run before any operator touches the table.
func (db *DB) IsPluginEnabled(ctx context.Context, pluginName string) (bool, error) {
	var enabled bool

	err := db.pool.QueryRow(ctx, isPluginEnabledSQL, pluginName).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}

	if err != nil {
		return false, fmt.Errorf("%w: plugin %s: %w", ErrFailedToQuery, pluginName, err)
	}

	return enabled, nil
}
