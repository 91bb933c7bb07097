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

package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	config := &Config{
		Level:  "debug",
		Debug:  true,
		Output: "stdout",
	}

	log, err := New(config)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if log == nil {
		t.Fatal("New should return a logger")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	config := &Config{Level: "loud"}

	if _, err := New(config); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}

func TestSetDebug(t *testing.T) {
	log, err := New(&Config{Level: "info"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	log.SetDebug(true)

	impl, ok := log.(*loggerImpl)
	if !ok {
		t.Fatal("expected loggerImpl")
	}

	if impl.logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level after SetDebug(true), got %v", impl.logger.GetLevel())
	}

	log.SetDebug(false)

	if impl.logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level after SetDebug(false), got %v", impl.logger.GetLevel())
	}
}

func TestWithComponent(t *testing.T) {
	log, err := NewComponentLogger("ingest", nil)
	if err != nil {
		t.Fatalf("Failed to initialize component logger: %v", err)
	}

	// Derived loggers must still satisfy the Logger interface so that
	// packages can hold them in a Logger-typed field.
	var componentLogger Logger = log.WithComponent("bridge")

	impl, ok := componentLogger.(*loggerImpl)
	if !ok {
		t.Fatal("expected loggerImpl")
	}

	if impl.logger.GetLevel() == zerolog.Disabled {
		t.Error("Component logger should not be disabled")
	}
}

func TestWithFieldsReturnsLogger(t *testing.T) {
	log, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	var enriched Logger = log.WithFields(map[string]interface{}{"partner_id": 7})
	if enriched == nil {
		t.Fatal("WithFields should return a valid logger")
	}

	if _, ok := enriched.(*loggerImpl); !ok {
		t.Error("expected loggerImpl")
	}
}

func TestFieldLogger(t *testing.T) {
	log, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	base, ok := log.WithComponent("test").(*loggerImpl)
	if !ok {
		t.Fatal("expected loggerImpl")
	}

	fieldLogger := NewFieldLogger(&base.logger)

	if fieldLogger == nil {
		t.Fatal("FieldLogger should not be nil")
	}

	enrichedLogger := fieldLogger.WithField("test", "value")
	if enrichedLogger == nil {
		t.Error("WithField should return a valid logger")
	}

	fields := map[string]interface{}{
		"key1": "value1",
		"key2": 42,
	}

	enrichedLogger2 := fieldLogger.WithFields(fields)
	if enrichedLogger2 == nil {
		t.Error("WithFields should return a valid logger")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Level == "" {
		t.Error("Default config should have a level set")
	}

	if config.Output == "" {
		t.Error("Default config should have an output set")
	}
}
