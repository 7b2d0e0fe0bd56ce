// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"

	"github.com/loan-mgt/fast-pin-pon-sub002/engine/structs"
)

// StaticStore is the view of the cache the dispatcher consumes.
type StaticStore interface {
	// Snapshot returns the most recent committed generation.
	Snapshot() *Snapshot

	// Refresh fetches and commits a new generation.
	Refresh(ctx context.Context) error

	// IsInitialized reports whether at least one refresh has committed.
	IsInitialized() bool
}

// Snapshot is one read-consistent generation of reference data. Every field
// belongs to the same committed refresh. Snapshots are shared between
// readers and must be treated as immutable.
type Snapshot struct {
	Config     *structs.DispatchConfig
	UnitTypes  map[string]*structs.UnitType
	EventTypes map[string]*structs.EventType
	Bases      map[string]*structs.Base
}

// StaticCache holds the backend's reference data between refreshes. Reads
// proceed in parallel; a refresh takes the write side of the lock only for
// the pointer swap, so readers never block on backend I/O and never observe
// a half-applied refresh.
type StaticCache struct {
	gateway Gateway
	logger  log.Logger

	lock        sync.RWMutex
	config      *structs.DispatchConfig
	unitTypes   map[string]*structs.UnitType
	eventTypes  map[string]*structs.EventType
	bases       map[string]*structs.Base
	initialized bool
}

// NewStaticCache returns an empty cache serving the engine defaults until
// the first successful Refresh.
func NewStaticCache(gateway Gateway, logger log.Logger) *StaticCache {
	return &StaticCache{
		gateway:    gateway,
		logger:     logger.Named("cache"),
		config:     structs.DefaultDispatchConfig(),
		unitTypes:  make(map[string]*structs.UnitType),
		eventTypes: make(map[string]*structs.EventType),
		bases:      make(map[string]*structs.Base),
	}
}

// Refresh fetches a full reference bundle and commits it in one swap. On
// any failure the committed state is left exactly as it was, including the
// initialized flag.
func (c *StaticCache) Refresh(ctx context.Context) error {
	defer metrics.MeasureSince([]string{"pinpon", "cache", "refresh"}, time.Now())

	data, err := c.gateway.StaticData(ctx)
	if err != nil {
		metrics.IncrCounter([]string{"pinpon", "cache", "refresh_failed"}, 1)
		return fmt.Errorf("static data refresh failed: %w", err)
	}
	if data == nil || data.Config == nil {
		metrics.IncrCounter([]string{"pinpon", "cache", "refresh_failed"}, 1)
		return errors.New("static data refresh returned no data")
	}

	// never commit nil maps, lookups on the hot path assume presence
	unitTypes := data.UnitTypes
	if unitTypes == nil {
		unitTypes = make(map[string]*structs.UnitType)
	}
	eventTypes := data.EventTypes
	if eventTypes == nil {
		eventTypes = make(map[string]*structs.EventType)
	}
	bases := data.Bases
	if bases == nil {
		bases = make(map[string]*structs.Base)
	}

	c.lock.Lock()
	c.config = data.Config
	c.unitTypes = unitTypes
	c.eventTypes = eventTypes
	c.bases = bases
	c.initialized = true
	c.lock.Unlock()

	metrics.IncrCounter([]string{"pinpon", "cache", "refresh_success"}, 1)
	c.logger.Debug("static data refreshed",
		"unit_types", len(unitTypes),
		"event_types", len(eventTypes),
		"bases", len(bases))
	return nil
}

// Snapshot returns the current committed generation in one bundle.
func (c *StaticCache) Snapshot() *Snapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return &Snapshot{
		Config:     c.config,
		UnitTypes:  c.unitTypes,
		EventTypes: c.eventTypes,
		Bases:      c.bases,
	}
}

// Config returns the committed dispatch configuration, or the defaults
// before the first refresh.
func (c *StaticCache) Config() *structs.DispatchConfig {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.config
}

// UnitTypes returns the committed unit type map keyed by code. The map is
// shared; callers must not mutate it.
func (c *StaticCache) UnitTypes() map[string]*structs.UnitType {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.unitTypes
}

// EventTypes returns the committed event type map keyed by code. The map is
// shared; callers must not mutate it.
func (c *StaticCache) EventTypes() map[string]*structs.EventType {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.eventTypes
}

// Bases returns the committed base map keyed by name. The map is shared;
// callers must not mutate it.
func (c *StaticCache) Bases() map[string]*structs.Base {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.bases
}

// RecommendedUnitTypes returns the recommended unit type codes for an event
// type, or an empty slice when the event type is unknown or carries no
// recommendations.
func (c *StaticCache) RecommendedUnitTypes(eventTypeCode string) []string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	et, ok := c.eventTypes[eventTypeCode]
	if !ok {
		return nil
	}
	return append([]string(nil), et.RecommendedUnitTypes...)
}

// IsInitialized reports whether at least one refresh has committed. It is
// never cleared by later failures.
func (c *StaticCache) IsInitialized() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.initialized
}
