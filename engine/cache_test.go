// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shoenig/test/must"

	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
	"github.com/loan-mgt/fast-pin-pon-sub002/engine/mock"
	"github.com/loan-mgt/fast-pin-pon-sub002/engine/structs"
	"github.com/loan-mgt/fast-pin-pon-sub002/helper/testlog"
)

func TestStaticCache_DefaultsBeforeRefresh(t *testing.T) {
	ci.Parallel(t)

	cache := NewStaticCache(mock.NewGateway(), testlog.HCLogger(t))

	must.False(t, cache.IsInitialized())
	must.Eq(t, 1.0, cache.Config().WeightTravelTime())
	must.MapEmpty(t, cache.UnitTypes())
	must.MapEmpty(t, cache.EventTypes())
	must.MapEmpty(t, cache.Bases())
	must.Nil(t, cache.RecommendedUnitTypes("FIRE"))

	snap := cache.Snapshot()
	must.NotNil(t, snap.Config)
	must.NotNil(t, snap.UnitTypes)
	must.NotNil(t, snap.Bases)
}

func TestStaticCache_Refresh(t *testing.T) {
	ci.Parallel(t)

	gw := mock.NewGateway()
	cache := NewStaticCache(gw, testlog.HCLogger(t))

	must.NoError(t, cache.Refresh(context.Background()))
	must.Eq(t, 1, gw.StaticCalls)
	must.True(t, cache.IsInitialized())

	must.NotNil(t, cache.UnitTypes()["FPT"])
	must.NotNil(t, cache.EventTypes()["MEDICAL"])
	must.NotNil(t, cache.Bases()["north"])
	must.Eq(t, []string{"FPT", "EPA"}, cache.RecommendedUnitTypes("FIRE"))
}

func TestStaticCache_RecommendedUnitTypesCopies(t *testing.T) {
	ci.Parallel(t)

	cache := NewStaticCache(mock.NewGateway(), testlog.HCLogger(t))
	must.NoError(t, cache.Refresh(context.Background()))

	got := cache.RecommendedUnitTypes("FIRE")
	got[0] = "mutated"
	must.Eq(t, []string{"FPT", "EPA"}, cache.RecommendedUnitTypes("FIRE"))
}

func TestStaticCache_RefreshFailurePreservesState(t *testing.T) {
	ci.Parallel(t)

	gw := mock.NewGateway()
	gw.Static.Config = structs.NewDispatchConfig(map[string]float64{
		structs.ConfigWeightTravelTime: 2.0,
	})
	cache := NewStaticCache(gw, testlog.HCLogger(t))
	must.NoError(t, cache.Refresh(context.Background()))

	gw.StaticErr = errors.New("backend down")
	err := cache.Refresh(context.Background())
	must.ErrorContains(t, err, "static data refresh failed")
	must.ErrorContains(t, err, "backend down")

	// the committed generation, including the initialized flag, survives
	must.True(t, cache.IsInitialized())
	must.Eq(t, 2.0, cache.Config().WeightTravelTime())
	must.NotNil(t, cache.UnitTypes()["FPT"])
	must.Eq(t, []string{"FPT", "EPA"}, cache.RecommendedUnitTypes("FIRE"))
}

func TestStaticCache_RefreshNoData(t *testing.T) {
	ci.Parallel(t)

	gw := mock.NewGateway()
	gw.StaticFn = func(ctx context.Context) (*structs.StaticData, error) {
		return nil, nil
	}
	cache := NewStaticCache(gw, testlog.HCLogger(t))

	err := cache.Refresh(context.Background())
	must.ErrorContains(t, err, "returned no data")
	must.False(t, cache.IsInitialized())
}

func TestStaticCache_RefreshNilMaps(t *testing.T) {
	ci.Parallel(t)

	gw := mock.NewGateway()
	gw.StaticFn = func(ctx context.Context) (*structs.StaticData, error) {
		return &structs.StaticData{Config: structs.DefaultDispatchConfig()}, nil
	}
	cache := NewStaticCache(gw, testlog.HCLogger(t))

	must.NoError(t, cache.Refresh(context.Background()))
	must.True(t, cache.IsInitialized())
	must.NotNil(t, cache.UnitTypes())
	must.NotNil(t, cache.EventTypes())
	must.NotNil(t, cache.Bases())
}

// TestStaticCache_SnapshotConsistency hammers the cache with concurrent
// refreshes while readers assert every snapshot carries fields of a single
// generation.
func TestStaticCache_SnapshotConsistency(t *testing.T) {
	ci.Parallel(t)

	var gen atomic.Int64
	gw := mock.NewGateway()
	gw.StaticFn = func(ctx context.Context) (*structs.StaticData, error) {
		g := int(gen.Add(1))
		return &structs.StaticData{
			Config: structs.NewDispatchConfig(map[string]float64{
				structs.ConfigWeightTravelTime: float64(g),
			}),
			UnitTypes: map[string]*structs.UnitType{
				"FPT": {Code: "FPT", MaxCrew: g},
			},
			EventTypes: map[string]*structs.EventType{
				"FIRE": {Code: "FIRE", DefaultSeverity: g},
			},
			Bases: map[string]*structs.Base{
				"north": {Name: "north", MinReserve: g},
			},
		}, nil
	}

	cache := NewStaticCache(gw, testlog.HCLogger(t))
	must.NoError(t, cache.Refresh(context.Background()))

	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stopCh:
					return
				default:
				}
				snap := cache.Snapshot()
				g := int(snap.Config.WeightTravelTime())
				if snap.UnitTypes["FPT"].MaxCrew != g ||
					snap.EventTypes["FIRE"].DefaultSeverity != g ||
					snap.Bases["north"].MinReserve != g {
					t.Errorf("snapshot mixes generations around %d", g)
					return
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		must.NoError(t, cache.Refresh(context.Background()))
	}
	close(stopCh)
	wg.Wait()
}
