// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
	"github.com/shoenig/test/must"
)

func TestDispatch_StaticData(t *testing.T) {
	ci.Parallel(t)

	body := `{
		"config": [
			{"key": "weight_travel_time", "value": 1.5, "description": "eta multiplier"},
			{"key": "min_reserve_per_base", "value": 2, "min_value": 0, "max_value": 10}
		],
		"unit_types": [
			{"code": "FPT", "name": "Pumper", "capabilities": ["fire"], "speed_kmh": 80, "max_crew": 6}
		],
		"event_types": [
			{"code": "FIRE", "name": "Structure fire", "default_severity": 3, "recommended_unit_types": ["FPT", "EPA"]}
		],
		"bases": [
			{"name": "north", "available_units": 4, "total_units": 6}
		],
		"rows_total": 4
	}`

	var gotPath string
	client := makeTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))

	resp, err := client.Dispatch().StaticData(context.Background())
	must.NoError(t, err)
	must.Eq(t, "/v1/dispatch/static", gotPath)

	must.Len(t, 2, resp.Config)
	must.Eq(t, "weight_travel_time", resp.Config[0].Key)
	must.Eq(t, 1.5, resp.Config[0].Value)
	must.NotNil(t, resp.Config[1].MinValue)
	must.Eq(t, 10.0, *resp.Config[1].MaxValue)

	must.Len(t, 1, resp.UnitTypes)
	must.Eq(t, "FPT", resp.UnitTypes[0].Code)
	must.Eq(t, 80, resp.UnitTypes[0].SpeedKMH)

	must.Len(t, 1, resp.EventTypes)
	must.Eq(t, []string{"FPT", "EPA"}, resp.EventTypes[0].RecommendedUnitTypes)

	must.Len(t, 1, resp.Bases)
	must.Eq(t, 4, resp.Bases[0].AvailableUnits)
}

func TestDispatch_Pending(t *testing.T) {
	ci.Parallel(t)

	body := `{
		"interventions": [
			{
				"intervention_id": "i-1",
				"event_id": "e-1",
				"status": "created",
				"priority": 2,
				"event_severity": 3,
				"event_type_code": "FIRE",
				"recommended_unit_types": ["FPT"],
				"location": {"latitude": 45.76, "longitude": 4.83},
				"assigned_units_count": 1,
				"created_at": "2025-11-02T08:30:00Z"
			}
		]
	}`

	var gotPath string
	client := makeTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))

	pending, err := client.Dispatch().Pending(context.Background())
	must.NoError(t, err)
	must.Eq(t, "/v1/dispatch/pending", gotPath)

	must.Len(t, 1, pending)
	p := pending[0]
	must.Eq(t, "i-1", p.InterventionID)
	must.Eq(t, 3, p.EventSeverity)
	must.Eq(t, 1, p.AssignedUnitsCount)
	must.Eq(t, 45.76, p.Location.Latitude)
	must.False(t, p.CreatedAt.IsZero())
}

func TestDispatch_Pending_Empty(t *testing.T) {
	ci.Parallel(t)

	client := makeTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"interventions": []}`))
	}))

	pending, err := client.Dispatch().Pending(context.Background())
	must.NoError(t, err)
	must.Len(t, 0, pending)
}
