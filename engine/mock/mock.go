// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package mock provides canned domain objects and a scriptable gateway
// double for engine tests.
package mock

import (
	"time"

	"github.com/hashicorp/go-uuid"

	"github.com/loan-mgt/fast-pin-pon-sub002/engine/structs"
)

func newUUID() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		panic(err)
	}
	return id
}

// StaticData returns a populated reference bundle: three unit types, three
// event types, two bases, and the default dispatch configuration.
func StaticData() *structs.StaticData {
	return &structs.StaticData{
		Config: structs.DefaultDispatchConfig(),
		UnitTypes: map[string]*structs.UnitType{
			"FPT": {
				Code:         "FPT",
				Name:         "Pumper",
				Capabilities: []string{"fire", "rescue"},
				SpeedKMH:     80,
				MaxCrew:      6,
			},
			"VSAV": {
				Code:         "VSAV",
				Name:         "Ambulance",
				Capabilities: []string{"medical"},
				SpeedKMH:     90,
				MaxCrew:      3,
			},
			"EPA": {
				Code:         "EPA",
				Name:         "Ladder",
				Capabilities: []string{"fire", "height"},
				SpeedKMH:     70,
				MaxCrew:      3,
			},
		},
		EventTypes: map[string]*structs.EventType{
			"FIRE": {
				Code:                 "FIRE",
				Name:                 "Structure fire",
				DefaultSeverity:      3,
				RecommendedUnitTypes: []string{"FPT", "EPA"},
			},
			"MEDICAL": {
				Code:                 "MEDICAL",
				Name:                 "Medical emergency",
				DefaultSeverity:      1,
				RecommendedUnitTypes: []string{"VSAV"},
			},
			"ACCIDENT": {
				Code:                 "ACCIDENT",
				Name:                 "Road accident",
				DefaultSeverity:      2,
				RecommendedUnitTypes: []string{"VSAV", "FPT"},
			},
		},
		Bases: map[string]*structs.Base{
			"north": {
				Name:           "north",
				AvailableUnits: 4,
				TotalUnits:     6,
			},
			"south": {
				Name:           "south",
				AvailableUnits: 2,
				TotalUnits:     3,
			},
		},
	}
}

// Candidate returns an idle, available pumper parked at the north base.
func Candidate() *structs.Candidate {
	return &structs.Candidate{
		ID:               "unit-" + newUUID(),
		CallSign:         "FPT-01",
		UnitTypeCode:     "FPT",
		Status:           structs.UnitStatusAvailable,
		HomeBase:         "north",
		Lat:              45.76,
		Lon:              4.83,
		TravelSeconds:    120,
		DistanceMeters:   2100,
		OtherUnitsAtBase: 3,
	}
}

// AssignedCandidate returns a candidate committed to another intervention
// of severity 1.
func AssignedCandidate() *structs.Candidate {
	c := Candidate()
	c.Status = structs.UnitStatusEnRoute
	c.OtherUnitsAtBase = 0
	c.Current = &structs.CurrentAssignment{
		AssignmentID:   "assign-" + newUUID(),
		InterventionID: "intervention-" + newUUID(),
		Severity:       1,
		Priority:       3,
	}
	return c
}

// CandidateSet returns a set of n idle FPT candidates for a severity 3
// fire, with travel times 60, 120, 180, ... in unit ID order.
func CandidateSet(n int) *structs.CandidateSet {
	cs := &structs.CandidateSet{
		InterventionID:       "intervention-" + newUUID(),
		Severity:             3,
		RecommendedUnitTypes: []string{"FPT"},
	}
	for i := 0; i < n; i++ {
		c := Candidate()
		c.TravelSeconds = float64(60 * (i + 1))
		cs.Candidates = append(cs.Candidates, c)
	}
	return cs
}

// PendingIntervention returns a fresh severity 3 fire with nothing
// assigned yet.
func PendingIntervention() *structs.PendingIntervention {
	return &structs.PendingIntervention{
		ID:                   "intervention-" + newUUID(),
		EventID:              "event-" + newUUID(),
		Status:               structs.InterventionStatusCreated,
		Priority:             2,
		Severity:             3,
		EventTypeCode:        "FIRE",
		RecommendedUnitTypes: []string{"FPT", "EPA"},
		Lat:                  45.76,
		Lon:                  4.83,
		AssignedUnits:        0,
		CreatedAt:            time.Now().UTC(),
	}
}
