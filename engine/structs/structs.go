// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package structs holds the domain types shared by the dispatch engine, the
// backend gateway, and the agent endpoints. The backend owns the data; these
// types are the engine's working copies of it.
package structs

import (
	"time"
)

const (
	// UnitStatusAvailable indicates a unit parked at (or near) its home base
	// and ready to be dispatched.
	UnitStatusAvailable = "available"

	// UnitStatusEnRoute indicates a unit driving to an intervention.
	UnitStatusEnRoute = "en_route"

	// UnitStatusOnSite indicates a unit working an intervention.
	UnitStatusOnSite = "on_site"

	// UnitStatusReturning indicates a unit driving back to its home base. A
	// returning unit is still assignable.
	UnitStatusReturning = "returning"

	// UnitStatusOutOfService indicates a unit that must never be dispatched.
	UnitStatusOutOfService = "out_of_service"
)

const (
	// AssignmentRoleLead is given to the best scoring unit of a dispatch
	// decision.
	AssignmentRoleLead = "lead"

	// AssignmentRoleSupport is given to every other unit of a dispatch
	// decision.
	AssignmentRoleSupport = "support"
)

const (
	AssignmentStatusDispatched = "dispatched"
	AssignmentStatusArrived    = "arrived"
	AssignmentStatusReleased   = "released"
)

const (
	InterventionStatusCreated   = "created"
	InterventionStatusPlanned   = "planned"
	InterventionStatusEnRoute   = "en_route"
	InterventionStatusOnSite    = "on_site"
	InterventionStatusCompleted = "completed"
)

// UnitType describes a class of vehicle (pumper, ladder, ambulance, ...) and
// the capabilities it brings to an intervention.
type UnitType struct {
	Code         string
	Name         string
	Capabilities []string
	SpeedKMH     int
	MaxCrew      int
}

func (u *UnitType) Copy() *UnitType {
	if u == nil {
		return nil
	}
	nu := *u
	nu.Capabilities = append([]string(nil), u.Capabilities...)
	return &nu
}

// EventType describes a class of emergency and the unit types the doctrine
// recommends sending to it.
type EventType struct {
	Code                 string
	Name                 string
	Description          string
	DefaultSeverity      int
	RecommendedUnitTypes []string
}

func (e *EventType) Copy() *EventType {
	if e == nil {
		return nil
	}
	ne := *e
	ne.RecommendedUnitTypes = append([]string(nil), e.RecommendedUnitTypes...)
	return &ne
}

// Base is a station units call home. AvailableUnits and TotalUnits are the
// backend's census at refresh time; MinReserve is the number of available
// units the base wants to keep parked for its own sector.
type Base struct {
	Name           string
	AvailableUnits int
	TotalUnits     int
	MinReserve     int
}

func (b *Base) Copy() *Base {
	if b == nil {
		return nil
	}
	nb := *b
	return &nb
}

// CurrentAssignment records the intervention a candidate unit is already
// committed to. A candidate carrying one can only be taken by preempting
// that assignment.
type CurrentAssignment struct {
	AssignmentID   string
	InterventionID string

	// Severity of the intervention the unit is currently serving.
	Severity int

	// Priority of the intervention the unit is currently serving.
	Priority int
}

func (c *CurrentAssignment) Copy() *CurrentAssignment {
	if c == nil {
		return nil
	}
	nc := *c
	return &nc
}

// Candidate is one unit the backend considers reachable for an intervention,
// together with the routing estimates the scorer consumes. The engine never
// invents candidates; it only ranks what the backend hands it.
type Candidate struct {
	ID           string
	CallSign     string
	UnitTypeCode string
	Status       string
	HomeBase     string

	// Lat and Lon are the unit's last known position.
	Lat float64
	Lon float64

	// TravelSeconds is the backend's routed travel time estimate from the
	// unit's position to the intervention.
	TravelSeconds float64

	// DistanceMeters is the routed distance matching TravelSeconds.
	DistanceMeters float64

	// OtherUnitsAtBase counts the available units left at the candidate's
	// home base, not counting the candidate itself.
	OtherUnitsAtBase int

	// EnRouteToTarget is set when the unit is already driving toward this
	// intervention's location.
	EnRouteToTarget bool

	// Current is nil for an idle unit. When set the unit is committed
	// elsewhere and selecting it implies a preemption.
	Current *CurrentAssignment
}

func (c *Candidate) Copy() *Candidate {
	if c == nil {
		return nil
	}
	nc := *c
	nc.Current = c.Current.Copy()
	return &nc
}

// AssignedElsewhere returns true when selecting the candidate requires
// releasing an existing assignment first.
func (c *Candidate) AssignedElsewhere() bool {
	return c.Current != nil
}

// CandidateSet is the backend's answer to a candidates query: the
// intervention being served, its severity, the recommended unit types for
// its event type, and the ranked-input units.
type CandidateSet struct {
	InterventionID       string
	Severity             int
	RecommendedUnitTypes []string
	Candidates           []*Candidate
}

// PendingIntervention is one row of the backend's pending interventions
// feed, consumed by the periodic sweep.
type PendingIntervention struct {
	ID                   string
	EventID              string
	Status               string
	Priority             int
	Severity             int
	EventTypeCode        string
	RecommendedUnitTypes []string
	Lat                  float64
	Lon                  float64
	AssignedUnits        int
	CreatedAt            time.Time
}

// NeedsMoreUnits returns true while the intervention has fewer units
// assigned than its severity calls for.
func (p *PendingIntervention) NeedsMoreUnits() bool {
	return p.AssignedUnits < p.Severity
}

// StaticData bundles one coherent generation of the backend's reference
// data. The cache swaps the whole bundle at once so readers never observe a
// half refreshed state.
type StaticData struct {
	Config     *DispatchConfig
	UnitTypes  map[string]*UnitType
	EventTypes map[string]*EventType
	Bases      map[string]*Base
}
