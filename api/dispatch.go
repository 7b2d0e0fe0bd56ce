// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"time"
)

// Dispatch is used to access the backend's dispatch data feeds.
type Dispatch struct {
	client *Client
}

// Dispatch returns a handle on the dispatch endpoints.
func (c *Client) Dispatch() *Dispatch {
	return &Dispatch{client: c}
}

// ConfigItem is one row of the backend's dispatch configuration table.
type ConfigItem struct {
	Key         string     `json:"key"`
	Value       float64    `json:"value"`
	Description string     `json:"description,omitempty"`
	MinValue    *float64   `json:"min_value,omitempty"`
	MaxValue    *float64   `json:"max_value,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// UnitType describes a vehicle class.
type UnitType struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
	SpeedKMH     int      `json:"speed_kmh"`
	MaxCrew      int      `json:"max_crew"`
	Illustration string   `json:"illustration,omitempty"`
}

// EventType describes an emergency class and its recommended unit types.
type EventType struct {
	Code                 string   `json:"code"`
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	DefaultSeverity      int      `json:"default_severity"`
	RecommendedUnitTypes []string `json:"recommended_unit_types"`
}

// Base is the census of one station.
type Base struct {
	Name           string `json:"name"`
	AvailableUnits int    `json:"available_units"`
	TotalUnits     int    `json:"total_units"`
	MinReserve     int    `json:"min_reserve,omitempty"`
}

// StaticDataResponse bundles one generation of reference data.
type StaticDataResponse struct {
	Config     []*ConfigItem `json:"config"`
	UnitTypes  []*UnitType   `json:"unit_types"`
	EventTypes []*EventType  `json:"event_types"`
	Bases      []*Base       `json:"bases"`
}

// StaticData fetches the reference data bundle the engine caches.
func (d *Dispatch) StaticData(ctx context.Context) (*StaticDataResponse, error) {
	var resp StaticDataResponse
	if err := d.client.query(ctx, "/v1/dispatch/static", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PendingIntervention is one open intervention that may still need units.
type PendingIntervention struct {
	InterventionID       string    `json:"intervention_id"`
	EventID              string    `json:"event_id"`
	Status               string    `json:"status"`
	Priority             int       `json:"priority"`
	EventSeverity        int       `json:"event_severity"`
	EventTypeCode        string    `json:"event_type_code"`
	RecommendedUnitTypes []string  `json:"recommended_unit_types"`
	Location             GeoPoint  `json:"location"`
	AssignedUnitsCount   int       `json:"assigned_units_count"`
	CreatedAt            time.Time `json:"created_at"`
}

// PendingInterventionsResponse wraps the pending interventions feed.
type PendingInterventionsResponse struct {
	Interventions []*PendingIntervention `json:"interventions"`
}

// Pending lists the open interventions the periodic sweep should look at.
func (d *Dispatch) Pending(ctx context.Context) ([]*PendingIntervention, error) {
	var resp PendingInterventionsResponse
	if err := d.client.query(ctx, "/v1/dispatch/pending", &resp); err != nil {
		return nil, err
	}
	return resp.Interventions, nil
}
