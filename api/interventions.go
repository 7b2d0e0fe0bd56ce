// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"errors"
	"net/url"
)

// Interventions is used to query and commit dispatch decisions for single
// interventions.
type Interventions struct {
	client *Client
}

// Interventions returns a handle on the intervention endpoints.
func (c *Client) Interventions() *Interventions {
	return &Interventions{client: c}
}

// Candidate is one unit the backend considers reachable for an
// intervention. The current_* fields are null for idle units.
type Candidate struct {
	ID                          string   `json:"id"`
	CallSign                    string   `json:"call_sign"`
	UnitTypeCode                string   `json:"unit_type_code"`
	HomeBase                    string   `json:"home_base"`
	Status                      string   `json:"status"`
	Location                    GeoPoint `json:"location"`
	TravelTimeSeconds           float64  `json:"travel_time_seconds"`
	DistanceMeters              float64  `json:"distance_meters"`
	OtherUnitsAtBase            int      `json:"other_units_at_base"`
	EnRouteToTarget             bool     `json:"en_route_to_target"`
	CurrentAssignmentID         *string  `json:"current_assignment_id"`
	CurrentInterventionID       *string  `json:"current_intervention_id"`
	CurrentInterventionSeverity *int     `json:"current_intervention_severity"`
	CurrentInterventionPriority *int     `json:"current_intervention_priority"`
}

// CandidatesResponse carries the candidates for one intervention along with
// the target severity driving the unit count.
type CandidatesResponse struct {
	InterventionID       string       `json:"intervention_id"`
	EventSeverity        int          `json:"event_severity"`
	RecommendedUnitTypes []string     `json:"recommended_unit_types"`
	Candidates           []*Candidate `json:"candidates"`
}

// Candidates asks the backend for the reachable units for an intervention.
// The backend's ordering is advisory; the engine re-ranks.
func (i *Interventions) Candidates(ctx context.Context, interventionID string) (*CandidatesResponse, error) {
	if interventionID == "" {
		return nil, errors.New("missing intervention ID")
	}
	var resp CandidatesResponse
	err := i.client.query(ctx, "/v1/interventions/"+url.PathEscape(interventionID)+"/candidates", &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AssignmentRequest commits one unit to an intervention.
type AssignmentRequest struct {
	UnitID string `json:"unit_id"`
	Role   string `json:"role"`
}

// AssignmentResponse returns the id of the created assignment.
type AssignmentResponse struct {
	ID string `json:"id"`
}

// Assign commits one unit to the intervention with the given role. The
// backend may reject the assignment; that surfaces as an
// UnexpectedResponseError.
func (i *Interventions) Assign(ctx context.Context, interventionID string, req *AssignmentRequest) (*AssignmentResponse, error) {
	if interventionID == "" {
		return nil, errors.New("missing intervention ID")
	}
	if req == nil || req.UnitID == "" {
		return nil, errors.New("missing unit ID")
	}
	var resp AssignmentResponse
	err := i.client.post(ctx, "/v1/interventions/"+url.PathEscape(interventionID)+"/assignments", req, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
