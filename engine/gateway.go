// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package engine implements the dispatch decision engine: a refreshable
// cache of backend reference data, a deterministic candidate scorer, the
// dispatch decision loop, and the periodic scheduler driving it. The
// backend remains the source of truth; the engine only decides and
// commits, it never stores.
package engine

import (
	"context"
	"fmt"
	"time"

	log "github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"

	"github.com/loan-mgt/fast-pin-pon-sub002/api"
	"github.com/loan-mgt/fast-pin-pon-sub002/engine/structs"
)

// Gateway is the surface of the backend the engine consumes. All calls are
// synchronous best-effort: a failure is reported to the caller and never
// retried here, the next sweep or callback retries naturally.
type Gateway interface {
	// StaticData fetches the reference bundle the cache holds.
	StaticData(ctx context.Context) (*structs.StaticData, error)

	// Candidates fetches the reachable units for one intervention along
	// with the target severity. The backend's ordering is not trusted.
	Candidates(ctx context.Context, interventionID string) (*structs.CandidateSet, error)

	// PendingInterventions lists open interventions for the periodic
	// sweep.
	PendingInterventions(ctx context.Context) ([]*structs.PendingIntervention, error)

	// AssignUnit commits a unit to an intervention and returns the new
	// assignment ID.
	AssignUnit(ctx context.Context, interventionID, unitID, role string) (string, error)

	// ReleaseAssignment ends an existing assignment.
	ReleaseAssignment(ctx context.Context, assignmentID string) error

	// UpdateUnitStatus overrides a unit's operational status.
	UpdateUnitStatus(ctx context.Context, unitID, status string) error
}

// APIGateway implements Gateway on top of the backend HTTP client.
type APIGateway struct {
	client *api.Client
	logger log.Logger
}

// NewAPIGateway returns a gateway backed by the given client.
func NewAPIGateway(client *api.Client, logger log.Logger) *APIGateway {
	return &APIGateway{
		client: client,
		logger: logger.Named("gateway"),
	}
}

func (g *APIGateway) StaticData(ctx context.Context) (*structs.StaticData, error) {
	defer metrics.MeasureSince([]string{"pinpon", "gateway", "static_data"}, time.Now())

	resp, err := g.client.Dispatch().StaticData(ctx)
	if err != nil {
		metrics.IncrCounter([]string{"pinpon", "gateway", "error"}, 1)
		return nil, fmt.Errorf("failed to fetch static data: %w", err)
	}
	return staticDataFromAPI(resp), nil
}

func (g *APIGateway) Candidates(ctx context.Context, interventionID string) (*structs.CandidateSet, error) {
	defer metrics.MeasureSince([]string{"pinpon", "gateway", "candidates"}, time.Now())

	resp, err := g.client.Interventions().Candidates(ctx, interventionID)
	if err != nil {
		metrics.IncrCounter([]string{"pinpon", "gateway", "error"}, 1)
		return nil, fmt.Errorf("failed to fetch candidates for intervention %q: %w", interventionID, err)
	}

	cs := candidateSetFromAPI(resp)
	if cs.InterventionID == "" {
		cs.InterventionID = interventionID
	}
	g.logger.Trace("fetched candidates", "intervention_id", cs.InterventionID,
		"severity", cs.Severity, "candidates", len(cs.Candidates))
	return cs, nil
}

func (g *APIGateway) PendingInterventions(ctx context.Context) ([]*structs.PendingIntervention, error) {
	defer metrics.MeasureSince([]string{"pinpon", "gateway", "pending"}, time.Now())

	resp, err := g.client.Dispatch().Pending(ctx)
	if err != nil {
		metrics.IncrCounter([]string{"pinpon", "gateway", "error"}, 1)
		return nil, fmt.Errorf("failed to fetch pending interventions: %w", err)
	}

	pending := make([]*structs.PendingIntervention, 0, len(resp))
	for _, p := range resp {
		pending = append(pending, pendingFromAPI(p))
	}
	return pending, nil
}

func (g *APIGateway) AssignUnit(ctx context.Context, interventionID, unitID, role string) (string, error) {
	defer metrics.MeasureSince([]string{"pinpon", "gateway", "assign"}, time.Now())

	resp, err := g.client.Interventions().Assign(ctx, interventionID, &api.AssignmentRequest{
		UnitID: unitID,
		Role:   role,
	})
	if err != nil {
		metrics.IncrCounter([]string{"pinpon", "gateway", "error"}, 1)
		return "", fmt.Errorf("failed to assign unit %q to intervention %q: %w", unitID, interventionID, err)
	}
	return resp.ID, nil
}

func (g *APIGateway) ReleaseAssignment(ctx context.Context, assignmentID string) error {
	defer metrics.MeasureSince([]string{"pinpon", "gateway", "release"}, time.Now())

	if err := g.client.Assignments().Release(ctx, assignmentID); err != nil {
		metrics.IncrCounter([]string{"pinpon", "gateway", "error"}, 1)
		return fmt.Errorf("failed to release assignment %q: %w", assignmentID, err)
	}
	return nil
}

func (g *APIGateway) UpdateUnitStatus(ctx context.Context, unitID, status string) error {
	defer metrics.MeasureSince([]string{"pinpon", "gateway", "unit_status"}, time.Now())

	if err := g.client.Units().UpdateStatus(ctx, unitID, status); err != nil {
		metrics.IncrCounter([]string{"pinpon", "gateway", "error"}, 1)
		return fmt.Errorf("failed to update status of unit %q: %w", unitID, err)
	}
	return nil
}

// staticDataFromAPI converts the wire bundle into the cache's domain form.
// Rows with an empty code are dropped rather than keyed on "".
func staticDataFromAPI(resp *api.StaticDataResponse) *structs.StaticData {
	values := make(map[string]float64, len(resp.Config))
	for _, item := range resp.Config {
		if item.Key == "" {
			continue
		}
		values[item.Key] = item.Value
	}

	sd := &structs.StaticData{
		Config:     structs.NewDispatchConfig(values),
		UnitTypes:  make(map[string]*structs.UnitType, len(resp.UnitTypes)),
		EventTypes: make(map[string]*structs.EventType, len(resp.EventTypes)),
		Bases:      make(map[string]*structs.Base, len(resp.Bases)),
	}

	for _, ut := range resp.UnitTypes {
		if ut.Code == "" {
			continue
		}
		sd.UnitTypes[ut.Code] = &structs.UnitType{
			Code:         ut.Code,
			Name:         ut.Name,
			Capabilities: append([]string(nil), ut.Capabilities...),
			SpeedKMH:     ut.SpeedKMH,
			MaxCrew:      ut.MaxCrew,
		}
	}
	for _, et := range resp.EventTypes {
		if et.Code == "" {
			continue
		}
		sd.EventTypes[et.Code] = &structs.EventType{
			Code:                 et.Code,
			Name:                 et.Name,
			Description:          et.Description,
			DefaultSeverity:      et.DefaultSeverity,
			RecommendedUnitTypes: append([]string(nil), et.RecommendedUnitTypes...),
		}
	}
	for _, b := range resp.Bases {
		if b.Name == "" {
			continue
		}
		sd.Bases[b.Name] = &structs.Base{
			Name:           b.Name,
			AvailableUnits: b.AvailableUnits,
			TotalUnits:     b.TotalUnits,
			MinReserve:     b.MinReserve,
		}
	}
	return sd
}

func candidateSetFromAPI(resp *api.CandidatesResponse) *structs.CandidateSet {
	cs := &structs.CandidateSet{
		InterventionID:       resp.InterventionID,
		Severity:             resp.EventSeverity,
		RecommendedUnitTypes: append([]string(nil), resp.RecommendedUnitTypes...),
		Candidates:           make([]*structs.Candidate, 0, len(resp.Candidates)),
	}
	for _, c := range resp.Candidates {
		cs.Candidates = append(cs.Candidates, candidateFromAPI(c))
	}
	return cs
}

func candidateFromAPI(c *api.Candidate) *structs.Candidate {
	cand := &structs.Candidate{
		ID:               c.ID,
		CallSign:         c.CallSign,
		UnitTypeCode:     c.UnitTypeCode,
		Status:           c.Status,
		HomeBase:         c.HomeBase,
		Lat:              c.Location.Latitude,
		Lon:              c.Location.Longitude,
		TravelSeconds:    c.TravelTimeSeconds,
		DistanceMeters:   c.DistanceMeters,
		OtherUnitsAtBase: c.OtherUnitsAtBase,
		EnRouteToTarget:  c.EnRouteToTarget,
	}

	if c.CurrentAssignmentID != nil {
		cur := &structs.CurrentAssignment{
			AssignmentID: *c.CurrentAssignmentID,
		}
		if c.CurrentInterventionID != nil {
			cur.InterventionID = *c.CurrentInterventionID
		}
		if c.CurrentInterventionSeverity != nil {
			cur.Severity = *c.CurrentInterventionSeverity
		}
		if c.CurrentInterventionPriority != nil {
			cur.Priority = *c.CurrentInterventionPriority
		}
		cand.Current = cur
	}
	return cand
}

func pendingFromAPI(p *api.PendingIntervention) *structs.PendingIntervention {
	return &structs.PendingIntervention{
		ID:                   p.InterventionID,
		EventID:              p.EventID,
		Status:               p.Status,
		Priority:             p.Priority,
		Severity:             p.EventSeverity,
		EventTypeCode:        p.EventTypeCode,
		RecommendedUnitTypes: append([]string(nil), p.RecommendedUnitTypes...),
		Lat:                  p.Location.Latitude,
		Lon:                  p.Location.Longitude,
		AssignedUnits:        p.AssignedUnitsCount,
		CreatedAt:            p.CreatedAt,
	}
}
