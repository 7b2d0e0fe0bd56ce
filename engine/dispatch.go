// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
	multierror "github.com/hashicorp/go-multierror"

	"github.com/loan-mgt/fast-pin-pon-sub002/engine/structs"
)

// AssignedUnit is one successfully committed unit of a dispatch decision.
type AssignedUnit struct {
	Candidate    *structs.Candidate
	Role         string
	AssignmentID string
	Score        float64
	Preempted    bool
}

// Sweeper is the slice of the dispatcher the scheduler drives.
type Sweeper interface {
	PeriodicDispatch(ctx context.Context) (int, error)
}

// Dispatcher makes dispatch decisions: fetch candidates, rank them, commit
// the winners through the gateway. It holds no state of its own; every
// decision derives from the current backend data plus the cache snapshot.
type Dispatcher struct {
	gateway Gateway
	cache   StaticStore
	scorer  Scorer
	logger  log.Logger
}

// NewDispatcher returns a dispatcher using the production weighted scorer.
func NewDispatcher(gateway Gateway, cache StaticStore, logger log.Logger) *Dispatcher {
	return &Dispatcher{
		gateway: gateway,
		cache:   cache,
		scorer:  NewWeightedScorer(),
		logger:  logger.Named("dispatch"),
	}
}

// DispatchForIntervention runs one dispatch decision: fetch candidates,
// rank them, and commit the top min(severity, eligible) units in score
// order. Committed units are returned; a candidate that fails to commit is
// logged and skipped, it never aborts the decision.
func (d *Dispatcher) DispatchForIntervention(ctx context.Context, interventionID string) ([]*AssignedUnit, error) {
	defer metrics.MeasureSince([]string{"pinpon", "dispatch", "decide"}, time.Now())

	if interventionID == "" {
		return nil, errors.New("missing intervention ID")
	}

	cs, err := d.gateway.Candidates(ctx, interventionID)
	if err != nil {
		d.logger.Warn("failed to fetch candidates", "intervention_id", interventionID, "error", err)
		return nil, err
	}
	if len(cs.Candidates) == 0 {
		d.logger.Debug("no candidates for intervention", "intervention_id", interventionID)
		return nil, nil
	}

	snap := d.cache.Snapshot()
	ranked := rankCandidates(cs, snap, d.scorer)
	if len(ranked) == 0 {
		d.logger.Debug("no eligible candidates after scoring",
			"intervention_id", interventionID, "examined", len(cs.Candidates))
		return nil, nil
	}

	k := cs.Severity
	if len(ranked) < k {
		k = len(ranked)
	}

	assigned := make([]*AssignedUnit, 0, k)
	for i := 0; i < k; i++ {
		rc := ranked[i]

		// the role rides on the ranked position, not the commit count
		role := structs.AssignmentRoleSupport
		if i == 0 {
			role = structs.AssignmentRoleLead
		}

		au, err := d.commit(ctx, cs.InterventionID, rc, role)
		if err != nil {
			d.logger.Warn("failed to commit candidate",
				"intervention_id", cs.InterventionID,
				"unit_id", rc.Candidate.ID,
				"role", role,
				"error", err)
			continue
		}
		d.logger.Debug("unit assigned",
			"intervention_id", cs.InterventionID,
			"unit_id", rc.Candidate.ID,
			"role", role,
			"score", rc.Score,
			"travel_seconds", rc.Candidate.TravelSeconds,
			"distance_meters", rc.Candidate.DistanceMeters)
		assigned = append(assigned, au)
	}

	metrics.IncrCounter([]string{"pinpon", "dispatch", "assigned"}, float32(len(assigned)))
	d.logger.Info("dispatch decision committed",
		"intervention_id", cs.InterventionID,
		"severity", cs.Severity,
		"eligible", len(ranked),
		"assigned", len(assigned))
	return assigned, nil
}

// commit performs the release-then-assign pair for one ranked candidate.
// Release always precedes assignment.
func (d *Dispatcher) commit(ctx context.Context, interventionID string, rc *RankedCandidate, role string) (*AssignedUnit, error) {
	c := rc.Candidate

	if rc.RequiresPreemption {
		if err := d.gateway.ReleaseAssignment(ctx, c.Current.AssignmentID); err != nil {
			metrics.IncrCounter([]string{"pinpon", "dispatch", "release_failed"}, 1)
			return nil, fmt.Errorf("preemption release failed: %w", err)
		}
		metrics.IncrCounter([]string{"pinpon", "dispatch", "preempted"}, 1)
		d.logger.Info("preempted assignment",
			"unit_id", c.ID,
			"assignment_id", c.Current.AssignmentID,
			"from_intervention_id", c.Current.InterventionID,
			"to_intervention_id", interventionID)
	}

	assignmentID, err := d.gateway.AssignUnit(ctx, interventionID, c.ID, role)
	if err != nil {
		metrics.IncrCounter([]string{"pinpon", "dispatch", "assign_failed"}, 1)
		if rc.RequiresPreemption {
			// The unit was freed but not re-committed. Hand it back to
			// the available pool so the next sweep can pick it up.
			if serr := d.gateway.UpdateUnitStatus(ctx, c.ID, structs.UnitStatusAvailable); serr != nil {
				d.logger.Warn("failed to reset unit status after half-committed preemption",
					"unit_id", c.ID, "error", serr)
			}
		}
		return nil, fmt.Errorf("assignment failed: %w", err)
	}

	return &AssignedUnit{
		Candidate:    c,
		Role:         role,
		AssignmentID: assignmentID,
		Score:        rc.Score,
		Preempted:    rc.RequiresPreemption,
	}, nil
}

// PeriodicDispatch sweeps every pending intervention that still needs
// units and returns the total count of units assigned. Per-intervention
// failures are collected, never fatal to the rest of the sweep.
func (d *Dispatcher) PeriodicDispatch(ctx context.Context) (int, error) {
	defer metrics.MeasureSince([]string{"pinpon", "dispatch", "sweep"}, time.Now())

	// An uninitialized cache would score with bare defaults; hydrate once
	// before deciding. Failure is not fatal, defaults still work.
	if !d.cache.IsInitialized() {
		if err := d.cache.Refresh(ctx); err != nil {
			d.logger.Warn("static data cache not initialized and refresh failed", "error", err)
		}
	}

	pending, err := d.gateway.PendingInterventions(ctx)
	if err != nil {
		return 0, err
	}

	var mErr multierror.Error
	total := 0
	examined := 0
	for _, p := range pending {
		if !p.NeedsMoreUnits() {
			continue
		}
		examined++
		assigned, err := d.DispatchForIntervention(ctx, p.ID)
		if err != nil {
			_ = multierror.Append(&mErr, fmt.Errorf("intervention %s: %w", p.ID, err))
			continue
		}
		total += len(assigned)
	}

	d.logger.Debug("periodic sweep complete",
		"pending", len(pending),
		"examined", examined,
		"assigned", total,
		"errors", len(mErr.Errors))
	return total, mErr.ErrorOrNil()
}
