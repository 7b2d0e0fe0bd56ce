// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package engine

import (
	"math"

	"github.com/hashicorp/go-set/v3"

	"github.com/loan-mgt/fast-pin-pon-sub002/engine/structs"
)

// Disqualified is the sentinel score marking a candidate that must not be
// selected under any circumstances. A single disqualifying condition
// dominates every other term.
var Disqualified = math.Inf(1)

// ScoreContext carries the per-decision inputs shared by every candidate of
// one scoring pass.
type ScoreContext struct {
	// InterventionID is the dispatch target.
	InterventionID string

	// Severity of the target event. Doubles as the unit count goal.
	Severity int

	// Recommended holds the unit type codes recommended for the target's
	// event type. Empty means no recommendation data.
	Recommended *set.Set[string]

	// Snapshot is the cache generation this decision runs against.
	Snapshot *Snapshot
}

// NewScoreContext builds the shared scoring inputs for one candidate set.
func NewScoreContext(cs *structs.CandidateSet, snap *Snapshot) *ScoreContext {
	return &ScoreContext{
		InterventionID: cs.InterventionID,
		Severity:       cs.Severity,
		Recommended:    set.From(cs.RecommendedUnitTypes),
		Snapshot:       snap,
	}
}

// Scorer computes the cost of dispatching one candidate. Implementations
// must be pure: equal inputs produce equal scores, no side effects, no
// clock reads.
type Scorer interface {
	// Score returns the candidate's cost (lower is better, Disqualified
	// excludes it) and whether committing the candidate requires
	// releasing a current assignment first.
	Score(c *structs.Candidate, sc *ScoreContext) (float64, bool)
}

// WeightedScorer is the production scorer: a linear combination of travel
// time, base coverage, capability match, en-route progress, and preemption
// terms, weighted by the cached dispatch configuration.
type WeightedScorer struct{}

func NewWeightedScorer() *WeightedScorer {
	return &WeightedScorer{}
}

func (s *WeightedScorer) Score(c *structs.Candidate, sc *ScoreContext) (float64, bool) {
	cfg := sc.Snapshot.Config

	score := cfg.WeightTravelTime() * c.TravelSeconds
	score += cfg.WeightCoveragePenalty() * coveragePenalty(c, sc.Snapshot)

	// Recommended types pull a unit in, any other type is pushed away by
	// the mirrored amount. Without recommendation data every type scores
	// the same.
	if sc.Recommended != nil && !sc.Recommended.Empty() {
		if sc.Recommended.Contains(c.UnitTypeCode) {
			score += cfg.WeightCapabilityMatch()
		} else {
			score -= cfg.WeightCapabilityMatch()
		}
	}

	// Credit motion already spent toward the target so near-ties resolve
	// in favor of units that are almost there.
	if c.EnRouteToTarget {
		score -= cfg.WeightEnRouteProgress()
	}

	cur := c.Current
	if cur == nil {
		return score, false
	}

	// Already committed to this very intervention: nothing to preempt,
	// but the stale assignment still has to be cycled out before the
	// unit can be re-committed.
	if cur.InterventionID == sc.InterventionID {
		return score, true
	}

	// Preemption gate: the target must reach the severity threshold and
	// must strictly outrank the unit's current intervention.
	if sc.Severity < cfg.PreemptionSeverityThreshold() || cur.Severity >= sc.Severity {
		return Disqualified, false
	}

	score += cfg.WeightPreemptionDelta()
	score += cfg.WeightReassignmentCost()
	return score, true
}

// coveragePenalty is the number of units the candidate's home base would
// fall below its reserve floor if the candidate left now. Only a unit
// actually parked at a known base can hurt coverage.
func coveragePenalty(c *structs.Candidate, snap *Snapshot) float64 {
	if c.Status != structs.UnitStatusAvailable || c.HomeBase == "" {
		return 0
	}
	base, ok := snap.Bases[c.HomeBase]
	if !ok {
		return 0
	}

	floor := snap.Config.MinReservePerBase()
	if base.MinReserve > floor {
		floor = base.MinReserve
	}

	shortfall := floor - c.OtherUnitsAtBase
	if shortfall <= 0 {
		return 0
	}
	return float64(shortfall)
}
