// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/loan-mgt/fast-pin-pon-sub002/engine/structs"
)

// RankedCandidate pairs a candidate with its computed cost for one
// intervention.
type RankedCandidate struct {
	Candidate          *structs.Candidate
	Score              float64
	RequiresPreemption bool
}

func (r *RankedCandidate) GoString() string {
	return fmt.Sprintf("<Candidate: %s Score: %0.3f>", r.Candidate.ID, r.Score)
}

// rankCandidates scores a candidate set against one snapshot and returns
// the eligible candidates ordered best first. The examined set is bounded
// by max_candidates_per_dispatch before scoring. Ties resolve by travel
// time, then by unit ID, so equal inputs always rank the same way.
func rankCandidates(cs *structs.CandidateSet, snap *Snapshot, scorer Scorer) []*RankedCandidate {
	candidates := cs.Candidates
	if limit := snap.Config.MaxCandidatesPerDispatch(); limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	sc := NewScoreContext(cs, snap)

	ranked := make([]*RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		score, preempt := scorer.Score(c, sc)
		if math.IsInf(score, 1) {
			continue
		}
		ranked = append(ranked, &RankedCandidate{
			Candidate:          c,
			Score:              score,
			RequiresPreemption: preempt,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Candidate.TravelSeconds != b.Candidate.TravelSeconds {
			return a.Candidate.TravelSeconds < b.Candidate.TravelSeconds
		}
		return a.Candidate.ID < b.Candidate.ID
	})

	return ranked
}
