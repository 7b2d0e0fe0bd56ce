// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/loan-mgt/fast-pin-pon-sub002/engine/structs"
)

// AssignCall records one AssignUnit attempt, successful or not.
type AssignCall struct {
	InterventionID string
	UnitID         string
	Role           string
}

// StatusCall records one UpdateUnitStatus attempt.
type StatusCall struct {
	UnitID string
	Status string
}

// Gateway is an in-memory scriptable backend. Reads serve whatever the
// test loaded into the exported fields, writes are recorded instead of
// applied, and any call can be made to fail. It is safe for concurrent
// use, but tests must not mutate the script while the engine is running.
type Gateway struct {
	mu sync.Mutex

	// Data served by the read operations.
	Static        *structs.StaticData
	CandidateSets map[string]*structs.CandidateSet
	Pending       []*structs.PendingIntervention

	// StaticFn, when set, overrides Static and StaticErr entirely.
	StaticFn func(ctx context.Context) (*structs.StaticData, error)

	// Scripted failures. The keyed maps fail only the matching calls:
	// CandidatesErr by intervention ID, AssignErr and StatusErr by unit
	// ID, ReleaseErr by assignment ID.
	StaticErr     error
	CandidatesErr map[string]error
	PendingErr    error
	AssignErr     map[string]error
	ReleaseErr    map[string]error
	StatusErr     map[string]error

	// Recorded calls, in arrival order. Ops interleaves every write as
	// "assign:<unit>", "release:<assignment>" or "status:<unit>" so tests
	// can assert ordering across operations.
	StaticCalls     int
	CandidatesCalls []string
	PendingCalls    int
	Assigns         []*AssignCall
	Releases        []string
	StatusUpdates   []*StatusCall
	Ops             []string

	assignSeq int
}

// NewGateway returns a gateway preloaded with the StaticData fixture and
// no pending interventions.
func NewGateway() *Gateway {
	return &Gateway{
		Static:        StaticData(),
		CandidateSets: make(map[string]*structs.CandidateSet),
		CandidatesErr: make(map[string]error),
		AssignErr:     make(map[string]error),
		ReleaseErr:    make(map[string]error),
		StatusErr:     make(map[string]error),
	}
}

func (g *Gateway) StaticData(ctx context.Context) (*structs.StaticData, error) {
	g.mu.Lock()
	g.StaticCalls++
	fn := g.StaticFn
	static, err := g.Static, g.StaticErr
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if err != nil {
		return nil, err
	}
	return static, nil
}

func (g *Gateway) Candidates(ctx context.Context, interventionID string) (*structs.CandidateSet, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.CandidatesCalls = append(g.CandidatesCalls, interventionID)
	g.Ops = append(g.Ops, "candidates:"+interventionID)
	if err := g.CandidatesErr[interventionID]; err != nil {
		return nil, err
	}
	if cs, ok := g.CandidateSets[interventionID]; ok {
		return cs, nil
	}
	return &structs.CandidateSet{InterventionID: interventionID}, nil
}

func (g *Gateway) PendingInterventions(ctx context.Context) ([]*structs.PendingIntervention, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.PendingCalls++
	if g.PendingErr != nil {
		return nil, g.PendingErr
	}
	return g.Pending, nil
}

func (g *Gateway) AssignUnit(ctx context.Context, interventionID, unitID, role string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Assigns = append(g.Assigns, &AssignCall{
		InterventionID: interventionID,
		UnitID:         unitID,
		Role:           role,
	})
	g.Ops = append(g.Ops, "assign:"+unitID)
	if err := g.AssignErr[unitID]; err != nil {
		return "", err
	}
	g.assignSeq++
	return fmt.Sprintf("assign-%d", g.assignSeq), nil
}

func (g *Gateway) ReleaseAssignment(ctx context.Context, assignmentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Releases = append(g.Releases, assignmentID)
	g.Ops = append(g.Ops, "release:"+assignmentID)
	return g.ReleaseErr[assignmentID]
}

func (g *Gateway) UpdateUnitStatus(ctx context.Context, unitID, status string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.StatusUpdates = append(g.StatusUpdates, &StatusCall{UnitID: unitID, Status: status})
	g.Ops = append(g.Ops, "status:"+unitID)
	return g.StatusErr[unitID]
}
