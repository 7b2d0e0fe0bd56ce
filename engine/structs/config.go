// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package structs

// Recognized dispatch configuration keys. The backend stores these as rows
// of (key, float value); anything outside this set is dropped on load.
const (
	// ConfigWeightTravelTime multiplies the routed travel time in seconds.
	// The primary cost term.
	ConfigWeightTravelTime = "weight_travel_time"

	// ConfigWeightCoveragePenalty multiplies the reserve shortfall a
	// dispatch would leave at the unit's home base.
	ConfigWeightCoveragePenalty = "weight_coverage_penalty"

	// ConfigWeightCapabilityMatch is the (negative) credit applied when a
	// unit's type is recommended for the event. Units of a type that is
	// not recommended are charged the mirror image.
	ConfigWeightCapabilityMatch = "weight_capability_match"

	// ConfigWeightEnRouteProgress is the credit for units already driving
	// toward the target, so near ties favor motion already spent.
	ConfigWeightEnRouteProgress = "weight_en_route_progress"

	// ConfigWeightPreemptionDelta is the (negative) credit that makes a
	// legal preemption attractive for high severity targets.
	ConfigWeightPreemptionDelta = "weight_preemption_delta"

	// ConfigWeightReassignmentCost is the flat charge for yanking a unit
	// off another intervention, keeping non-preemptive picks preferred
	// when scores are close.
	ConfigWeightReassignmentCost = "weight_reassignment_cost"

	// ConfigMinReservePerBase is the number of available units every base
	// should keep after a dispatch.
	ConfigMinReservePerBase = "min_reserve_per_base"

	// ConfigPreemptionSeverityThreshold is the minimum target severity
	// that permits preempting a unit at all.
	ConfigPreemptionSeverityThreshold = "preemption_severity_threshold"

	// ConfigMaxCandidatesPerDispatch bounds how many candidates a single
	// dispatch decision examines.
	ConfigMaxCandidatesPerDispatch = "max_candidates_per_dispatch"
)

// defaultDispatchConfig holds the engine-side fallbacks used until a refresh
// succeeds, and for any key the backend does not supply.
var defaultDispatchConfig = map[string]float64{
	ConfigWeightTravelTime:            1.0,
	ConfigWeightCoveragePenalty:       0.3,
	ConfigWeightCapabilityMatch:       -50.0,
	ConfigWeightEnRouteProgress:       0.2,
	ConfigWeightPreemptionDelta:       -100.0,
	ConfigWeightReassignmentCost:      60.0,
	ConfigMinReservePerBase:           1,
	ConfigPreemptionSeverityThreshold: 2,
	ConfigMaxCandidatesPerDispatch:    10,
}

// DispatchConfig is the read-mostly map of scoring weights and dispatch
// limits. Values are established at construction and never mutated, so a
// single instance may be shared by any number of scoring goroutines.
type DispatchConfig struct {
	values map[string]float64
}

// DefaultDispatchConfig returns a config carrying only the engine-side
// defaults.
func DefaultDispatchConfig() *DispatchConfig {
	return NewDispatchConfig(nil)
}

// NewDispatchConfig overlays the given values onto the defaults. Keys
// outside the recognized set are ignored so newer backends can add tunables
// without breaking older engines.
func NewDispatchConfig(values map[string]float64) *DispatchConfig {
	c := &DispatchConfig{
		values: make(map[string]float64, len(defaultDispatchConfig)),
	}
	for k, v := range defaultDispatchConfig {
		c.values[k] = v
	}
	for k, v := range values {
		if _, ok := defaultDispatchConfig[k]; ok {
			c.values[k] = v
		}
	}
	return c
}

func (c *DispatchConfig) Copy() *DispatchConfig {
	if c == nil {
		return nil
	}
	nc := &DispatchConfig{
		values: make(map[string]float64, len(c.values)),
	}
	for k, v := range c.values {
		nc.values[k] = v
	}
	return nc
}

// Value returns the raw value for key and whether the key is recognized.
func (c *DispatchConfig) Value(key string) (float64, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *DispatchConfig) floatValue(key string) float64 {
	if v, ok := c.values[key]; ok {
		return v
	}
	return defaultDispatchConfig[key]
}

func (c *DispatchConfig) intValue(key string) int {
	return int(c.floatValue(key))
}

func (c *DispatchConfig) WeightTravelTime() float64 {
	return c.floatValue(ConfigWeightTravelTime)
}

func (c *DispatchConfig) WeightCoveragePenalty() float64 {
	return c.floatValue(ConfigWeightCoveragePenalty)
}

func (c *DispatchConfig) WeightCapabilityMatch() float64 {
	return c.floatValue(ConfigWeightCapabilityMatch)
}

func (c *DispatchConfig) WeightEnRouteProgress() float64 {
	return c.floatValue(ConfigWeightEnRouteProgress)
}

func (c *DispatchConfig) WeightPreemptionDelta() float64 {
	return c.floatValue(ConfigWeightPreemptionDelta)
}

func (c *DispatchConfig) WeightReassignmentCost() float64 {
	return c.floatValue(ConfigWeightReassignmentCost)
}

func (c *DispatchConfig) MinReservePerBase() int {
	return c.intValue(ConfigMinReservePerBase)
}

func (c *DispatchConfig) PreemptionSeverityThreshold() int {
	return c.intValue(ConfigPreemptionSeverityThreshold)
}

func (c *DispatchConfig) MaxCandidatesPerDispatch() int {
	return c.intValue(ConfigMaxCandidatesPerDispatch)
}
