// Package analytic defines the interface boundary toward the closed-form
// analytical kernels spec.md treats as external collaborators "specified
// only at their interface" (regenerative transient analysis, GSPN
// uniformization, one-general-transient analysis; SPEC_FULL.md §12). No
// concrete kernel is implemented here: this package exists only so sim and
// reachability types have a stable shape to hand off to.
package analytic

import "github.com/pflow-xyz/stpn/reachability"

// TimeSeries is the result shape a Kernel produces: a tick-indexed set of
// named series, mirroring sim.TimeSeriesRewardResult's shape so downstream
// consumers can treat simulation-derived and analytically-derived
// transient results uniformly.
type TimeSeries struct {
	TimeStep float64
	Series   map[string][]float64
}

// Kernel is the boundary a future regenerative/uniformization/one-general-
// transient analytical solver would implement against this repository's
// reachability.SuccessionGraph abstraction.
type Kernel interface {
	Analyze(graph *reachability.SuccessionGraph, horizon float64) (TimeSeries, error)
}
