// Package sim implements the stochastic simulation kernel (spec.md §4.7):
// a Sequencer that runs independent Monte-Carlo firing traces over a
// PetriNet, emitting lifecycle events consumed by Rewards.
package sim

import "github.com/pflow-xyz/stpn/petri"

// LifecycleKind names a point in the Sequencer's run, in emission order:
// SimulationStart, {RunStart, FiringExecuted*, RunEnd}*, SimulationEnd.
type LifecycleKind int

const (
	SimulationStart LifecycleKind = iota
	RunStart
	FiringExecuted
	RunEnd
	SimulationEnd
)

// Lifecycle is fanned out synchronously to Sequencer observers (both the
// simulation-wide set and, where applicable, the current run's set).
type Lifecycle struct {
	Kind LifecycleKind

	Run  int     // current run number, valid from RunStart onward
	Time float64 // absolute simulation time within the current run

	// Marking is the run's initial marking, valid only on RunStart.
	Marking petri.Marking

	// Valid only for FiringExecuted.
	Transition    string
	ParentTime    float64 // absolute time immediately before this firing
	ChildTime     float64 // absolute time immediately after this firing (== Time)
	ParentMarking petri.Marking
	ChildMarking  petri.Marking
}
