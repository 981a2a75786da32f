// Package reachability implements the generic succession-graph enumeration
// engine of spec.md §4.1 and §3: a worklist-driven builder that grows a
// directed multigraph of state-equivalence classes using pluggable
// policies, event builders, successor evaluators, processors, and stop
// criteria. It is parameterized over the model type M; the event type is
// fixed to a plain transition/event name (Event), since every concrete
// model in this module (Petri nets) names events that way -- see
// reachability's entry in DESIGN.md for that simplification.
package reachability

import "github.com/pflow-xyz/stpn/feature"

// Event names a firable event emitted by an EnabledEventsBuilder.
type Event = string

// State is any object whose identity, for graph-merging purposes, is the
// equality of its feature map (spec.md §3: "Equality of a State is equality
// of its feature map").
type State struct {
	Features feature.Featurizable
}

// NewState wraps a Featurizable as a State.
func NewState(f feature.Featurizable) State { return State{Features: f} }

// Equal reports feature-map equality.
func (s State) Equal(other State) bool { return s.Features.Equal(other.Features) }

// Hash derives a stable digest consistent with Equal, used to bucket
// candidate matches before the graph's bijection check.
func (s State) Hash() string { return s.Features.Hash() }
