package reachability

import "github.com/pflow-xyz/stpn/feature"

// Succession is an immutable (parent State | nil, event | nil, child State)
// triple plus its own feature map (spec.md §3). A nil Parent seeds the
// graph root.
type Succession struct {
	Parent   *State
	Event    *Event
	Child    State
	Features feature.Featurizable
}

// IsRoot reports whether this succession seeds a graph (no parent).
func (s *Succession) IsRoot() bool { return s.Parent == nil }

// NewRootSuccession builds the pseudo-succession (nil, nil, s0) that seeds a graph.
func NewRootSuccession(s0 State) *Succession {
	return &Succession{Child: s0, Features: feature.New()}
}

// NewSuccession builds a succession from parent via event to child.
func NewSuccession(parent State, event Event, child State) *Succession {
	return &Succession{Parent: &parent, Event: &event, Child: child, Features: feature.New()}
}
