// Package petri implements the Petri-net structural model and firing
// semantics: places, transitions, arcs, markings, enabling, and the firing
// evaluator (spec.md §3-4.3, §4.5).
package petri

import (
	"regexp"

	"github.com/pflow-xyz/stpn/calc"
	"github.com/pflow-xyz/stpn/errs"
	"github.com/pflow-xyz/stpn/feature"
)

var identRe = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*$`)

// Arc is a directed, weighted connection between a place and a transition.
// Inhibitor arcs run place->transition and block firing instead of gating it.
type Arc struct {
	Place        string
	Transition   string
	Multiplicity int
	Inhibitor    bool
}

// PetriNet holds ordered sets of places and transitions plus their arcs
// (spec.md §3: "Ordered sets of Places and Transitions"). Transitions carry
// a Featurizable for the optional features of §3 (stochastic, timed,
// enabling function, priority, reset set, flusher, post-updater).
type PetriNet struct {
	places      []string
	placeIndex  map[string]struct{}
	transitions []string
	transIndex  map[string]struct{}

	pre  map[string][]Arc // transition -> precondition/inhibitor arcs
	post map[string][]Arc // transition -> postcondition arcs

	features map[string]*feature.Featurizable // transition -> its feature map
}

// NewPetriNet returns an empty net.
func NewPetriNet() *PetriNet {
	return &PetriNet{
		placeIndex: make(map[string]struct{}),
		transIndex: make(map[string]struct{}),
		pre:        make(map[string][]Arc),
		post:       make(map[string][]Arc),
		features:   make(map[string]*feature.Featurizable),
	}
}

// AddPlace registers a new place. Fails with *errs.ValidationError if the
// name is malformed or already in use.
func (n *PetriNet) AddPlace(name string) error {
	if !identRe.MatchString(name) {
		return errs.NewValidationError(name, "place name is not a valid identifier")
	}
	if _, exists := n.placeIndex[name]; exists {
		return errs.NewValidationError(name, "place already exists")
	}
	n.placeIndex[name] = struct{}{}
	n.places = append(n.places, name)
	return nil
}

// AddTransition registers a new transition.
func (n *PetriNet) AddTransition(name string) error {
	if !identRe.MatchString(name) {
		return errs.NewValidationError(name, "transition name is not a valid identifier")
	}
	if _, exists := n.transIndex[name]; exists {
		return errs.NewValidationError(name, "transition already exists")
	}
	n.transIndex[name] = struct{}{}
	n.transitions = append(n.transitions, name)
	n.features[name] = newTransitionFeatures()
	return nil
}

// HasPlace reports whether name is a registered place.
func (n *PetriNet) HasPlace(name string) bool { _, ok := n.placeIndex[name]; return ok }

// HasTransition reports whether name is a registered transition.
func (n *PetriNet) HasTransition(name string) bool { _, ok := n.transIndex[name]; return ok }

// Places returns the place names in insertion order.
func (n *PetriNet) Places() []string { return append([]string(nil), n.places...) }

// Transitions returns the transition names in insertion order.
func (n *PetriNet) Transitions() []string { return append([]string(nil), n.transitions...) }

func (n *PetriNet) requirePlace(name string) error {
	if !n.HasPlace(name) {
		return errs.NewValidationError(name, "unknown place")
	}
	return nil
}

func (n *PetriNet) requireTransition(name string) error {
	if !n.HasTransition(name) {
		return errs.NewValidationError(name, "unknown transition")
	}
	return nil
}

func (n *PetriNet) requireMultiplicity(m int) error {
	if m < 1 {
		return errs.NewValidationError("multiplicity", "must be >= 1")
	}
	return nil
}

// AddPrecondition adds a place->transition arc consumed on firing.
func (n *PetriNet) AddPrecondition(place, transition string, multiplicity int) error {
	if err := n.requirePlace(place); err != nil {
		return err
	}
	if err := n.requireTransition(transition); err != nil {
		return err
	}
	if err := n.requireMultiplicity(multiplicity); err != nil {
		return err
	}
	n.pre[transition] = append(n.pre[transition], Arc{Place: place, Transition: transition, Multiplicity: multiplicity})
	return nil
}

// AddInhibitorArc adds a place->transition arc that blocks firing while the
// place holds at least multiplicity tokens.
func (n *PetriNet) AddInhibitorArc(place, transition string, multiplicity int) error {
	if err := n.requirePlace(place); err != nil {
		return err
	}
	if err := n.requireTransition(transition); err != nil {
		return err
	}
	if err := n.requireMultiplicity(multiplicity); err != nil {
		return err
	}
	n.pre[transition] = append(n.pre[transition], Arc{Place: place, Transition: transition, Multiplicity: multiplicity, Inhibitor: true})
	return nil
}

// AddPostcondition adds a transition->place arc produced on firing.
func (n *PetriNet) AddPostcondition(transition, place string, multiplicity int) error {
	if err := n.requireTransition(transition); err != nil {
		return err
	}
	if err := n.requirePlace(place); err != nil {
		return err
	}
	if err := n.requireMultiplicity(multiplicity); err != nil {
		return err
	}
	n.post[transition] = append(n.post[transition], Arc{Place: place, Transition: transition, Multiplicity: multiplicity})
	return nil
}

// Preconditions returns the precondition/inhibitor arcs of transition.
func (n *PetriNet) Preconditions(transition string) []Arc { return n.pre[transition] }

// Postconditions returns the postcondition arcs of transition.
func (n *PetriNet) Postconditions(transition string) []Arc { return n.post[transition] }

// Features returns the mutable feature map attached to transition, creating
// one if the transition has none yet (should not happen for any transition
// registered through AddTransition).
func (n *PetriNet) Features(transition string) *feature.Featurizable {
	f, ok := n.features[transition]
	if !ok {
		f = newTransitionFeatures()
		n.features[transition] = f
	}
	return f
}

// markingBindings adapts a (net, marking) pair to calc.Bindings so that
// enabling functions, post-updaters, and rate expressions can reference bare
// place names (spec.md §6).
type markingBindings struct {
	net     *PetriNet
	marking Marking
}

func (b markingBindings) Lookup(name string) (calc.Value, bool) {
	if !b.net.HasPlace(name) {
		return calc.Value{}, false
	}
	return calc.Int(int64(b.marking.Get(name))), true
}

// Bindings returns a calc.Bindings view of marking against this net's place set.
func (n *PetriNet) Bindings(marking Marking) calc.Bindings {
	return markingBindings{net: n, marking: marking}
}
