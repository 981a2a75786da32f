package reachability

import (
	"github.com/pflow-xyz/stpn/calc"
	"github.com/pflow-xyz/stpn/feature"
	"github.com/pflow-xyz/stpn/petri"
)

// PetriState wraps a *petri.PetriStateFeature into a reachability.State,
// storing it under petri.TagPetriState so PetriEventsBuilder/PetriSuccessorEvaluator
// can recover it on the way back out.
func PetriState(s *petri.PetriStateFeature) State {
	f := feature.New()
	f.Set(petri.TagPetriState, *s)
	return NewState(f)
}

// PetriStateOf recovers the *petri.PetriStateFeature carried by s, if any.
func PetriStateOf(s State) (*petri.PetriStateFeature, bool) {
	v, ok := s.Features.Get(petri.TagPetriState)
	if !ok {
		return nil, false
	}
	psf, ok := v.(petri.PetriStateFeature)
	if !ok {
		return nil, false
	}
	return &psf, true
}

// PetriEventsBuilder lists the transitions enabled at a State's marking,
// restricted to those with maximal Priority when priorities are in use
// (spec.md §4.3).
type PetriEventsBuilder struct {
	UsePriority bool
}

func (b PetriEventsBuilder) Build(net *petri.PetriNet, s State) ([]Event, error) {
	psf, ok := PetriStateOf(s)
	if !ok {
		return nil, nil
	}
	enabled, err := net.Enabled(psf.Marking)
	if err != nil {
		return nil, err
	}
	if b.UsePriority {
		enabled = net.MaxPriority(enabled)
	}
	events := make([]Event, 0, len(enabled))
	for _, t := range enabled {
		events = append(events, Event(t))
	}
	return events, nil
}

// PetriSuccessorEvaluator fires event against parent's marking via
// petri.PetriNet.Fire, wrapping the result as a reachability.Succession.
type PetriSuccessorEvaluator struct{}

func (PetriSuccessorEvaluator) Evaluate(net *petri.PetriNet, parent State, event Event) (*Succession, error) {
	psf, ok := PetriStateOf(parent)
	if !ok {
		return nil, nil
	}
	next, err := net.Fire(psf, string(event))
	if err != nil {
		return nil, err
	}
	child := PetriState(next)
	return NewSuccession(parent, event, child), nil
}

// NewPetriEnumerator builds an Enumerator[*petri.PetriNet] wired to fire
// transitions via net.Fire and enumerate the full enabled set at each
// marking (no priority restriction). Callers wanting priority-restricted
// expansion should set Events: PetriEventsBuilder{UsePriority: true} on the
// returned Enumerator before calling Analyze.
func NewPetriEnumerator(net *petri.PetriNet) *Enumerator[*petri.PetriNet] {
	return NewEnumerator[*petri.PetriNet](net, PetriEventsBuilder{}, PetriSuccessorEvaluator{})
}

// MarkingBindingsOf adapts PetriStateOf into the StateBindings shape
// MarkingCondition.Bind expects.
func MarkingBindingsOf(net *petri.PetriNet) StateBindings {
	return func(s State) calc.Bindings {
		psf, ok := PetriStateOf(s)
		if !ok {
			return net.Bindings(petri.NewMarking())
		}
		return net.Bindings(psf.Marking)
	}
}
