package petri

import (
	"github.com/pflow-xyz/stpn/calc"
	"github.com/pflow-xyz/stpn/errs"
)

// Builder provides a fluent API for constructing Petri nets, following the
// teacher's chained-builder idiom.
//
// Example:
//
//	net, m0, err := petri.Build().
//	    Place("S", 999).
//	    Place("I", 1).
//	    Place("R", 0).
//	    Transition("infect").
//	    Transition("recover").
//	    Arc("S", "infect", 1).
//	    Arc("I", "infect", 1).
//	    Arc("infect", "I", 2).
//	    Arc("I", "recover", 1).
//	    Arc("recover", "R", 1).
//	    Done()
type Builder struct {
	net     *PetriNet
	initial Marking
	err     error
}

// Build starts a new Builder.
func Build() *Builder {
	return &Builder{net: NewPetriNet(), initial: NewMarking()}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Place adds a place with the given initial token count.
func (b *Builder) Place(name string, initial int) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.net.AddPlace(name); err != nil {
		return b.fail(err)
	}
	b.initial.SetTokens(name, initial)
	return b
}

// Transition adds a bare transition.
func (b *Builder) Transition(name string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.net.AddTransition(name); err != nil {
		return b.fail(err)
	}
	return b
}

// Arc adds a precondition place->transition or postcondition
// transition->place arc, inferred from which endpoint is a known place vs.
// transition.
func (b *Builder) Arc(source, target string, weight int) *Builder {
	if b.err != nil {
		return b
	}
	switch {
	case b.net.HasPlace(source) && b.net.HasTransition(target):
		if err := b.net.AddPrecondition(source, target, weight); err != nil {
			return b.fail(err)
		}
	case b.net.HasTransition(source) && b.net.HasPlace(target):
		if err := b.net.AddPostcondition(source, target, weight); err != nil {
			return b.fail(err)
		}
	default:
		return b.fail(errUnresolvedArc(source, target))
	}
	return b
}

// InhibitorArc adds an inhibitor arc from place to transition.
func (b *Builder) InhibitorArc(place, transition string, weight int) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.net.AddInhibitorArc(place, transition, weight); err != nil {
		return b.fail(err)
	}
	return b
}

// Stochastic attaches a StochasticTransitionFeature to transition.
func (b *Builder) Stochastic(transition string, f StochasticTransitionFeature) *Builder {
	if b.err != nil {
		return b
	}
	if !b.net.HasTransition(transition) {
		return b.fail(errUnknownTransition(transition))
	}
	b.net.Features(transition).Set(TagStochastic, f)
	return b
}

// Priority attaches a Priority feature to transition.
func (b *Builder) Priority(transition string, value int) *Builder {
	if b.err != nil {
		return b
	}
	if !b.net.HasTransition(transition) {
		return b.fail(errUnknownTransition(transition))
	}
	b.net.Features(transition).Set(TagPriority, Priority{Value: value})
	return b
}

// Enabling attaches an EnablingFunction, parsed from src, to transition.
func (b *Builder) Enabling(transition, src string) *Builder {
	if b.err != nil {
		return b
	}
	if !b.net.HasTransition(transition) {
		return b.fail(errUnknownTransition(transition))
	}
	c, err := calc.Compile(src)
	if err != nil {
		return b.fail(err)
	}
	b.net.Features(transition).Set(TagEnabling, EnablingFunction{Expr: c})
	return b
}

// PostUpdater attaches a post-firing token-rewrite assignment list, parsed
// from src, to transition.
func (b *Builder) PostUpdater(transition, src string) *Builder {
	if b.err != nil {
		return b
	}
	if !b.net.HasTransition(transition) {
		return b.fail(errUnknownTransition(transition))
	}
	list, err := calc.ParseAssignments(src)
	if err != nil {
		return b.fail(err)
	}
	b.net.Features(transition).Set(TagPostUpdater, PostUpdater{Assignments: list})
	return b
}

// ResetSet attaches a ResetSet feature naming peer transitions.
func (b *Builder) ResetSet(transition string, peers ...string) *Builder {
	if b.err != nil {
		return b
	}
	if !b.net.HasTransition(transition) {
		return b.fail(errUnknownTransition(transition))
	}
	b.net.Features(transition).Set(TagResetSet, ResetSet{Peers: peers})
	return b
}

// PlaceFlusher attaches a PlaceFlusher feature naming places to zero.
func (b *Builder) PlaceFlusher(transition string, places ...string) *Builder {
	if b.err != nil {
		return b
	}
	if !b.net.HasTransition(transition) {
		return b.fail(errUnknownTransition(transition))
	}
	b.net.Features(transition).Set(TagPlaceFlusher, PlaceFlusher{Places: places})
	return b
}

// Timed attaches a TPN-style [min,max] timer bound to transition.
func (b *Builder) Timed(transition string, min, max float64) *Builder {
	if b.err != nil {
		return b
	}
	if !b.net.HasTransition(transition) {
		return b.fail(errUnknownTransition(transition))
	}
	b.net.Features(transition).Set(TagTimed, TimedTransitionFeature{Min: min, Max: max})
	return b
}

// Queue wires places/transitions for an M/M/c/k queue: c parallel servers,
// capacity k waiting+in-service customers, arrival transition
// "<name>_arrive" and departure transition "<name>_depart" sharing the
// queue place "<name>_queue". c is
// wired in structurally as a constant place "<name>_servers" seeded with c
// tokens and touched by no arc, so a caller's Stochastic depart rate
// expression can reference it by name (e.g.
// "mu * min(<name>_queue, <name>_servers)") to
// make the effective departure rate scale with the lesser of current
// occupancy and server count, per the M/M/c/k property tests of spec.md §8.
// k <= 0 means unbounded queue capacity (no inhibitor arc is added).
func (b *Builder) Queue(name string, c, k int) *Builder {
	if b.err != nil {
		return b
	}
	queuePlace := name + "_queue"
	serversPlace := name + "_servers"
	arrive := name + "_arrive"
	depart := name + "_depart"
	b.Place(queuePlace, 0).
		Place(serversPlace, c).
		Transition(arrive).
		Transition(depart).
		Arc(arrive, queuePlace, 1).
		Arc(queuePlace, depart, 1)
	if b.err != nil {
		return b
	}
	if k > 0 {
		b.InhibitorArc(queuePlace, arrive, k)
	}
	return b
}

// Chain wires a serial pipeline: place[0] -> t0 -> place[1] -> t1 -> ... ->
// place[n-1], auto-naming each transition "<place[i]>_to_<place[i+1]>".
// Places not yet added are created with zero initial tokens; places
// already present are left as-is. Convenience for the deterministic/
// uniform serial-stage scenarios of spec.md §8.
func (b *Builder) Chain(places ...string) *Builder {
	if b.err != nil {
		return b
	}
	for i := 0; i < len(places)-1; i++ {
		from, to := places[i], places[i+1]
		if !b.net.HasPlace(from) {
			b.Place(from, 0)
		}
		if !b.net.HasPlace(to) {
			b.Place(to, 0)
		}
		transition := from + "_to_" + to
		b.Transition(transition).Arc(from, transition, 1).Arc(transition, to, 1)
		if b.err != nil {
			return b
		}
	}
	return b
}

// SIR wires the classic Susceptible-Infected-Recovered epidemic net: places
// "S"/"I"/"R" seeded with susceptible/infected/0 tokens, an "infect"
// transition consuming one S and one I to produce two I, and a "recover"
// transition consuming one I to produce one R. Rate constants, if any, are
// left to the caller via Stochastic. Convenience for spec.md §8's
// deterministic/stochastic epidemic scenarios.
func (b *Builder) SIR(susceptible, infected int) *Builder {
	if b.err != nil {
		return b
	}
	b.Place("S", susceptible).
		Place("I", infected).
		Place("R", 0).
		Transition("infect").
		Transition("recover").
		Arc("S", "infect", 1).
		Arc("I", "infect", 1).
		Arc("infect", "I", 2).
		Arc("I", "recover", 1).
		Arc("recover", "R", 1)
	return b
}

// Done finalizes the net, returning an error if any builder step failed.
func (b *Builder) Done() (*PetriNet, Marking, error) {
	if b.err != nil {
		return nil, nil, b.err
	}
	return b.net, b.initial, nil
}

func errUnknownTransition(name string) error {
	return errs.NewValidationError(name, "unknown transition")
}

func errUnresolvedArc(a, z string) error {
	return errs.NewValidationError(a+"->"+z, "cannot resolve arc direction: neither endpoint pairing is place->transition or transition->place")
}
