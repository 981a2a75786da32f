package reachability

import "github.com/pflow-xyz/stpn/calc"

// StopCriterion is an observer-stateful predicate evaluated at the local
// (per-child) and global (per-loop) observation points of spec.md §4.1 and
// §4.6. Observe is called for every Notification so a criterion may track
// state (e.g. the last extracted succession) needed by GlobalStop/LocalStop.
type StopCriterion interface {
	Observe(n Notification)
	GlobalStop() bool
	LocalStop(child State) bool
}

// baseStop gives concrete criteria a default no-op Observe/LocalStop so they
// only need to implement what they care about.
type baseStop struct{}

func (baseStop) Observe(Notification) {}
func (baseStop) LocalStop(State) bool { return false }

// AlwaysFalse never stops.
type AlwaysFalse struct{ baseStop }

func (AlwaysFalse) GlobalStop() bool { return false }

// IterationsNumber stops once at least n nodes have been added.
type IterationsNumber struct {
	baseStop
	N     int
	added int
}

func NewIterationsNumber(n int) *IterationsNumber { return &IterationsNumber{N: n} }

func (c *IterationsNumber) Observe(n Notification) {
	if n.Kind == NodeAdded {
		c.added++
	}
}

func (c *IterationsNumber) GlobalStop() bool { return c.added >= c.N }

// EventName stops once the last extracted succession's event equals Name.
type EventName struct {
	baseStop
	Name      string
	triggered bool
}

func NewEventName(name string) *EventName { return &EventName{Name: name} }

func (c *EventName) Observe(n Notification) {
	if n.Kind == Extracted && n.Succession.Event != nil && *n.Succession.Event == c.Name {
		c.triggered = true
	}
}

func (c *EventName) GlobalStop() bool { return c.triggered }

// StatePredicate stops once the last extracted child satisfies Predicate.
type StatePredicate struct {
	baseStop
	Predicate func(State) bool
	triggered bool
}

func NewStatePredicate(pred func(State) bool) *StatePredicate {
	return &StatePredicate{Predicate: pred}
}

func (c *StatePredicate) Observe(n Notification) {
	if n.Kind == Extracted && c.Predicate(n.Succession.Child) {
		c.triggered = true
	}
}

func (c *StatePredicate) GlobalStop() bool { return c.triggered }

// MarkingCondition stops once the last extracted child's marking satisfies
// cond -- a structural predicate or, via FromString, a parsed boolean
// expression over place counts (spec.md §6).
type MarkingCondition struct {
	Cond       func(calc.Bindings) (bool, error)
	observeFn  func(Notification)
	err        error
	triggered  bool
}

// NewMarkingCondition wraps a structural predicate directly.
func NewMarkingCondition(cond func(calc.Bindings) (bool, error)) *MarkingCondition {
	return &MarkingCondition{Cond: cond}
}

// MarkingConditionFromString parses src via the Lello calculator and treats
// it as the structural predicate (spec.md §6's MarkingConditionStopCriterion.fromString).
func MarkingConditionFromString(src string) (*MarkingCondition, error) {
	compiled, err := calc.Compile(src)
	if err != nil {
		return nil, err
	}
	return &MarkingCondition{Cond: func(b calc.Bindings) (bool, error) {
		v, err := calc.Eval(compiled.Expr(), b)
		if err != nil {
			return false, err
		}
		return v.AsBool()
	}}, nil
}

// StateBindings lets a StopCriterion evaluate a MarkingCondition against an
// extracted State; concrete domains (e.g. petri) provide the translation
// from State to calc.Bindings.
type StateBindings func(State) calc.Bindings

func (c *MarkingCondition) Observe(n Notification) {
	if c.observeFn != nil {
		c.observeFn(n)
	}
}

func (c *MarkingCondition) LocalStop(State) bool { return false }

// Err returns the first evaluation error encountered, if any.
func (c *MarkingCondition) Err() error { return c.err }

func (c *MarkingCondition) GlobalStop() bool { return c.triggered }

// Bind installs the State->Bindings translation and wires Observe to
// evaluate Cond against every extracted child.
func (c *MarkingCondition) Bind(toBindings StateBindings) *MarkingCondition {
	c.observeFn = func(n Notification) {
		if n.Kind != Extracted {
			return
		}
		ok, err := c.Cond(toBindings(n.Succession.Child))
		if err != nil {
			c.err = err
			return
		}
		if ok {
			c.triggered = true
		}
	}
	return c
}

// AndStopCriterion is the logical conjunction of its components, fanning
// out notifications to all of them (spec.md §4.6).
type AndStopCriterion struct {
	Criteria []StopCriterion
}

func NewAndStopCriterion(criteria ...StopCriterion) *AndStopCriterion {
	return &AndStopCriterion{Criteria: criteria}
}

func (c *AndStopCriterion) Observe(n Notification) {
	for _, cr := range c.Criteria {
		cr.Observe(n)
	}
}

func (c *AndStopCriterion) GlobalStop() bool {
	for _, cr := range c.Criteria {
		if !cr.GlobalStop() {
			return false
		}
	}
	return len(c.Criteria) > 0
}

func (c *AndStopCriterion) LocalStop(s State) bool {
	for _, cr := range c.Criteria {
		if !cr.LocalStop(s) {
			return false
		}
	}
	return len(c.Criteria) > 0
}
