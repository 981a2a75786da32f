package petri

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/pflow-xyz/stpn/calc"
	"github.com/pflow-xyz/stpn/errs"
	"github.com/pflow-xyz/stpn/feature"
	"github.com/pflow-xyz/stpn/sampler"
)

// Feature tags for the transition and state features of spec.md §3.
const (
	TagStochastic    feature.Tag = "stochastic"
	TagTimed         feature.Tag = "timed_transition"
	TagEnabling      feature.Tag = "enabling"
	TagPriority      feature.Tag = "priority"
	TagResetSet      feature.Tag = "reset_set"
	TagPlaceFlusher  feature.Tag = "place_flusher"
	TagPostUpdater   feature.Tag = "post_updater"
	TagPetriState    feature.Tag = "petri_state"
	TagTimedSimState feature.Tag = "timed_simulator_state"
	TagTimedState    feature.Tag = "timed_state"      // external symbolic kernel use only
	TagStochasticSt  feature.Tag = "stochastic_state" // external symbolic kernel use only
)

func newTransitionFeatures() *feature.Featurizable {
	f := feature.New()
	return &f
}

// StochasticTransitionFeature carries a sampling distribution and an
// optional marking-dependent clock rate expression. The Open Question of
// whether to keep a separate SamplerFeature is resolved here by folding the
// sampler directly into this feature (no construction site needs the two
// decoupled).
type StochasticTransitionFeature struct {
	Sampler  sampler.Sampler
	RateExpr *calc.Compiled // nil => constant rate 1
}

// Rate evaluates the clock rate against bindings (typically the current marking).
func (f StochasticTransitionFeature) Rate(bindings calc.Bindings) (float64, error) {
	if f.RateExpr == nil {
		return 1, nil
	}
	v, err := f.RateExpr.Eval(bindings)
	if err != nil {
		return 0, err
	}
	return v.AsFloat()
}

// TimedTransitionFeature carries TPN-style [min,max] timer bounds.
type TimedTransitionFeature struct {
	Min, Max float64
}

// EnablingFunction is a boolean expression over place names gating whether
// a transition may fire beyond its structural arcs.
type EnablingFunction struct {
	Expr *calc.Compiled
}

// Evaluate reports whether the enabling function holds against bindings.
func (f EnablingFunction) Evaluate(bindings calc.Bindings) (bool, error) {
	v, err := f.Expr.Eval(bindings)
	if err != nil {
		return false, err
	}
	return v.AsBool()
}

// Equal is structural equality of the underlying expression's AST, NOT the
// buggy reference-equality the design notes call out (spec.md §9: "do NOT
// preserve the source defect").
func (f EnablingFunction) Equal(other EnablingFunction) bool {
	if f.Expr == nil || other.Expr == nil {
		return f.Expr == other.Expr
	}
	return reflect.DeepEqual(f.Expr.Expr(), other.Expr.Expr())
}

// FeatureEqual implements feature.Equaler for PetriStateFeature-style
// structural comparisons when EnablingFunction is embedded elsewhere.
func (f EnablingFunction) FeatureEqual(other any) bool {
	o, ok := other.(EnablingFunction)
	if !ok {
		return false
	}
	return f.Equal(o)
}

// Priority is an integer tie-break among competing immediate transitions;
// absence of this feature is treated as -infinity.
type Priority struct {
	Value int
}

// ResetSet names peer transitions whose clocks are resampled when the
// owning transition fires.
type ResetSet struct {
	Peers []string
}

// PlaceFlusher names places zeroed out (in addition to normal token removal)
// when the owning transition fires.
type PlaceFlusher struct {
	Places []string
}

// PostUpdater is an ordered list of place = expression assignments applied,
// simultaneously, to the successor marking after a firing.
type PostUpdater struct {
	Assignments calc.AssignmentList
}

// Apply evaluates every assignment against pre (the marking prior to the
// update) and returns the place->value map to bulk-assign afterward,
// guaranteeing all expressions observe the same input (spec.md §4.2 step 3).
// Every assigned expression must evaluate to an integer or the call fails
// with a *errs.RuntimeValueError (spec.md §4.4's NonIntegerAssignmentError).
func (u PostUpdater) Apply(pre calc.Bindings) (map[string]int, error) {
	out := make(map[string]int, len(u.Assignments))
	for _, a := range u.Assignments {
		v, err := calc.Eval(a.Expr, pre)
		if err != nil {
			return nil, err
		}
		iv, err := v.AsInt()
		if err != nil {
			return nil, errs.NewRuntimeValueError("post-updater assignment to %q must evaluate to an integer: %v", a.Place, err)
		}
		out[a.Place] = int(iv)
	}
	return out, nil
}

// PetriStateFeature is the core Petri state descriptor: a marking plus the
// classified sets of transitions the firing evaluator maintains.
type PetriStateFeature struct {
	Marking           Marking
	Enabled           map[string]struct{}
	NewlyEnabled      map[string]struct{}
	Persistent        map[string]struct{}
	Disabled          map[string]struct{}
	CheckNewlyEnabled bool
}

// FeatureEqual implements feature.Equaler: markings equal, and if CheckNewlyEnabled
// is set on either side, newly-enabled sets must also match (spec.md §3).
func (s PetriStateFeature) FeatureEqual(other any) bool {
	o, ok := other.(PetriStateFeature)
	if !ok {
		return false
	}
	if !s.Marking.Equal(o.Marking) {
		return false
	}
	if s.CheckNewlyEnabled || o.CheckNewlyEnabled {
		return setEqual(s.NewlyEnabled, o.NewlyEnabled)
	}
	return true
}

// FeatureHash derives a stable digest consistent with FeatureEqual. It
// digests the marking only: two states FeatureEqual treats as equal always
// share a marking, whatever their CheckNewlyEnabled flags.
func (s PetriStateFeature) FeatureHash() string {
	return markingHash(s.Marking)
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func markingHash(m Marking) string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	return setHashWithValues(m, keys)
}

func setHash(s map[string]struct{}) string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ","
		}
		out += k
	}
	return out
}

func setHashWithValues(m Marking, keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	out := ""
	for i, k := range sorted {
		if i > 0 {
			out += ","
		}
		out += k + "=" + strconv.Itoa(m.Get(k))
	}
	return out
}

// TimedSimulatorStateFeature maps each enabled transition to its remaining
// time-to-fire, sampled in the transition's own clock domain.
type TimedSimulatorStateFeature struct {
	TTF map[string]float64
}

// TimedStateFeature and StochasticStateFeature are data-only placeholders
// consumed by the external symbolic analytical kernels (DBM / continuous
// PDF algebra, spec.md §1, §9 -- "specified only at their interface"); the
// core never constructs or inspects their contents.
type TimedStateFeature struct {
	Opaque any
}

type StochasticStateFeature struct {
	Opaque any
}
