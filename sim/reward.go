package sim

import (
	"strconv"

	"github.com/pflow-xyz/stpn/petri"
)

// BasicReward handles subscription/auto-unsubscription bookkeeping shared
// by every concrete reward below (spec.md §4.7: "An abstract BasicReward
// base handles subscription and auto-unsubscription"). Each concrete
// reward's own Evaluate method returns a different result shape
// (TimeSeriesRewardResult, a bare float64, a []float64), so unlike the
// enumeration engine's SuccessionProcessor there is no shared Reward
// interface here -- forcing one onto these three distinct evaluate() shapes
// would buy nothing over calling each reward's own method directly.
type BasicReward struct {
	seq   *Sequencer
	subID int
}

// Attach subscribes the reward's handler to seq. Concrete rewards call
// this from their constructor after building their own handler closure.
func (b *BasicReward) Attach(seq *Sequencer, handler func(Lifecycle)) {
	b.seq = seq
	b.subID = seq.AddObserver(handler)
}

// Detach unsubscribes from the Sequencer; concrete rewards call this from
// their Evaluate method once the observation window closes.
func (b *BasicReward) Detach() {
	if b.seq != nil {
		b.seq.RemoveObserver(b.subID)
		b.seq = nil
	}
}

// TimeSeriesRewardResult is a tick-indexed probability series keyed by the
// distinct target markings observed (spec.md §4.7: "TimeSeriesRewardResult").
type TimeSeriesRewardResult struct {
	TimeStep float64
	Series   map[string][]float64 // marking key -> probability per tick
}

// IsValid reports whether, at every tick, the probabilities across all
// series sum to 1 within epsilon (spec.md §4.7).
func (r TimeSeriesRewardResult) IsValid(epsilon float64) bool {
	if len(r.Series) == 0 {
		return true
	}
	var n int
	for _, s := range r.Series {
		if len(s) > n {
			n = len(s)
		}
	}
	for tick := 0; tick < n; tick++ {
		sum := 0.0
		for _, s := range r.Series {
			if tick < len(s) {
				sum += s[tick]
			}
		}
		if diff := sum - 1; diff > epsilon || diff < -epsilon {
			return false
		}
	}
	return true
}

// TransientMarkingProbability tracks, for a fixed target marking, the
// probability the process occupies that marking at each discrete tick
// (spec.md §4.7 item 1).
type TransientMarkingProbability struct {
	BasicReward
	target   petri.Marking
	timeStep float64
	samples  int
	counts   []int64
	runs     int64
}

// NewTransientMarkingProbability attaches the reward to seq.
func NewTransientMarkingProbability(seq *Sequencer, target petri.Marking, timeStep float64, samples int) *TransientMarkingProbability {
	r := &TransientMarkingProbability{target: target, timeStep: timeStep, samples: samples, counts: make([]int64, samples)}
	r.Attach(seq, r.onEvent)
	return r
}

func (r *TransientMarkingProbability) onEvent(ev Lifecycle) {
	switch ev.Kind {
	case FiringExecuted:
		if ev.ParentMarking.Equal(r.target) {
			creditInterval(r.counts, r.samples, r.timeStep, ev.ParentTime, ev.ChildTime)
		}
	case RunEnd:
		r.runs++
	}
}

// creditInterval applies the half-open-interval / boundary-ownership rules
// of spec.md §4.7 item 1 to the sojourn [parentTime, childTime) during
// which the process occupied a tracked marking: every tick k with
// parentTime <= k*timeStep < childTime is credited. A tick that falls
// exactly on a firing instant belongs to the marking entered at that
// instant, so a zero-length sojourn credits nothing.
func creditInterval(counts []int64, samples int, timeStep, parentTime, childTime float64) {
	firstTick := int(parentTime / timeStep)
	if float64(firstTick)*timeStep < parentTime {
		firstTick++
	}
	for tick := firstTick; float64(tick)*timeStep < childTime; tick++ {
		if tick >= 0 && tick < samples {
			counts[tick]++
		}
	}
}

// Evaluate closes the observation window and returns the accumulated
// time series of occupation probabilities for the target marking.
func (r *TransientMarkingProbability) Evaluate() TimeSeriesRewardResult {
	r.Detach()
	probs := make([]float64, r.samples)
	if r.runs > 0 {
		for i, c := range r.counts {
			probs[i] = float64(c) / float64(r.runs)
		}
	}
	return TimeSeriesRewardResult{TimeStep: r.timeStep, Series: map[string][]float64{markingKey(r.target): probs}}
}

func markingKey(m petri.Marking) string {
	out := ""
	first := true
	for _, p := range sortedKeys(m) {
		if m[p] == 0 {
			// absent and zero are the same marking (petri.Marking.Equal)
			continue
		}
		if !first {
			out += ","
		}
		first = false
		out += p + "=" + strconv.Itoa(m[p])
	}
	return out
}

func sortedKeys(m petri.Marking) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic but not alphabetically sorted here on purpose would be
	// wrong for test stability; sort for a stable key.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// TransientMarkingConditionProbability generalizes TransientMarkingProbability
// to a predicate over markings, discovering the set of matching markings
// dynamically as runs proceed (spec.md §4.7 item 2).
type TransientMarkingConditionProbability struct {
	BasicReward
	cond     func(petri.Marking) bool
	timeStep float64
	samples  int
	counts   map[string][]int64
	runs     int64
}

func NewTransientMarkingConditionProbability(seq *Sequencer, cond func(petri.Marking) bool, timeStep float64, samples int) *TransientMarkingConditionProbability {
	r := &TransientMarkingConditionProbability{cond: cond, timeStep: timeStep, samples: samples, counts: make(map[string][]int64)}
	r.Attach(seq, r.onEvent)
	return r
}

func (r *TransientMarkingConditionProbability) onEvent(ev Lifecycle) {
	switch ev.Kind {
	case FiringExecuted:
		if r.cond(ev.ParentMarking) {
			key := markingKey(ev.ParentMarking)
			bucket, ok := r.counts[key]
			if !ok {
				bucket = make([]int64, r.samples)
			}
			creditInterval(bucket, r.samples, r.timeStep, ev.ParentTime, ev.ChildTime)
			r.counts[key] = bucket
		}
	case RunEnd:
		r.runs++
	}
}

func (r *TransientMarkingConditionProbability) Evaluate() TimeSeriesRewardResult {
	r.Detach()
	series := make(map[string][]float64, len(r.counts))
	for key, bucket := range r.counts {
		probs := make([]float64, r.samples)
		if r.runs > 0 {
			for i, c := range bucket {
				probs[i] = float64(c) / float64(r.runs)
			}
		}
		series[key] = probs
	}
	return TimeSeriesRewardResult{TimeStep: r.timeStep, Series: series}
}

// SteadyStateMarkingProbability accumulates cumulative sojourn time in the
// target marking over cumulative total elapsed time across all runs
// (spec.md §4.7 item 3).
type SteadyStateMarkingProbability struct {
	BasicReward
	target petri.Marking

	sojourn float64
	total   float64
}

func NewSteadyStateMarkingProbability(seq *Sequencer, target petri.Marking) *SteadyStateMarkingProbability {
	r := &SteadyStateMarkingProbability{target: target}
	r.Attach(seq, r.onEvent)
	return r
}

func (r *SteadyStateMarkingProbability) onEvent(ev Lifecycle) {
	if ev.Kind != FiringExecuted {
		return
	}
	dt := ev.ChildTime - ev.ParentTime
	if ev.ParentMarking.Equal(r.target) {
		r.sojourn += dt
	}
	r.total += dt
}

// Evaluate returns the ratio of accumulated sojourn time to total elapsed
// time, or 0 if no time elapsed across any run.
func (r *SteadyStateMarkingProbability) Evaluate() float64 {
	r.Detach()
	if r.total == 0 {
		return 0
	}
	return r.sojourn / r.total
}

// SymbolicPrefixReward counts runs whose first k firings match the given
// event-name sequence exactly (spec.md §4.7 item 4).
type SymbolicPrefixReward struct {
	BasicReward
	prefix []string

	matched   []string
	successes int64
	totalRuns int64
}

func NewSymbolicPrefixReward(seq *Sequencer, prefix ...string) *SymbolicPrefixReward {
	r := &SymbolicPrefixReward{prefix: prefix}
	r.Attach(seq, r.onEvent)
	return r
}

func (r *SymbolicPrefixReward) onEvent(ev Lifecycle) {
	switch ev.Kind {
	case RunStart:
		r.matched = nil
	case FiringExecuted:
		if len(r.matched) < len(r.prefix) {
			r.matched = append(r.matched, ev.Transition)
		}
	case RunEnd:
		r.totalRuns++
		if prefixEqual(r.matched, r.prefix) {
			r.successes++
		}
	}
}

func prefixEqual(matched, prefix []string) bool {
	if len(matched) != len(prefix) {
		return false
	}
	for i := range prefix {
		if matched[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Evaluate returns successes/totalRuns.
func (r *SymbolicPrefixReward) Evaluate() float64 {
	r.Detach()
	if r.totalRuns == 0 {
		return 0
	}
	return float64(r.successes) / float64(r.totalRuns)
}

// TransitionAbsoluteFiringTime records, for each run, the absolute time of
// the first firing of the named transition, if any (spec.md §4.7 item 5).
type TransitionAbsoluteFiringTime struct {
	BasicReward
	name string

	seen  bool
	times []float64
}

func NewTransitionAbsoluteFiringTime(seq *Sequencer, name string) *TransitionAbsoluteFiringTime {
	r := &TransitionAbsoluteFiringTime{name: name}
	r.Attach(seq, r.onEvent)
	return r
}

func (r *TransitionAbsoluteFiringTime) onEvent(ev Lifecycle) {
	switch ev.Kind {
	case RunStart:
		r.seen = false
	case FiringExecuted:
		if !r.seen && ev.Transition == r.name {
			r.seen = true
			r.times = append(r.times, ev.ChildTime)
		}
	}
}

// Evaluate returns the list of first-firing times collected so far.
func (r *TransitionAbsoluteFiringTime) Evaluate() []float64 {
	r.Detach()
	return append([]float64(nil), r.times...)
}
