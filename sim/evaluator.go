package sim

import "time"

// finalizer is satisfied by any reward's Evaluate-returning concrete type;
// RewardEvaluator and RewardEvaluatorTimeout are themselves generic over
// the result type T so callers keep the reward's native Evaluate shape.
type finalizer[T any] interface {
	Evaluate() T
}

// RewardEvaluator subscribes to seq, counts completed runs, and invokes
// reward.Evaluate() once `runs` have completed (spec.md §4.7).
type RewardEvaluator[T any] struct {
	seq    *Sequencer
	reward finalizer[T]
	target int
	done   int
	subID  int
	result T
	ready  bool
}

// NewRewardEvaluator attaches to seq and counts RunEnd events toward target.
func NewRewardEvaluator[T any](seq *Sequencer, reward finalizer[T], runs int) *RewardEvaluator[T] {
	e := &RewardEvaluator[T]{seq: seq, reward: reward, target: runs}
	e.subID = seq.AddObserver(e.onEvent)
	return e
}

func (e *RewardEvaluator[T]) onEvent(ev Lifecycle) {
	if e.ready || ev.Kind != RunEnd {
		return
	}
	e.done++
	if e.done >= e.target {
		e.seq.RemoveObserver(e.subID)
		e.result = e.reward.Evaluate()
		e.ready = true
	}
}

// GetResult returns the reward's evaluation once the configured number of
// runs has completed; ok is false if Simulate has not yet run that many.
func (e *RewardEvaluator[T]) GetResult() (T, bool) {
	return e.result, e.ready
}

// RewardEvaluatorTimeout behaves like RewardEvaluator but finalizes after a
// wall-clock duration measured from SIMULATION_START rather than a run count
// (spec.md §4.7: "The timeout variant begins measurement at SIMULATION_START").
type RewardEvaluatorTimeout[T any] struct {
	seq     *Sequencer
	reward  finalizer[T]
	timeout time.Duration
	start   time.Time
	subID   int
	result  T
	ready   bool
}

// NewRewardEvaluatorTimeout attaches to seq and finalizes the first time an
// event is observed at or after timeout has elapsed since SimulationStart.
func NewRewardEvaluatorTimeout[T any](seq *Sequencer, reward finalizer[T], timeout time.Duration) *RewardEvaluatorTimeout[T] {
	e := &RewardEvaluatorTimeout[T]{seq: seq, reward: reward, timeout: timeout}
	e.subID = seq.AddObserver(e.onEvent)
	return e
}

func (e *RewardEvaluatorTimeout[T]) onEvent(ev Lifecycle) {
	if e.ready {
		return
	}
	if ev.Kind == SimulationStart {
		e.start = time.Now()
		return
	}
	if !e.start.IsZero() && time.Since(e.start) >= e.timeout {
		e.seq.RemoveObserver(e.subID)
		e.result = e.reward.Evaluate()
		e.ready = true
	}
}

// GetResult returns the reward's evaluation once the timeout has elapsed;
// ok is false otherwise.
func (e *RewardEvaluatorTimeout[T]) GetResult() (T, bool) {
	return e.result, e.ready
}
