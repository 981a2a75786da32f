package sim

import (
	"math/rand"
	"testing"

	"github.com/pflow-xyz/stpn/petri"
)

func TestSymbolicPrefixRewardCountsExactMatches(t *testing.T) {
	net, m0 := buildImmediateChain(t)
	seq := NewSequencer(net, m0, rand.New(rand.NewSource(3)))
	reward := NewSymbolicPrefixReward(seq, "t1", "t2")

	if err := seq.Simulate(5); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	got := reward.Evaluate()
	if got != 1 {
		t.Fatalf("expected every run to match prefix [t1 t2], got ratio %v", got)
	}
}

func TestSymbolicPrefixRewardRejectsWrongPrefix(t *testing.T) {
	net, m0 := buildImmediateChain(t)
	seq := NewSequencer(net, m0, rand.New(rand.NewSource(3)))
	reward := NewSymbolicPrefixReward(seq, "t2", "t1")

	if err := seq.Simulate(4); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if got := reward.Evaluate(); got != 0 {
		t.Fatalf("expected no run to match reversed prefix, got ratio %v", got)
	}
}

func TestTransitionAbsoluteFiringTimeRecordsFirstFiring(t *testing.T) {
	net, m0 := buildImmediateChain(t)
	seq := NewSequencer(net, m0, rand.New(rand.NewSource(3)))
	reward := NewTransitionAbsoluteFiringTime(seq, "t2")

	if err := seq.Simulate(3); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	times := reward.Evaluate()
	if len(times) != 3 {
		t.Fatalf("expected one recorded time per run, got %d", len(times))
	}
}

func TestTransientMarkingProbabilityNoCreditForZeroLengthSojourn(t *testing.T) {
	net, m0 := buildImmediateChain(t)
	seq := NewSequencer(net, m0, rand.New(rand.NewSource(3)))
	target := petri.NewMarking()
	target.SetTokens("a", 1)
	reward := NewTransientMarkingProbability(seq, target, 1.0, 5)

	if err := seq.Simulate(3); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	result := reward.Evaluate()
	probs := result.Series[markingKey(target)]
	for i, p := range probs {
		if p != 0 {
			t.Fatalf("expected zero occupation probability at tick %d for an instantaneous chain, got %v", i, p)
		}
	}
}

func TestSteadyStateMarkingProbabilityWithinUnitInterval(t *testing.T) {
	net, m0 := buildExpExpCycle(t)
	seq := NewSequencer(net, m0, rand.New(rand.NewSource(9)))
	target := petri.NewMarking()
	target.SetTokens("idle", 1)
	reward := NewSteadyStateMarkingProbability(seq, target)

	firings := 0
	seq.AddObserver(func(ev Lifecycle) {
		if ev.Kind == FiringExecuted {
			firings++
			if firings >= 40 {
				seq.Abort()
			}
		}
	})

	if err := seq.Simulate(1); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	ratio := reward.Evaluate()
	if ratio < 0 || ratio > 1 {
		t.Fatalf("expected steady-state ratio within [0,1], got %v", ratio)
	}
}

func TestTimeSeriesRewardResultIsValid(t *testing.T) {
	r := TimeSeriesRewardResult{
		TimeStep: 1,
		Series: map[string][]float64{
			"a": {0.5, 0.3},
			"b": {0.5, 0.7},
		},
	}
	if !r.IsValid(1e-9) {
		t.Fatalf("expected series summing to 1 at every tick to be valid")
	}

	bad := TimeSeriesRewardResult{Series: map[string][]float64{"a": {0.9}}}
	if bad.IsValid(1e-9) {
		t.Fatalf("expected series summing to 0.9 to be invalid")
	}
}
