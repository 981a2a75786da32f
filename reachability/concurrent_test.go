package reachability

import (
	"testing"

	"github.com/pflow-xyz/stpn/petri"
)

func TestAnalyzeConcurrentRunsIndependentSweepsConcurrently(t *testing.T) {
	net, _ := buildParallelNet(t)

	sweep := []int{0, 1, 2}
	graphs, err := AnalyzeConcurrent(len(sweep), func(i int) (*Enumerator[*petri.PetriNet], State) {
		m0 := petri.NewMarking()
		m0.SetTokens("p1", sweep[i])
		m0.SetTokens("p2", 1)
		init, err := net.InitialState(m0, false)
		if err != nil {
			t.Fatalf("InitialState: %v", err)
		}
		return NewPetriEnumerator(net), PetriState(init)
	})
	if err != nil {
		t.Fatalf("AnalyzeConcurrent: %v", err)
	}
	if len(graphs) != len(sweep) {
		t.Fatalf("expected %d graphs, got %d", len(sweep), len(graphs))
	}
	for i, g := range graphs {
		if g == nil {
			t.Fatalf("graph %d is nil", i)
		}
		if _, ok := g.Root(); !ok {
			t.Fatalf("graph %d has no root", i)
		}
	}
}

func TestAnalyzeConcurrentPropagatesFirstError(t *testing.T) {
	net, m0 := buildParallelNet(t)
	init, err := net.InitialState(m0, false)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}

	_, err = AnalyzeConcurrent(3, func(i int) (*Enumerator[*petri.PetriNet], State) {
		enum := NewPetriEnumerator(net)
		if i == 1 {
			enum.Events = failingEventsBuilder{}
		}
		return enum, PetriState(init)
	})
	if err == nil {
		t.Fatalf("expected an error from the failing sweep member")
	}
}

type failingEventsBuilder struct{}

func (failingEventsBuilder) Build(net *petri.PetriNet, s State) ([]Event, error) {
	return nil, errBoom
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
