package petri

import "testing"

func TestIsEnabledRequiresPreconditionMultiplicity(t *testing.T) {
	net := NewPetriNet()
	net.AddPlace("p")
	net.AddTransition("t")
	net.AddPrecondition("p", "t", 2)
	m := NewMarking()
	m.SetTokens("p", 1)
	ok, err := net.IsEnabled("t", m)
	if err != nil {
		t.Fatalf("IsEnabled: %v", err)
	}
	if ok {
		t.Fatal("expected disabled with insufficient tokens")
	}
	m.SetTokens("p", 2)
	ok, err = net.IsEnabled("t", m)
	if err != nil || !ok {
		t.Fatalf("expected enabled, got ok=%v err=%v", ok, err)
	}
}

func TestEnablingFunctionGatesFiring(t *testing.T) {
	net, m0, err := Build().
		Place("p", 5).
		Transition("t").
		Enabling("t", "p >= 10").
		Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	ok, err := net.IsEnabled("t", m0)
	if err != nil {
		t.Fatalf("IsEnabled: %v", err)
	}
	if ok {
		t.Fatal("expected disabled, enabling function requires p >= 10")
	}
}

func TestMaxPriorityTieBreak(t *testing.T) {
	net, _, err := Build().
		Transition("low").
		Transition("high").
		Priority("low", 2).
		Priority("high", 5).
		Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	winners := net.MaxPriority([]string{"low", "high"})
	if len(winners) != 1 || winners[0] != "high" {
		t.Fatalf("got %v", winners)
	}
}

func TestMaxPriorityNoFeatureTreatedAsNegInf(t *testing.T) {
	net, _, err := Build().
		Transition("unprioritized").
		Transition("prioritized").
		Priority("prioritized", 0).
		Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	winners := net.MaxPriority([]string{"unprioritized", "prioritized"})
	if len(winners) != 1 || winners[0] != "prioritized" {
		t.Fatalf("got %v", winners)
	}
}

func TestMaxPriorityAllUnprioritizedAreTied(t *testing.T) {
	net, _, err := Build().Transition("a").Transition("b").Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	winners := net.MaxPriority([]string{"a", "b"})
	if len(winners) != 2 {
		t.Fatalf("got %v", winners)
	}
}
