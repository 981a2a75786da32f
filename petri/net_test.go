package petri

import "testing"

func buildSIR(t *testing.T) (*PetriNet, Marking) {
	t.Helper()
	net, m0, err := Build().
		Place("S", 999).
		Place("I", 1).
		Place("R", 0).
		Transition("infect").
		Transition("recover").
		Arc("S", "infect", 1).
		Arc("I", "infect", 1).
		Arc("infect", "I", 2).
		Arc("I", "recover", 1).
		Arc("recover", "R", 1).
		Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	return net, m0
}

func TestAddPlaceRejectsDuplicate(t *testing.T) {
	n := NewPetriNet()
	if err := n.AddPlace("p"); err != nil {
		t.Fatalf("AddPlace: %v", err)
	}
	if err := n.AddPlace("p"); err == nil {
		t.Fatal("expected duplicate-place error")
	}
}

func TestAddPlaceRejectsBadIdentifier(t *testing.T) {
	n := NewPetriNet()
	if err := n.AddPlace("9bad"); err == nil {
		t.Fatal("expected validation error for bad identifier")
	}
}

func TestPlacesAndTransitionsOrdered(t *testing.T) {
	net, _ := buildSIR(t)
	if got := net.Places(); len(got) != 3 || got[0] != "S" || got[1] != "I" || got[2] != "R" {
		t.Fatalf("got %v", got)
	}
	if got := net.Transitions(); len(got) != 2 || got[0] != "infect" || got[1] != "recover" {
		t.Fatalf("got %v", got)
	}
}

func TestPreconditionsAndPostconditions(t *testing.T) {
	net, _ := buildSIR(t)
	pre := net.Preconditions("infect")
	if len(pre) != 2 {
		t.Fatalf("expected 2 preconditions, got %d", len(pre))
	}
	post := net.Postconditions("infect")
	if len(post) != 1 || post[0].Place != "I" || post[0].Multiplicity != 2 {
		t.Fatalf("got %+v", post)
	}
}

func TestAddArcRejectsUnknownPlace(t *testing.T) {
	n := NewPetriNet()
	if err := n.AddTransition("t"); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	if err := n.AddPrecondition("missing", "t", 1); err == nil {
		t.Fatal("expected unknown-place validation error")
	}
}

func TestAddArcRejectsBadMultiplicity(t *testing.T) {
	n := NewPetriNet()
	n.AddPlace("p")
	n.AddTransition("t")
	if err := n.AddPrecondition("p", "t", 0); err == nil {
		t.Fatal("expected validation error for multiplicity < 1")
	}
}

func TestBindingsLookupKnownPlace(t *testing.T) {
	net, m0 := buildSIR(t)
	bindings := net.Bindings(m0)
	v, ok := bindings.Lookup("S")
	if !ok {
		t.Fatal("expected S to resolve")
	}
	if iv, _ := v.AsInt(); iv != 999 {
		t.Fatalf("got %v", v)
	}
	if _, ok := bindings.Lookup("nope"); ok {
		t.Fatal("expected unknown place to not resolve")
	}
}
