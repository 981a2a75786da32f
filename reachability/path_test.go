package reachability

import (
	"reflect"
	"testing"
)

func TestFindPathRootSatisfiesPredicateIsEmptyPath(t *testing.T) {
	g := NewSuccessionGraph()
	s0 := stateWith("x", 0)
	g.Add(NewRootSuccession(s0))

	events, id, found := FindPath(g, func(s State) bool { return s.Equal(s0) })
	if !found {
		t.Fatalf("expected root to satisfy its own predicate")
	}
	if len(events) != 0 {
		t.Fatalf("expected empty path to root, got %v", events)
	}
	rootID, _ := g.Root()
	if id != rootID {
		t.Fatalf("expected matched node to be root")
	}
}

func TestFindPathReturnsShortestEventSequence(t *testing.T) {
	g := NewSuccessionGraph()
	s0 := stateWith("x", 0)
	s1 := stateWith("x", 1)
	s2 := stateWith("x", 2)
	g.Add(NewRootSuccession(s0))
	g.Add(NewSuccession(s0, "a", s1))
	g.Add(NewSuccession(s1, "b", s2))

	events, _, found := FindPath(g, func(s State) bool { return s.Equal(s2) })
	if !found {
		t.Fatalf("expected s2 reachable")
	}
	if !reflect.DeepEqual(events, []Event{"a", "b"}) {
		t.Fatalf("expected path [a b], got %v", events)
	}
}

func TestFindPathUnmatchedPredicateReturnsFalse(t *testing.T) {
	g := NewSuccessionGraph()
	s0 := stateWith("x", 0)
	g.Add(NewRootSuccession(s0))
	if _, _, found := FindPath(g, func(State) bool { return false }); found {
		t.Fatalf("expected unmatched predicate to report not found")
	}
}

func TestTerminalNodesFindsDeadEnds(t *testing.T) {
	g := NewSuccessionGraph()
	s0 := stateWith("x", 0)
	s1 := stateWith("x", 1)
	g.Add(NewRootSuccession(s0))
	g.Add(NewSuccession(s0, "a", s1))

	terminal := TerminalNodes(g)
	if len(terminal) != 1 {
		t.Fatalf("expected exactly one terminal node, got %d", len(terminal))
	}
	s1ID, _ := g.Node(s1)
	if terminal[0] != s1ID {
		t.Fatalf("expected s1 to be the terminal node")
	}
}
