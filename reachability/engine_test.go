package reachability

import (
	"testing"

	"github.com/pflow-xyz/stpn/petri"
)

func buildParallelNet(t *testing.T) (*petri.PetriNet, petri.Marking) {
	t.Helper()
	net, m0, err := petri.Build().
		Place("p1", 1).
		Place("p2", 1).
		Place("p3", 0).
		Transition("t1").
		Transition("t2").
		Arc("p1", "t1", 1).
		Arc("t1", "p3", 1).
		Arc("p2", "t2", 1).
		Arc("t2", "p3", 1).
		Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	return net, m0
}

func TestAnalyzeEnumeratesParallelTransitionsWithConfluence(t *testing.T) {
	net, m0 := buildParallelNet(t)
	init, err := net.InitialState(m0, false)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}

	enum := NewPetriEnumerator(net)
	graph, err := enum.Analyze(PetriState(init))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	nodes := graph.Nodes()
	if len(nodes) != 4 {
		t.Fatalf("expected 4 distinct states (interleavings confluent on p3=2), got %d", len(nodes))
	}
	if len(graph.Successions()) != 4 {
		t.Fatalf("expected 4 successions, got %d", len(graph.Successions()))
	}

	root, ok := graph.Root()
	if !ok {
		t.Fatalf("expected root to be set")
	}
	if len(graph.Successors(root)) != 2 {
		t.Fatalf("expected root to have 2 successors (t1, t2 both enabled), got %d", len(graph.Successors(root)))
	}

	// The two interleavings must converge on a single final node with no
	// outgoing successions (both tokens in p3, nothing left enabled).
	var finals []NodeID
	for _, id := range nodes {
		if len(graph.Successors(id)) == 0 {
			finals = append(finals, id)
		}
	}
	if len(finals) != 1 {
		t.Fatalf("expected exactly one terminal (merged) node, got %d", len(finals))
	}
	if len(graph.Predecessors(finals[0])) != 2 {
		t.Fatalf("expected the merged terminal node to have 2 incoming edges, got %d", len(graph.Predecessors(finals[0])))
	}
}

func TestAnalyzeStopsOnIterationsNumber(t *testing.T) {
	net, m0 := buildParallelNet(t)
	init, err := net.InitialState(m0, false)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}

	enum := NewPetriEnumerator(net)
	enum.GlobalStop = NewIterationsNumber(1)
	graph, err := enum.Analyze(PetriState(init))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// The root counts as the first node added; global stop fires immediately
	// afterward, but the drain loop still adds whatever was already queued
	// before expansion halted.
	if len(graph.Nodes()) < 1 {
		t.Fatalf("expected at least the root node to be present")
	}
}

func TestAnalyzeNotifiesObserversInOrder(t *testing.T) {
	net, m0 := buildParallelNet(t)
	init, err := net.InitialState(m0, false)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}

	enum := NewPetriEnumerator(net)
	var kinds []NotificationKind
	enum.AddObserver(func(n Notification) { kinds = append(kinds, n.Kind) })

	if _, err := enum.Analyze(PetriState(init)); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(kinds) == 0 {
		t.Fatalf("expected at least one notification")
	}
	if kinds[0] != Created {
		t.Fatalf("expected first notification to be Created, got %v", kinds[0])
	}
}

func TestAnalyzeWithMarkingConditionStopsEarly(t *testing.T) {
	net, m0 := buildParallelNet(t)
	init, err := net.InitialState(m0, false)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}

	cond, err := MarkingConditionFromString("p3 > 1")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	cond.Bind(MarkingBindingsOf(net))

	enum := NewPetriEnumerator(net)
	enum.GlobalStop = cond
	graph, err := enum.Analyze(PetriState(init))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if cond.Err() != nil {
		t.Fatalf("unexpected evaluation error: %v", cond.Err())
	}
	if len(graph.Nodes()) == 0 {
		t.Fatalf("expected at least the root node")
	}
}
