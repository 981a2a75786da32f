package petri

import (
	"testing"

	"github.com/pflow-xyz/stpn/calc"
)

func TestBuilderInhibitorArc(t *testing.T) {
	net, m0, err := Build().
		Place("p", 0).
		Place("guard", 1).
		Transition("t").
		Arc("p", "t", 1).
		InhibitorArc("guard", "t", 1).
		Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	enabled, err := net.IsEnabled("t", m0)
	if err != nil {
		t.Fatalf("IsEnabled: %v", err)
	}
	if enabled {
		t.Fatal("expected t disabled while guard holds a token")
	}
}

func TestBuilderPriorityAndEnablingAndPostUpdater(t *testing.T) {
	net, m0, err := Build().
		Place("a", 3).
		Place("b", 5).
		Transition("t").
		Arc("a", "t", 1).
		Priority("t", 5).
		Enabling("t", "a > 0").
		PostUpdater("t", "a = b; b = a").
		Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	prio, ok := net.Features("t").Get(TagPriority)
	if !ok || prio.(Priority).Value != 5 {
		t.Fatalf("got %+v", prio)
	}
	state, err := net.InitialState(m0, false)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	next, err := net.Fire(state, "t")
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	// t consumes one token from "a" (precondition), then the post-updater
	// swaps a/b against the PRE-firing marking (a=3,b=5): a=5, b=3.
	if next.Marking.Get("a") != 5 || next.Marking.Get("b") != 3 {
		t.Fatalf("got a=%d b=%d", next.Marking.Get("a"), next.Marking.Get("b"))
	}
}

func TestBuilderPropagatesFirstError(t *testing.T) {
	_, _, err := Build().
		Place("p", 0).
		Arc("p", "missing-transition", 1).
		Transition("t"). // should not run; err already set
		Done()
	if err == nil {
		t.Fatal("expected error to propagate from Arc")
	}
}

func TestChainBuilderWiresSerialPipeline(t *testing.T) {
	net, m0, err := Build().
		Place("a", 1).
		Chain("a", "b", "c").
		Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	if !net.HasPlace("b") || !net.HasPlace("c") {
		t.Fatalf("expected Chain to create intermediate/final places")
	}
	if !net.HasTransition("a_to_b") || !net.HasTransition("b_to_c") {
		t.Fatalf("expected Chain to create a_to_b and b_to_c transitions")
	}

	state, err := net.InitialState(m0, false)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	next, err := net.Fire(state, "a_to_b")
	if err != nil {
		t.Fatalf("Fire a_to_b: %v", err)
	}
	if next.Marking.Get("a") != 0 || next.Marking.Get("b") != 1 {
		t.Fatalf("expected token moved from a to b, got a=%d b=%d", next.Marking.Get("a"), next.Marking.Get("b"))
	}
}

func TestSIRBuilderWiresEpidemicNet(t *testing.T) {
	net, m0, err := Build().SIR(999, 1).Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	if m0.Get("S") != 999 || m0.Get("I") != 1 || m0.Get("R") != 0 {
		t.Fatalf("got S=%d I=%d R=%d", m0.Get("S"), m0.Get("I"), m0.Get("R"))
	}
	state, err := net.InitialState(m0, false)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	next, err := net.Fire(state, "infect")
	if err != nil {
		t.Fatalf("Fire infect: %v", err)
	}
	if next.Marking.Get("S") != 998 || next.Marking.Get("I") != 2 {
		t.Fatalf("expected infection to move one S into I, got S=%d I=%d", next.Marking.Get("S"), next.Marking.Get("I"))
	}
}

func TestQueueBuilderWiresArrivalAndDeparture(t *testing.T) {
	net, m0, err := Build().Queue("svc", 2, 5).Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	if !net.HasPlace("svc_queue") || !net.HasPlace("svc_servers") || !net.HasTransition("svc_arrive") || !net.HasTransition("svc_depart") {
		t.Fatalf("queue net missing expected elements: %+v", net.Places())
	}
	if m0.Get("svc_queue") != 0 {
		t.Fatalf("expected empty queue initially")
	}
	if m0.Get("svc_servers") != 2 {
		t.Fatalf("expected svc_servers seeded with c=2 tokens, got %d", m0.Get("svc_servers"))
	}
}

func TestQueueBuilderDepartRateReferencesServerCount(t *testing.T) {
	expr, err := calc.Compile("min(svc_queue, svc_servers)")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	net, m0, err := Build().
		Queue("svc", 2, 0).
		Stochastic("svc_depart", StochasticTransitionFeature{RateExpr: expr}).
		Done()
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	m0.SetTokens("svc_queue", 5)

	f, _ := net.Features("svc_depart").Get(TagStochastic)
	rate, err := f.(StochasticTransitionFeature).Rate(net.Bindings(m0))
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	// min(queue=5, servers=2) caps the effective departure rate at the
	// server count, regardless of how many customers are waiting.
	if rate != 2 {
		t.Fatalf("expected depart rate capped at server count 2, got %v", rate)
	}
}
