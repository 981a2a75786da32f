package petri

import "testing"

func TestMarkingAbsentIsZero(t *testing.T) {
	m := NewMarking()
	if m.Get("p") != 0 {
		t.Fatalf("expected 0 for absent place")
	}
}

func TestMarkingAddRemoveTokens(t *testing.T) {
	m := NewMarking()
	m.AddTokens("p", 3)
	if m.Get("p") != 3 {
		t.Fatalf("got %d", m.Get("p"))
	}
	if err := m.RemoveTokens("p", 2); err != nil {
		t.Fatalf("RemoveTokens: %v", err)
	}
	if m.Get("p") != 1 {
		t.Fatalf("got %d", m.Get("p"))
	}
}

func TestMarkingRemoveTokensUnderflow(t *testing.T) {
	m := NewMarking()
	m.AddTokens("p", 1)
	if err := m.RemoveTokens("p", 2); err == nil {
		t.Fatal("expected underflow error")
	}
}

func TestMarkingSetTokensFrom(t *testing.T) {
	a := NewMarking()
	a.SetTokens("p", 5)
	a.SetTokens("q", 1)
	b := NewMarking()
	b.SetTokens("q", 9)
	a.SetTokensFrom(b)
	if a.Get("p") != 0 || a.Get("q") != 9 {
		t.Fatalf("got %+v", a)
	}
}

func TestMarkingCloneIsIndependent(t *testing.T) {
	a := NewMarking()
	a.SetTokens("p", 1)
	b := a.Clone()
	b.SetTokens("p", 2)
	if a.Get("p") != 1 {
		t.Fatalf("clone mutated original")
	}
}

func TestMarkingEqual(t *testing.T) {
	a := NewMarking()
	a.SetTokens("p", 1)
	b := NewMarking()
	b.SetTokens("p", 1)
	b.SetTokens("q", 0)
	if !a.Equal(b) {
		t.Fatalf("expected equal (absent == explicit zero)")
	}
}
