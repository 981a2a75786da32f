package reachability

import (
	"github.com/google/uuid"
	"github.com/pflow-xyz/stpn/errs"
	"github.com/pflow-xyz/stpn/feature"
)

// NodeID uniquely identifies a node within one SuccessionGraph. IDs use a
// UUID rather than a process-wide counter (design note §9: "replace with
// per-graph monotonic identifiers to eliminate cross-graph coupling" --
// uuid.NewString() gives the same global-uniqueness-across-concurrently-
// built-graphs guarantee without any shared counter state).
type NodeID string

// Node is a graph vertex: a unique identifier bound to exactly one State.
type Node struct {
	ID    NodeID
	State State
}

// LocalStopTag marks a node that was added to the graph but never
// expanded: either its local stop criterion fired, or it was first reached
// while draining the queue after the global stop.
const LocalStopTag feature.Tag = "local_stop"

type edgeKey struct{ from, to NodeID }

// SuccessionGraph is a directed multigraph of state-equivalence classes
// (spec.md §3): nodes carry unique IDs in a bijection with State values;
// edges are ordered node pairs each carrying a set (here, an ordered list)
// of Succession records, since parallel successions between the same pair
// are allowed.
type SuccessionGraph struct {
	root    NodeID
	hasRoot bool

	nodes      map[NodeID]*Node
	order      []NodeID // insertion order, for deterministic Nodes()
	byHash     map[string][]NodeID
	localStops map[NodeID]bool

	edgeOrder []edgeKey
	edges     map[edgeKey][]*Succession
	outgoing  map[NodeID][]NodeID
	incoming  map[NodeID][]NodeID

	allSuccessions []*Succession
}

// NewSuccessionGraph returns an empty graph.
func NewSuccessionGraph() *SuccessionGraph {
	return &SuccessionGraph{
		nodes:      make(map[NodeID]*Node),
		byHash:     make(map[string][]NodeID),
		localStops: make(map[NodeID]bool),
		edges:      make(map[edgeKey][]*Succession),
		outgoing:   make(map[NodeID][]NodeID),
		incoming:   make(map[NodeID][]NodeID),
	}
}

func (g *SuccessionGraph) findNode(s State) (NodeID, bool) {
	for _, id := range g.byHash[s.Hash()] {
		if g.nodes[id].State.Equal(s) {
			return id, true
		}
	}
	return "", false
}

func (g *SuccessionGraph) newNode(s State) *Node {
	id := NodeID(uuid.NewString())
	n := &Node{ID: id, State: s}
	g.nodes[id] = n
	g.order = append(g.order, id)
	g.byHash[s.Hash()] = append(g.byHash[s.Hash()], id)
	return n
}

// Add inserts succession into the graph, returning the child's node ID and
// whether that node is newly created (spec.md §4.1 step 2: "isNew ←
// graph.add(succession)"). Fails with *errs.DanglingParentError if the
// parent's state is not yet bound to a node, or *errs.RootAlreadySetError
// on a second attempt to seed the root.
func (g *SuccessionGraph) Add(s *Succession) (NodeID, bool, error) {
	if s.IsRoot() {
		if g.hasRoot {
			return "", false, &errs.RootAlreadySetError{}
		}
		n := g.newNode(s.Child)
		g.root = n.ID
		g.hasRoot = true
		// The root seed carries no event and fires no edge, so it is not a
		// succession in the spec.md §3 sense (parent|event|child) -- only
		// real (parent, event, child) firings are recorded in allSuccessions.
		return n.ID, true, nil
	}

	parentID, ok := g.findNode(*s.Parent)
	if !ok {
		return "", false, &errs.DanglingParentError{Message: "parent state is not yet bound to any node"}
	}

	childID, existed := g.findNode(s.Child)
	isNew := !existed
	if !existed {
		childID = g.newNode(s.Child).ID
	}

	key := edgeKey{from: parentID, to: childID}
	if _, seen := g.edges[key]; !seen {
		g.edgeOrder = append(g.edgeOrder, key)
		g.outgoing[parentID] = append(g.outgoing[parentID], childID)
		g.incoming[childID] = append(g.incoming[childID], parentID)
	}
	g.edges[key] = append(g.edges[key], s)
	g.allSuccessions = append(g.allSuccessions, s)

	return childID, isNew, nil
}

// MarkLocalStop attaches the LocalStopTag to node id, recording that it
// was never expanded (local stop fired, or first reached during the drain).
func (g *SuccessionGraph) MarkLocalStop(id NodeID) { g.localStops[id] = true }

// IsLocalStop reports whether node id was marked by MarkLocalStop.
func (g *SuccessionGraph) IsLocalStop(id NodeID) bool { return g.localStops[id] }

// Root returns the graph's root node ID, if any.
func (g *SuccessionGraph) Root() (NodeID, bool) { return g.root, g.hasRoot }

// Nodes returns all node IDs in insertion order.
func (g *SuccessionGraph) Nodes() []NodeID { return append([]NodeID(nil), g.order...) }

// State returns the State bound to node id.
func (g *SuccessionGraph) State(id NodeID) (State, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return State{}, false
	}
	return n.State, true
}

// Node returns the node ID bound to s, if any (the State->Node side of the bijection).
func (g *SuccessionGraph) Node(s State) (NodeID, bool) { return g.findNode(s) }

// Successors returns the distinct node IDs reachable from id via one edge.
func (g *SuccessionGraph) Successors(id NodeID) []NodeID {
	return append([]NodeID(nil), g.outgoing[id]...)
}

// Predecessors returns the distinct node IDs with an edge into id.
func (g *SuccessionGraph) Predecessors(id NodeID) []NodeID {
	return append([]NodeID(nil), g.incoming[id]...)
}

// Successions returns every real (parent, event, child) succession added,
// in insertion order -- the root seed is excluded, since it carries no
// event and fires no edge.
func (g *SuccessionGraph) Successions() []*Succession {
	return append([]*Succession(nil), g.allSuccessions...)
}

// OutgoingSuccessions returns the successions recorded on edges leaving id.
func (g *SuccessionGraph) OutgoingSuccessions(id NodeID) []*Succession {
	var out []*Succession
	for _, key := range g.edgeOrder {
		if key.from == id {
			out = append(out, g.edges[key]...)
		}
	}
	return out
}

// IncomingSuccessions returns the successions recorded on edges entering id.
func (g *SuccessionGraph) IncomingSuccessions(id NodeID) []*Succession {
	var out []*Succession
	for _, key := range g.edgeOrder {
		if key.to == id {
			out = append(out, g.edges[key]...)
		}
	}
	return out
}

// ModifyStates applies f to every node's State reachable from the root,
// producing a NEW graph containing exactly the nodes reachable under f,
// with confluences (states that become equal under f) merged on the
// transformed states (spec.md §3 invariant (d)).
func (g *SuccessionGraph) ModifyStates(f func(State) State) *SuccessionGraph {
	out := NewSuccessionGraph()
	if !g.hasRoot {
		return out
	}

	mapped := make(map[NodeID]NodeID) // old id -> new id
	var visit func(old NodeID) NodeID
	visited := make(map[NodeID]bool)

	visit = func(old NodeID) NodeID {
		if newID, ok := mapped[old]; ok {
			return newID
		}
		oldState, _ := g.State(old)
		newState := f(oldState)
		var newID NodeID
		if id, ok := out.findNode(newState); ok {
			newID = id
		} else {
			newID = out.newNode(newState).ID
		}
		mapped[old] = newID
		return newID
	}

	rootNew := visit(g.root)
	out.root = rootNew
	out.hasRoot = true

	var walk func(old NodeID)
	walk = func(old NodeID) {
		if visited[old] {
			return
		}
		visited[old] = true
		fromNew := visit(old)
		for _, succ := range g.OutgoingSuccessions(old) {
			childOld, _ := g.findNode(succ.Child)
			toNew := visit(childOld)
			transformedChild, _ := out.State(toNew)
			var parentState *State
			if fromState, ok := out.State(fromNew); ok {
				parentState = &fromState
			}
			rewritten := &Succession{Parent: parentState, Event: succ.Event, Child: transformedChild, Features: succ.Features}
			key := edgeKey{from: fromNew, to: toNew}
			if _, seen := out.edges[key]; !seen {
				out.edgeOrder = append(out.edgeOrder, key)
				out.outgoing[fromNew] = append(out.outgoing[fromNew], toNew)
				out.incoming[toNew] = append(out.incoming[toNew], fromNew)
			}
			out.edges[key] = append(out.edges[key], rewritten)
			out.allSuccessions = append(out.allSuccessions, rewritten)
			walk(childOld)
		}
	}
	walk(g.root)

	return out
}
