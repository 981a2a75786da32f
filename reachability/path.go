package reachability

// FindPath performs a breadth-first search from the graph's root for the
// first node whose State satisfies predicate, returning the sequence of
// events fired along a shortest path to it (spec.md §4.6's graph queries,
// supplemented per SPEC_FULL.md §11: "a reachability.FindPath(graph,
// targetPredicate) BFS helper ... useful for asserting marking (p3>1) is or
// is not reachable"). ok is false if no reachable node satisfies predicate.
func FindPath(g *SuccessionGraph, predicate func(State) bool) ([]Event, NodeID, bool) {
	root, hasRoot := g.Root()
	if !hasRoot {
		return nil, "", false
	}
	if rootState, ok := g.State(root); ok && predicate(rootState) {
		return []Event{}, root, true
	}

	visited := map[NodeID]bool{root: true}
	backtrack := make(map[NodeID]step)
	queue := []NodeID{root}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, succ := range g.OutgoingSuccessions(cur) {
			childID, ok := g.Node(succ.Child)
			if !ok || visited[childID] || succ.Event == nil {
				continue
			}
			visited[childID] = true
			backtrack[childID] = step{via: *succ.Event, from: cur}
			if predicate(succ.Child) {
				return reconstructPath(backtrack, root, childID), childID, true
			}
			queue = append(queue, childID)
		}
	}
	return nil, "", false
}

// TerminalNodes returns every node with no outgoing successions (spec.md
// §8's deadlock/terminal-state reporting, supplemented per SPEC_FULL.md §11).
func TerminalNodes(g *SuccessionGraph) []NodeID {
	var out []NodeID
	for _, id := range g.Nodes() {
		if len(g.Successors(id)) == 0 {
			out = append(out, id)
		}
	}
	return out
}

func reconstructPath(backtrack map[NodeID]step, root, target NodeID) []Event {
	var events []Event
	for cur := target; cur != root; {
		s, ok := backtrack[cur]
		if !ok {
			break
		}
		events = append([]Event{s.via}, events...)
		cur = s.from
	}
	return events
}

type step struct {
	via  Event
	from NodeID
}
