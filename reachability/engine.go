package reachability

import (
	"github.com/pflow-xyz/stpn/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnabledEventsBuilder lists the events a model considers enabled at a
// given state (spec.md §4.1's "enabled events" step). For petri nets this
// wraps PetriNet.Enabled over the state's marking.
type EnabledEventsBuilder[M any] interface {
	Build(model M, s State) ([]Event, error)
}

// SuccessorEvaluator computes the successor State reached by firing event
// from parent (spec.md §4.1's "evaluate successor" step). Returning
// (nil, nil) suppresses the candidate succession with no notifications at
// all (spec.md §9's Open Question: a suppressed candidate never existed as
// far as observers are concerned).
type SuccessorEvaluator[M any] interface {
	Evaluate(model M, parent State, event Event) (*Succession, error)
}

// SuccessionProcessor is a pre- or post- processing hook over a candidate
// or extracted succession. Returning (nil, nil) drops the succession
// entirely: it is not added to the graph and no further notifications fire
// for it (spec.md §4.6).
type SuccessionProcessor interface {
	Process(s *Succession) (*Succession, error)
}

// SuccessionProcessorFunc adapts a plain func to SuccessionProcessor.
type SuccessionProcessorFunc func(s *Succession) (*Succession, error)

func (f SuccessionProcessorFunc) Process(s *Succession) (*Succession, error) { return f(s) }

// passthroughProcessor is the default no-op pre/post processor.
type passthroughProcessor struct{}

func (passthroughProcessor) Process(s *Succession) (*Succession, error) { return s, nil }

// Enumerator drives the generic succession-graph enumeration algorithm
// (spec.md §4.1) over a model of type M. Event is fixed to string rather
// than a second type parameter: every concrete model in this module (petri
// nets) names its events by transition name, and collapsing the dual
// generic to a single one avoids an entire axis of unverifiable generic
// instantiation while this module is built without access to the Go
// toolchain.
type Enumerator[M any] struct {
	Model      M
	Events     EnabledEventsBuilder[M]
	Evaluator  SuccessorEvaluator[M]
	Pre        SuccessionProcessor
	Post       SuccessionProcessor
	Policy     Policy
	GlobalStop StopCriterion
	LocalStop  StopCriterion

	bus    notify.Bus[Notification]
	logger zerolog.Logger
}

// NewEnumerator builds an Enumerator with the supplied collaborators.
// Pre/Post start as a passthrough, Policy as FIFO and GlobalStop/LocalStop
// as AlwaysFalse. Analyze also falls back to FIFO for a nil Policy and
// skips a nil GlobalStop or LocalStop; it does not replace a nil Pre or Post.
func NewEnumerator[M any](model M, events EnabledEventsBuilder[M], evaluator SuccessorEvaluator[M]) *Enumerator[M] {
	return &Enumerator[M]{
		Model:      model,
		Events:     events,
		Evaluator:  evaluator,
		Pre:        passthroughProcessor{},
		Post:       passthroughProcessor{},
		Policy:     NewFIFOPolicy(),
		GlobalStop: AlwaysFalse{},
		LocalStop:  AlwaysFalse{},
		logger:     log.Logger,
	}
}

// AddObserver registers handler against every Notification this Enumerator
// fires, returning a token usable with RemoveObserver.
func (e *Enumerator[M]) AddObserver(handler func(Notification)) int {
	return e.bus.Subscribe(handler)
}

// RemoveObserver unregisters a handler previously added via AddObserver.
func (e *Enumerator[M]) RemoveObserver(id int) { e.bus.Unsubscribe(id) }

func (e *Enumerator[M]) notify(n Notification) {
	e.bus.Publish(n)
	if e.GlobalStop != nil {
		e.GlobalStop.Observe(n)
	}
	if e.LocalStop != nil {
		e.LocalStop.Observe(n)
	}
}

// Analyze runs the enumeration algorithm from initial state s0 to
// completion (either the model's reachable state space is exhausted, or
// GlobalStop fires), returning the built SuccessionGraph.
func (e *Enumerator[M]) Analyze(s0 State) (*SuccessionGraph, error) {
	graph := NewSuccessionGraph()
	policy := e.Policy
	if policy == nil {
		policy = NewFIFOPolicy()
	}

	e.logger.Debug().Msg("starting succession graph enumeration")

	// Seeding (spec.md §4.1 step 1) only post-processes the root
	// pseudo-succession, pushes it onto the policy and notifies Inserted;
	// graph insertion happens in step 2, below, the same way as every other
	// extracted succession.
	root := NewRootSuccession(s0)
	e.notify(Notification{Kind: Created, Succession: root})
	processedRoot, err := e.Post.Process(root)
	if err != nil {
		return nil, err
	}
	if processedRoot == nil {
		return graph, nil
	}
	e.notify(Notification{Kind: PostProcessed, Succession: processedRoot})
	policy.Add(processedRoot)
	e.notify(Notification{Kind: Inserted, Succession: processedRoot})

	for !policy.IsEmpty() && !e.globalStopped() {
		succ, ok := policy.Remove()
		if !ok {
			break
		}
		e.notify(Notification{Kind: Extracted, Succession: succ})

		processed, err := e.Pre.Process(succ)
		if err != nil {
			return nil, err
		}
		if processed == nil {
			continue
		}
		e.notify(Notification{Kind: PreProcessed, Succession: processed})

		childID, isNew, err := graph.Add(processed)
		if err != nil {
			return nil, err
		}
		e.notify(Notification{Kind: NodeAdded, Succession: processed, Node: childID, IsNew: isNew})

		if e.LocalStop != nil && e.LocalStop.LocalStop(processed.Child) {
			graph.MarkLocalStop(childID)
			continue
		}
		if !isNew {
			continue
		}

		events, err := e.Events.Build(e.Model, processed.Child)
		if err != nil {
			return nil, err
		}
		for _, evt := range events {
			candidate, err := e.Evaluator.Evaluate(e.Model, processed.Child, evt)
			if err != nil {
				return nil, err
			}
			if candidate == nil {
				continue
			}
			e.notify(Notification{Kind: Created, Succession: candidate})
			postProcessed, err := e.Post.Process(candidate)
			if err != nil {
				return nil, err
			}
			if postProcessed == nil {
				continue
			}
			e.notify(Notification{Kind: PostProcessed, Succession: postProcessed})
			policy.Add(postProcessed)
			e.notify(Notification{Kind: Inserted, Succession: postProcessed})

			if e.globalStopped() {
				break
			}
		}
	}

	// Drain: once GlobalStop fires, remaining queued successions are still
	// pre-processed and added to the graph (so the node count reflects
	// everything already discovered) but never expanded further.
	for !policy.IsEmpty() {
		succ, ok := policy.Remove()
		if !ok {
			break
		}
		e.notify(Notification{Kind: Extracted, Succession: succ})
		processed, err := e.Pre.Process(succ)
		if err != nil {
			return nil, err
		}
		if processed == nil {
			continue
		}
		e.notify(Notification{Kind: PreProcessed, Succession: processed})
		childID, isNew, err := graph.Add(processed)
		if err != nil {
			return nil, err
		}
		e.notify(Notification{Kind: NodeAdded, Succession: processed, Node: childID, IsNew: isNew})
		if isNew {
			graph.MarkLocalStop(childID)
		}
	}

	e.logger.Debug().Int("nodes", len(graph.Nodes())).Msg("succession graph enumeration complete")
	return graph, nil
}

func (e *Enumerator[M]) globalStopped() bool {
	return e.GlobalStop != nil && e.GlobalStop.GlobalStop()
}
