package sim

import (
	"math/rand"

	"github.com/pflow-xyz/stpn/notify"
	"github.com/pflow-xyz/stpn/petri"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// runState is the Sequencer's per-run mutable state (spec.md §4.7).
type runState struct {
	petriState *petri.PetriStateFeature
	ttf        map[string]float64
	time       float64
	run        int
}

// Sequencer runs independent Monte-Carlo firing traces over a PetriNet from
// a fixed initial marking, emitting Lifecycle events to its observers
// (spec.md §4.7). A Sequencer is strictly sequential; run multiple
// Sequencer instances (each owning its own *rand.Rand) in parallel via
// RunBatch rather than sharing one.
type Sequencer struct {
	net    *petri.PetriNet
	m0     petri.Marking
	rng    *rand.Rand
	logger zerolog.Logger

	bus        notify.Bus[Lifecycle]
	runBus     notify.Bus[Lifecycle]
	lastRun    *runState
	lastFiring Lifecycle
	aborted    bool
}

// Abort requests that the run currently executing stop after its next
// FIRING_EXECUTED notification, emitting RUN_END immediately afterward
// (spec.md §4.7: "Runs ... an inner loop over firings until no transition
// is firable or an observer aborts the run"). Safe to call synchronously
// from within an observer's handler.
func (s *Sequencer) Abort() { s.aborted = true }

// SequencerOption configures optional Sequencer fields, following the same
// functional-options convention as the rest of this module's ambient stack.
type SequencerOption func(*Sequencer)

// WithLogger overrides the Sequencer's diagnostic logger (spec.md §4.7:
// "Sequencer. Configured with (PetriNet, initial marking, components
// factory, logger)"); default is the package-level zerolog logger.
func WithLogger(l zerolog.Logger) SequencerOption {
	return func(s *Sequencer) { s.logger = l }
}

// NewSequencer builds a Sequencer over net starting at m0, seeded with a
// deterministic rng so runs are reproducible across identical seeds.
func NewSequencer(net *petri.PetriNet, m0 petri.Marking, rng *rand.Rand, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{net: net, m0: m0, rng: rng, logger: log.Logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddObserver registers handler against every Lifecycle event this
// Sequencer emits across all runs.
func (s *Sequencer) AddObserver(handler func(Lifecycle)) int {
	return s.bus.Subscribe(handler)
}

// RemoveObserver unregisters a handler added via AddObserver.
func (s *Sequencer) RemoveObserver(id int) { s.bus.Unsubscribe(id) }

// AddCurrentRunObserver registers handler against Lifecycle events for the
// run currently executing only; it is not retained across Simulate calls.
func (s *Sequencer) AddCurrentRunObserver(handler func(Lifecycle)) int {
	return s.runBus.Subscribe(handler)
}

// RemoveCurrentRunObserver unregisters a handler added via AddCurrentRunObserver.
func (s *Sequencer) RemoveCurrentRunObserver(id int) { s.runBus.Unsubscribe(id) }

func (s *Sequencer) emit(ev Lifecycle) {
	s.bus.Publish(ev)
	s.runBus.Publish(ev)
}

// Simulate runs the outer loop of `runs` independent traces, each started
// fresh from m0 with a freshly sampled TimedSimulatorStateFeature.
func (s *Sequencer) Simulate(runs int) error {
	s.emit(Lifecycle{Kind: SimulationStart})
	for r := 0; r < runs; r++ {
		if err := s.simulateRun(r); err != nil {
			return err
		}
	}
	s.emit(Lifecycle{Kind: SimulationEnd})
	return nil
}

func (s *Sequencer) simulateRun(run int) error {
	state, err := s.initialRunState(run)
	if err != nil {
		return err
	}
	s.lastRun = state
	s.aborted = false
	s.logger.Debug().Int("run", run).Msg("run start")
	s.emit(Lifecycle{Kind: RunStart, Run: run, Time: 0, Marking: state.petriState.Marking})

	for {
		if len(state.petriState.Enabled) == 0 || s.aborted {
			s.logger.Debug().Int("run", run).Float64("time", state.time).Msg("run end")
			s.emit(Lifecycle{Kind: RunEnd, Run: run, Time: state.time})
			return nil
		}

		fired, selectedRealTTF, rate, err := s.selectFiring(state)
		if err != nil {
			return err
		}

		next, err := s.net.Fire(state.petriState, fired)
		if err != nil {
			return err
		}

		parentMarking := state.petriState.Marking
		parentTime := state.time
		state.time += selectedRealTTF

		nextTTF := make(map[string]float64, len(next.Enabled))
		for t := range next.Persistent {
			rt, err := s.rateOf(t, parentMarking)
			if err != nil {
				return err
			}
			nextTTF[t] = state.ttf[t] - selectedRealTTF*rt
		}
		for t := range next.NewlyEnabled {
			v, err := s.sampleTTF(t)
			if err != nil {
				return err
			}
			nextTTF[t] = v
		}

		state.petriState = next
		state.ttf = nextTTF

		s.logger.Debug().
			Int("run", run).
			Str("transition", fired).
			Float64("rate", rate).
			Float64("time", state.time).
			Msg("fired")
		s.emit(Lifecycle{
			Kind:          FiringExecuted,
			Run:           run,
			Time:          state.time,
			Transition:    fired,
			ParentTime:    parentTime,
			ChildTime:     state.time,
			ParentMarking: parentMarking,
			ChildMarking:  next.Marking,
		})
	}
}

// selectFiring implements spec.md §4.7 steps 1-3: compute each enabled
// transition's real time-to-fire, pick the minimum, breaking ties first by
// highest Priority and then by transition insertion order.
func (s *Sequencer) selectFiring(state *runState) (fired string, realTTF float64, rate float64, err error) {
	type candidate struct {
		name    string
		realTTF float64
		rate    float64
	}
	var best *candidate
	var tied []candidate

	for _, t := range s.net.Transitions() {
		if _, enabled := state.petriState.Enabled[t]; !enabled {
			continue
		}
		rt, rerr := s.rateOf(t, state.petriState.Marking)
		if rerr != nil {
			return "", 0, 0, rerr
		}
		real := state.ttf[t] / rt
		if best == nil || real < best.realTTF {
			best = &candidate{name: t, realTTF: real, rate: rt}
			tied = []candidate{*best}
		} else if real == best.realTTF {
			tied = append(tied, candidate{name: t, realTTF: real, rate: rt})
		}
	}
	if best == nil {
		return "", 0, 0, nil
	}
	if len(tied) > 1 {
		names := make([]string, len(tied))
		for i, c := range tied {
			names[i] = c.name
		}
		prioritized := s.net.MaxPriority(names)
		chosen := prioritized[0]
		for _, c := range tied {
			if c.name == chosen {
				return c.name, c.realTTF, c.rate, nil
			}
		}
	}
	return best.name, best.realTTF, best.rate, nil
}

func (s *Sequencer) rateOf(transition string, marking petri.Marking) (float64, error) {
	f, ok := s.net.Features(transition).Get(petri.TagStochastic)
	if !ok {
		return 1, nil
	}
	return f.(petri.StochasticTransitionFeature).Rate(s.net.Bindings(marking))
}

// sampleTTF draws a fresh raw time-to-fire for transition from its
// StochasticTransitionFeature.Sampler. A transition with no stochastic
// feature is treated as immediate: ttf = 0, fired before any timed
// transition and tie-broken purely by Priority/insertion order.
func (s *Sequencer) sampleTTF(transition string) (float64, error) {
	f, ok := s.net.Features(transition).Get(petri.TagStochastic)
	if !ok {
		return 0, nil
	}
	st := f.(petri.StochasticTransitionFeature)
	if st.Sampler == nil {
		return 0, nil
	}
	return st.Sampler.Sample(s.rng)
}

func (s *Sequencer) initialRunState(run int) (*runState, error) {
	petriState, err := s.net.InitialState(s.m0, false)
	if err != nil {
		return nil, err
	}
	ttf := make(map[string]float64, len(petriState.Enabled))
	for t := range petriState.Enabled {
		v, err := s.sampleTTF(t)
		if err != nil {
			return nil, err
		}
		ttf[t] = v
	}
	return &runState{petriState: petriState, ttf: ttf, time: 0, run: run}, nil
}
