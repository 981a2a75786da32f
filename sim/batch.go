package sim

import (
	"math/rand"

	"github.com/pflow-xyz/stpn/petri"
	"golang.org/x/sync/errgroup"
)

// RunBatch runs n independent Sequencer instances concurrently, each with
// its own rng seeded from seeds[i] over the shared, read-only net and m0,
// invoking build to construct the Sequencer
// and drive its reward wiring before Simulate runs runs traces. Sequencers
// share no mutable state (spec.md §5: "multiple Sequencer instances may run
// in parallel but share no mutable state"); every Sequencer runs to
// completion and errgroup returns the first error, cancelling nothing.
func RunBatch(n, runs int, net *petri.PetriNet, m0 petri.Marking, seeds []int64, build func(seq *Sequencer, i int)) error {
	if len(seeds) != n {
		return errTooFewSeeds(n, len(seeds))
	}
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			seq := NewSequencer(net, m0, rand.New(rand.NewSource(seeds[i])))
			if build != nil {
				build(seq, i)
			}
			return seq.Simulate(runs)
		})
	}
	return g.Wait()
}

type seedCountError struct {
	want, got int
}

func (e *seedCountError) Error() string {
	return "sim: RunBatch requires exactly one seed per sequencer"
}

func errTooFewSeeds(want, got int) error {
	return &seedCountError{want: want, got: got}
}
