package reachability

import "golang.org/x/sync/errgroup"

// AnalyzeConcurrent runs n independent Enumerator.Analyze calls concurrently
// via build(i), each producing its own SuccessionGraph from its own initial
// state (e.g. a parameter sweep over a family of models). Analyze itself
// mutates no state shared across Enumerator instances, so distinct
// Enumerators -- each with its own Policy/graph -- may safely run in
// parallel goroutines (spec.md §5's no-shared-mutable-state guarantee,
// applied here to enumeration the same way sim.RunBatch applies it to
// simulation). Returns results in call order. Every analysis runs to
// completion; if any fails, the first error is returned and no results.
func AnalyzeConcurrent[M any](n int, build func(i int) (*Enumerator[M], State)) ([]*SuccessionGraph, error) {
	results := make([]*SuccessionGraph, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			enum, s0 := build(i)
			graph, err := enum.Analyze(s0)
			if err != nil {
				return err
			}
			results[i] = graph
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
