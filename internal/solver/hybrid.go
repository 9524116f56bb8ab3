package solver

import (
	"sync"

	"sweepnav/internal/model"
)

// solveHybrid runs nearest-neighbor, genetic and ant-colony concurrently,
// each with a third of the time budget, and keeps the shortest tour. The
// sub-runs share nothing; each builds its own matrix and search state.
func (s *Solver) solveHybrid(p Problem) (model.Solution, error) {
	budget := s.opts.TimeLimitMs / 3
	seed := s.opts.Seed

	subOpts := func(algo string, seedOffset int64) model.OptimizeOptions {
		o := s.opts
		o.Algorithm = algo
		o.TimeLimitMs = budget
		if seed != 0 {
			o.Seed = seed + seedOffset
		}
		return o
	}

	algos := []model.OptimizeOptions{
		subOpts("nearest_neighbor", 0),
		subOpts("genetic", 1),
		subOpts("ant_colony", 2),
	}

	results := make([]model.Solution, len(algos))
	errs := make([]error, len(algos))
	var wg sync.WaitGroup
	for i, o := range algos {
		wg.Add(1)
		go func(i int, o model.OptimizeOptions) {
			defer wg.Done()
			sub := New(o)
			sub.OnProgress(s.onProgress)
			results[i], errs[i] = sub.Solve(p)
		}(i, o)
	}
	wg.Wait()

	var best model.Solution
	found := false
	iters := 0
	for i, sol := range results {
		if errs[i] != nil {
			continue
		}
		iters += sol.Iterations
		if !found || sol.TotalDistanceM < best.TotalDistanceM {
			best = sol
			found = true
		}
	}
	if !found {
		// All sub-runs failed only on invalid input, surface the first error.
		for _, err := range errs {
			if err != nil {
				return model.Solution{}, err
			}
		}
	}
	best.Algorithm = "hybrid"
	best.Iterations = iters
	return best, nil
}
