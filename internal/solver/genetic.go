package solver

import (
	"sort"

	"sweepnav/internal/model"
)

const tournamentSize = 3

// genetic evolves a population of node permutations. Fitness rewards
// visiting high-priority nodes early and penalizes tour distance plus the
// validator's constraint penalty. Terminates at MaxIterations or the
// wall-clock deadline, whichever comes first, and always returns the best
// individual seen.
func (r *run) genetic(opts model.OptimizeOptions) ([]int, int) {
	n := len(r.nodes)
	popSize := opts.PopulationSize
	pop := make([][]int, popSize)
	pop[0] = r.nearestNeighbor() // seed one greedy individual
	for i := 1; i < popSize; i++ {
		pop[i] = r.randomPerm(n)
	}

	best := append([]int(nil), pop[0]...)
	bestFit := r.fitness(best)
	gen := 0
	for ; gen < opts.MaxIterations && !r.expired(); gen++ {
		fits := make([]float64, popSize)
		for i, ind := range pop {
			fits[i] = r.fitness(ind)
			if fits[i] > bestFit {
				bestFit = fits[i]
				best = append(best[:0:0], ind...)
			}
		}

		// Elites carry over unmodified.
		eliteCount := int(float64(popSize) * opts.EliteRatio)
		if eliteCount < 1 {
			eliteCount = 1
		}
		ranked := make([]int, popSize)
		for i := range ranked {
			ranked[i] = i
		}
		sort.Slice(ranked, func(a, b int) bool { return fits[ranked[a]] > fits[ranked[b]] })

		next := make([][]int, 0, popSize)
		for _, idx := range ranked[:eliteCount] {
			next = append(next, append([]int(nil), pop[idx]...))
		}
		for len(next) < popSize {
			p1 := pop[r.tournament(fits)]
			p2 := pop[r.tournament(fits)]
			child := r.orderCrossover(p1, p2)
			if r.rng.Float64() < opts.MutationRate {
				r.swapMutate(child)
			}
			next = append(next, child)
		}
		pop = next
		if gen%25 == 0 {
			r.progress("genetic", gen, r.orderDistance(best))
		}
	}
	return best, gen
}

func (r *run) randomPerm(n int) []int {
	p := r.rng.Perm(n)
	return p
}

// fitness is priority bonus minus distance minus constraint penalty.
// The bonus decays with position so early visits to important nodes win.
func (r *run) fitness(order []int) float64 {
	n := float64(len(order))
	bonus := 0.0
	for pos, idx := range order {
		bonus += float64(r.nodes[idx].Priority) * r.pw * 1000 * (n - float64(pos)) / n
	}
	return bonus - r.orderDistance(order) - r.penalty(order)
}

// tournament picks the fittest of tournamentSize random individuals.
func (r *run) tournament(fits []float64) int {
	best := r.rng.Intn(len(fits))
	for i := 1; i < tournamentSize; i++ {
		c := r.rng.Intn(len(fits))
		if fits[c] > fits[best] {
			best = c
		}
	}
	return best
}

// orderCrossover (OX) copies a random contiguous slice from p1, then fills
// the remaining positions in p2 order, skipping duplicates.
func (r *run) orderCrossover(p1, p2 []int) []int {
	n := len(p1)
	child := make([]int, n)
	for i := range child {
		child[i] = -1
	}
	a := r.rng.Intn(n)
	b := r.rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	used := make([]bool, n)
	for i := a; i <= b; i++ {
		child[i] = p1[i]
		used[p1[i]] = true
	}
	pos := (b + 1) % n
	for _, g := range p2 {
		if used[g] {
			continue
		}
		for child[pos] != -1 {
			pos = (pos + 1) % n
		}
		child[pos] = g
		used[g] = true
	}
	return child
}

// swapMutate exchanges two random positions in place.
func (r *run) swapMutate(ind []int) {
	if len(ind) < 2 {
		return
	}
	i := r.rng.Intn(len(ind))
	j := r.rng.Intn(len(ind))
	ind[i], ind[j] = ind[j], ind[i]
}
