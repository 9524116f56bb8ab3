package solver

import (
	"math"

	"sweepnav/internal/model"
)

// Ant colony parameters. Alpha weighs pheromone, beta the distance
// heuristic; rho is the evaporation rate per iteration.
const (
	acoAlpha   = 1.0
	acoBeta    = 2.0
	acoRho     = 0.5
	acoMaxAnts = 20
)

// antColony builds tours with min(20,n) ants per iteration. Transition
// probability follows pheromone^alpha * heuristic^beta scaled by weighted
// priority; deposits reinforce every edge of every tour in both
// directions, stronger for shorter tours. Anytime like the genetic run.
func (r *run) antColony(opts model.OptimizeOptions) ([]int, int) {
	n := len(r.nodes)
	ants := n
	if ants > acoMaxAnts {
		ants = acoMaxAnts
	}

	pher := make([][]float64, n)
	for i := range pher {
		pher[i] = make([]float64, n)
		for j := range pher[i] {
			pher[i][j] = 1.0
		}
	}

	var best []int
	bestDist := math.MaxFloat64
	iter := 0
	for ; iter < opts.MaxIterations && !r.expired(); iter++ {
		tours := make([][]int, 0, ants)
		for a := 0; a < ants; a++ {
			tour := r.buildTour(pher)
			tours = append(tours, tour)
			if d := r.orderDistance(tour) + r.penalty(tour); d < bestDist {
				bestDist = d
				best = append(best[:0:0], tour...)
			}
		}

		// Evaporate, then deposit along every tour edge, both directions.
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				pher[i][j] *= 1 - acoRho
			}
		}
		for _, tour := range tours {
			deposit := 100 / (r.orderDistance(tour) + 1)
			for i := 0; i+1 < len(tour); i++ {
				a, b := tour[i], tour[i+1]
				pher[a][b] += deposit
				pher[b][a] += deposit
			}
		}
		if iter%25 == 0 {
			r.progress("ant_colony", iter, bestDist)
		}
	}
	if best == nil {
		best = r.nearestNeighbor()
	}
	return best, iter
}

// buildTour walks one ant from the start position through all nodes.
func (r *run) buildTour(pher [][]float64) []int {
	n := len(r.nodes)
	tour := make([]int, 0, n)
	visited := make([]bool, n)
	cur := -1
	for len(tour) < n {
		next := r.pickNext(pher, cur, visited)
		visited[next] = true
		tour = append(tour, next)
		cur = next
	}
	return tour
}

// pickNext samples the next node by roulette wheel over the transition
// weights. cur < 0 means the ant still sits at the start position.
func (r *run) pickNext(pher [][]float64, cur int, visited []bool) int {
	n := len(r.nodes)
	weights := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		d := 0.0
		tau := 1.0
		if cur < 0 {
			d = r.startDist[i]
		} else {
			d = r.matrix.Dist[cur][i]
			tau = pher[cur][i]
		}
		heuristic := 1 / (d + 1)
		w := math.Pow(tau, acoAlpha) * math.Pow(heuristic, acoBeta) *
			(1 + float64(r.nodes[i].Priority)*r.pw)
		weights[i] = w
		sum += w
	}
	if sum <= 0 {
		for i := 0; i < n; i++ {
			if !visited[i] {
				return i
			}
		}
	}
	pick := r.rng.Float64() * sum
	acc := 0.0
	last := -1
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		last = i
		acc += weights[i]
		if pick <= acc {
			return i
		}
	}
	return last
}
