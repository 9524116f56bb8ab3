// Package solver contains the TSP/VRP strategies. Every strategy is a
// pure, input-scoped computation: one run owns its matrix, population and
// pheromone state, and nothing is shared across concurrent runs. All
// iterative strategies are anytime — they poll a wall-clock deadline every
// iteration and return the best sequence seen so far.
package solver

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"sweepnav/internal/constraint"
	"sweepnav/internal/geo"
	"sweepnav/internal/model"
)

// Input validation errors. Anything past input validation degrades to a
// worse-but-valid solution instead of failing.
var (
	ErrNoNodes           = errors.New("no nodes to optimize")
	ErrInvalidCoordinate = errors.New("node coordinate out of range")
)

// Strategy is the closed set of solver algorithms.
type Strategy int

const (
	NearestNeighbor Strategy = iota
	Genetic
	AntColony
	Hybrid
)

func (s Strategy) String() string {
	switch s {
	case NearestNeighbor:
		return "nearest_neighbor"
	case Genetic:
		return "genetic"
	case AntColony:
		return "ant_colony"
	default:
		return "hybrid"
	}
}

// ParseStrategy maps the wire name to a Strategy. Empty selects Hybrid.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "hybrid":
		return Hybrid, nil
	case "nearest_neighbor":
		return NearestNeighbor, nil
	case "genetic":
		return Genetic, nil
	case "ant_colony":
		return AntColony, nil
	default:
		return Hybrid, fmt.Errorf("unknown algorithm %q", name)
	}
}

// Defaults for OptimizeOptions zero values.
const (
	DefaultMaxIterations  = 1000
	DefaultPopulationSize = 50
	DefaultMutationRate   = 0.1
	DefaultEliteRatio     = 0.2
	DefaultTimeLimitMs    = 15000
	DefaultPriorityWeight = 0.3
)

// Progress is one anytime snapshot emitted while a strategy runs.
type Progress struct {
	Algorithm     string  `json:"algorithm"`
	Iteration     int     `json:"iteration"`
	BestDistanceM float64 `json:"bestDistanceM"`
}

// ProgressFunc receives snapshots; it must not block.
type ProgressFunc func(Progress)

// Problem bundles the inputs of one optimization run.
type Problem struct {
	Nodes       []model.Node
	Start       model.GeoPoint
	Vehicle     *model.VehicleProfile
	Constraints *model.RouteConstraints
}

// Solver runs one strategy over one problem. Create a fresh Solver per
// request; it is not safe for concurrent reuse.
type Solver struct {
	opts       model.OptimizeOptions
	onProgress ProgressFunc
}

// New normalizes options and returns a Solver.
func New(opts model.OptimizeOptions) *Solver {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.PopulationSize <= 0 {
		opts.PopulationSize = DefaultPopulationSize
	}
	if opts.MutationRate <= 0 {
		opts.MutationRate = DefaultMutationRate
	}
	if opts.EliteRatio <= 0 {
		opts.EliteRatio = DefaultEliteRatio
	}
	// A zero time limit is honored as an immediate deadline (the anytime
	// contract still yields a valid greedy-seeded result); callers wanting
	// the default budget set DefaultTimeLimitMs explicitly.
	if opts.TimeLimitMs < 0 {
		opts.TimeLimitMs = 0
	}
	if opts.PriorityWeight <= 0 {
		opts.PriorityWeight = DefaultPriorityWeight
	}
	if opts.PriorityWeight > 1 {
		opts.PriorityWeight = 1
	}
	return &Solver{opts: opts}
}

// OnProgress registers a snapshot callback.
func (s *Solver) OnProgress(fn ProgressFunc) { s.onProgress = fn }

// run is the per-invocation search state: nodes after pre-filtering, the
// cost matrix, distances from the start position, and the deadline.
type run struct {
	nodes     []model.Node
	start     model.GeoPoint
	vehicle   *model.VehicleProfile
	cons      *model.RouteConstraints
	matrix    *geo.Matrix
	startDist []float64
	deadline  time.Time
	pw        float64
	rng       *rand.Rand
	report    ProgressFunc
}

// Solve validates input, pre-filters nodes, dispatches the strategy and
// fills in aggregate metrics against the shared naive baseline.
func (s *Solver) Solve(p Problem) (model.Solution, error) {
	if len(p.Nodes) == 0 {
		return model.Solution{}, ErrNoNodes
	}
	if !p.Start.Valid() {
		return model.Solution{}, fmt.Errorf("%w: start %+v", ErrInvalidCoordinate, p.Start)
	}
	nodes := make([]model.Node, len(p.Nodes))
	copy(nodes, p.Nodes)
	for i := range nodes {
		if !nodes[i].Position.Valid() {
			return model.Solution{}, fmt.Errorf("%w: node %s", ErrInvalidCoordinate, nodes[i].ID)
		}
		nodes[i].ClampPriority()
	}
	nodes = constraint.FilterValidNodes(nodes, p.Constraints)

	strategy, err := ParseStrategy(s.opts.Algorithm)
	if err != nil {
		return model.Solution{}, err
	}

	if len(nodes) == 1 {
		sol := s.finish(nodes, p, strategy.String(), 0)
		return sol, nil
	}
	if strategy == Hybrid {
		return s.solveHybrid(p)
	}

	seed := s.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := &run{
		nodes:     nodes,
		start:     p.Start,
		vehicle:   p.Vehicle,
		cons:      p.Constraints,
		matrix:    geo.NewMatrix(nodes, p.Vehicle),
		startDist: make([]float64, len(nodes)),
		deadline:  time.Now().Add(time.Duration(s.opts.TimeLimitMs) * time.Millisecond),
		pw:        s.opts.PriorityWeight,
		rng:       rand.New(rand.NewSource(seed)),
		report:    s.onProgress,
	}
	for i, n := range nodes {
		r.startDist[i] = geo.Distance(p.Start, n.Position)
	}

	var order []int
	var iters int
	switch strategy {
	case NearestNeighbor:
		order = r.nearestNeighbor()
		iters = len(order)
	case Genetic:
		order, iters = r.genetic(s.opts)
	default:
		order, iters = r.antColony(s.opts)
	}

	seq := r.sequence(order)
	sol := s.finish(seq, p, strategy.String(), iters)
	return sol, nil
}

// sequence materializes an index order into nodes.
func (r *run) sequence(order []int) []model.Node {
	out := make([]model.Node, len(order))
	for i, idx := range order {
		out[i] = r.nodes[idx]
	}
	return out
}

// orderDistance sums start->first plus inter-node legs over the matrix.
func (r *run) orderDistance(order []int) float64 {
	if len(order) == 0 {
		return 0
	}
	total := r.startDist[order[0]]
	for i := 0; i+1 < len(order); i++ {
		total += r.matrix.Dist[order[i]][order[i+1]]
	}
	return total
}

// penalty scores the order against the constraint bundle, zero without one.
func (r *run) penalty(order []int) float64 {
	if r.cons == nil {
		return 0
	}
	return constraint.Validate(r.sequence(order), r.start, r.vehicle, r.cons).PenaltyScore()
}

func (r *run) expired() bool { return !time.Now().Before(r.deadline) }

func (r *run) progress(algo string, iter int, bestDist float64) {
	if r.report != nil {
		r.report(Progress{Algorithm: algo, Iteration: iter, BestDistanceM: bestDist})
	}
}

// finish attaches totals and the baseline-relative efficiency. The
// baseline covers the same node set as the sequence, so a max-stops
// pre-filter never counts as routing improvement.
func (s *Solver) finish(seq []model.Node, p Problem, algo string, iters int) model.Solution {
	d, t, f := geo.Totals(p.Start, seq, p.Vehicle)
	base := geo.ComputeBaseline(seq, p.Start, p.Vehicle)
	return model.Solution{
		Sequence:       seq,
		TotalDistanceM: d,
		TotalTimeMin:   t,
		FuelCostL:      f,
		Efficiency:     geo.EfficiencyPercent(base.TotalDistanceM, d),
		Algorithm:      algo,
		Iterations:     iters,
	}
}
