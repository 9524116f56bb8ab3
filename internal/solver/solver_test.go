package solver

import (
	"errors"
	"math"
	"testing"
	"time"

	"sweepnav/internal/geo"
	"sweepnav/internal/model"
)

// lineProblem places nodes on the equator at the given meter offsets east
// of the start position.
func lineProblem(offsetsM ...float64) Problem {
	const metersPerDeg = 111194.92664455873 // haversine meters per degree at lat 0
	nodes := make([]model.Node, len(offsetsM))
	for i, off := range offsetsM {
		nodes[i] = model.Node{
			ID:       string(rune('A' + i)),
			Position: model.GeoPoint{Lng: off / metersPerDeg, Lat: 0},
			Priority: 50,
		}
	}
	return Problem{Nodes: nodes, Start: model.GeoPoint{Lng: 0, Lat: 0}}
}

func assertPermutation(t *testing.T, in []model.Node, seq []model.Node) {
	t.Helper()
	if len(seq) != len(in) {
		t.Fatalf("sequence length %d, want %d", len(seq), len(in))
	}
	seen := map[string]bool{}
	for _, n := range seq {
		if seen[n.ID] {
			t.Fatalf("duplicate node %s in sequence", n.ID)
		}
		seen[n.ID] = true
	}
	for _, n := range in {
		if !seen[n.ID] {
			t.Fatalf("node %s missing from sequence", n.ID)
		}
	}
}

func TestSolveEmptyInput(t *testing.T) {
	s := New(model.OptimizeOptions{Algorithm: "nearest_neighbor"})
	_, err := s.Solve(Problem{Start: model.GeoPoint{}})
	if !errors.Is(err, ErrNoNodes) {
		t.Fatalf("err = %v, want ErrNoNodes", err)
	}
}

func TestSolveInvalidCoordinate(t *testing.T) {
	p := Problem{
		Nodes: []model.Node{{ID: "x", Position: model.GeoPoint{Lng: 999, Lat: 0}}},
		Start: model.GeoPoint{},
	}
	s := New(model.OptimizeOptions{Algorithm: "nearest_neighbor"})
	if _, err := s.Solve(p); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("err = %v, want ErrInvalidCoordinate", err)
	}
}

func TestSolveSingleNode(t *testing.T) {
	p := lineProblem(100)
	for _, algo := range []string{"nearest_neighbor", "genetic", "ant_colony", "hybrid"} {
		s := New(model.OptimizeOptions{Algorithm: algo, TimeLimitMs: 50})
		sol, err := s.Solve(p)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		if len(sol.Sequence) != 1 || sol.Sequence[0].ID != "A" {
			t.Fatalf("%s: unexpected sequence %v", algo, sol.Sequence)
		}
	}
}

func TestNearestNeighborLineScenario(t *testing.T) {
	p := lineProblem(0, 100, 200, 300, 400)
	s := New(model.OptimizeOptions{Algorithm: "nearest_neighbor"})
	sol, err := s.Solve(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A", "B", "C", "D", "E"}
	for i, id := range want {
		if sol.Sequence[i].ID != id {
			t.Fatalf("sequence[%d] = %s, want %s", i, sol.Sequence[i].ID, id)
		}
	}
	// Total distance along the line equals the farthest offset.
	expected := geo.Distance(model.GeoPoint{Lng: 0, Lat: 0}, p.Nodes[4].Position)
	if math.Abs(sol.TotalDistanceM-expected) > 1 {
		t.Fatalf("total distance %f, want ~%f", sol.TotalDistanceM, expected)
	}
}

func TestAllStrategiesReturnPermutation(t *testing.T) {
	p := lineProblem(50, 400, 120, 330, 80, 270, 190)
	for _, algo := range []string{"nearest_neighbor", "genetic", "ant_colony", "hybrid"} {
		s := New(model.OptimizeOptions{Algorithm: algo, TimeLimitMs: 100, MaxIterations: 40, Seed: 7})
		sol, err := s.Solve(p)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		assertPermutation(t, p.Nodes, sol.Sequence)
	}
}

func TestGeneticZeroTimeLimitTerminates(t *testing.T) {
	p := lineProblem(10, 600, 30, 500, 90, 250)
	s := New(model.OptimizeOptions{Algorithm: "genetic", TimeLimitMs: 0, Seed: 1})
	done := make(chan model.Solution, 1)
	go func() {
		sol, err := s.Solve(p)
		if err != nil {
			t.Error(err)
		}
		done <- sol
	}()
	select {
	case sol := <-done:
		assertPermutation(t, p.Nodes, sol.Sequence)
	case <-time.After(2 * time.Second):
		t.Fatal("genetic run did not terminate with zero time limit")
	}
}

func TestHybridNotWorseThanNearestNeighbor(t *testing.T) {
	p := lineProblem(420, 60, 310, 150, 270, 30, 500, 220)
	nn, err := New(model.OptimizeOptions{Algorithm: "nearest_neighbor"}).Solve(p)
	if err != nil {
		t.Fatal(err)
	}
	hy, err := New(model.OptimizeOptions{Algorithm: "hybrid", TimeLimitMs: 300, MaxIterations: 60, Seed: 3}).Solve(p)
	if err != nil {
		t.Fatal(err)
	}
	if hy.TotalDistanceM > nn.TotalDistanceM+1e-6 {
		t.Fatalf("hybrid %f worse than nearest neighbor %f", hy.TotalDistanceM, nn.TotalDistanceM)
	}
}

func TestMaxStopsFilterKeepsMandatory(t *testing.T) {
	p := lineProblem(100, 200, 300, 400, 500, 600)
	// Node F is mandatory; limit to two stops.
	cons := &model.RouteConstraints{MaxStops: 2, MandatoryNodes: []string{"F"}}
	p.Constraints = cons
	s := New(model.OptimizeOptions{Algorithm: "nearest_neighbor"})
	sol, err := s.Solve(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(sol.Sequence) > 2 {
		t.Fatalf("sequence length %d, want <= 2", len(sol.Sequence))
	}
	hasF := false
	for _, n := range sol.Sequence {
		if n.ID == "F" {
			hasF = true
		}
	}
	if !hasF {
		t.Fatal("mandatory node F missing after max-stops filtering")
	}
}

func TestEfficiencyIgnoresDroppedStops(t *testing.T) {
	p := lineProblem(100, 200, 300, 400, 500, 600)
	p.Constraints = &model.RouteConstraints{MaxStops: 2}
	s := New(model.OptimizeOptions{Algorithm: "nearest_neighbor"})
	sol, err := s.Solve(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(sol.Sequence) != 2 {
		t.Fatalf("sequence length %d, want 2", len(sol.Sequence))
	}
	// On a line the greedy order equals the baseline over the same two
	// nodes; efficiency must be zero, not the gain from dropping stops.
	if sol.Efficiency != 0 {
		t.Fatalf("efficiency %f, want 0", sol.Efficiency)
	}
}

func TestGeneticAvoidsForbiddenEdgeWhenPossible(t *testing.T) {
	p := lineProblem(100, 200, 300, 400)
	p.Constraints = &model.RouteConstraints{ForbiddenEdges: [][2]string{{"A", "B"}}}
	s := New(model.OptimizeOptions{Algorithm: "genetic", TimeLimitMs: 500, MaxIterations: 120, Seed: 11})
	sol, err := s.Solve(p)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+1 < len(sol.Sequence); i++ {
		a, b := sol.Sequence[i].ID, sol.Sequence[i+1].ID
		if (a == "A" && b == "B") || (a == "B" && b == "A") {
			t.Fatalf("forbidden edge %s-%s used", a, b)
		}
	}
}

func TestProgressCallbackFires(t *testing.T) {
	p := lineProblem(40, 300, 120, 260, 90)
	s := New(model.OptimizeOptions{Algorithm: "genetic", TimeLimitMs: 200, MaxIterations: 60, Seed: 5})
	count := 0
	s.OnProgress(func(pr Progress) {
		if pr.Algorithm != "genetic" {
			t.Errorf("unexpected algorithm %s", pr.Algorithm)
		}
		count++
	})
	if _, err := s.Solve(p); err != nil {
		t.Fatal(err)
	}
	if count == 0 {
		t.Fatal("no progress snapshots emitted")
	}
}

func TestParseStrategy(t *testing.T) {
	if st, err := ParseStrategy(""); err != nil || st != Hybrid {
		t.Fatalf("empty name: %v %v", st, err)
	}
	if _, err := ParseStrategy("simulated_annealing"); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
