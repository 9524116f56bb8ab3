// Package constraint validates candidate sequences against a route
// constraint bundle and scores breaches so the solvers can trade them off.
package constraint

import (
	"fmt"
	"sort"

	"sweepnav/internal/geo"
	"sweepnav/internal/model"
)

// Violation codes, one per independent check.
const (
	CodeMaxStops      = "max_stops_exceeded"
	CodeMandatory     = "mandatory_node_missing"
	CodeMaxDistance   = "max_distance_exceeded"
	CodeMaxDuration   = "max_duration_exceeded"
	CodeCapacity      = "capacity_exceeded"
	CodeTimeWindow    = "time_window_violated"
	CodeForbiddenEdge = "forbidden_edge_used"
)

// Penalty magnitudes, descending by violation class. The spread keeps
// solvers clearing the worst class before optimizing minor ones.
const (
	penaltyMandatory     = 1000000.0
	penaltyForbiddenEdge = 500000.0
	penaltyTimeWindow    = 100000.0
	penaltyCapacity      = 50000.0
	penaltyOverrun       = 10000.0
	penaltyStopCount     = 5000.0
)

// Result is the validator output for one sequence.
type Result struct {
	Valid      bool
	Violations []model.Violation
}

// PenaltyScore folds the violations into one scalar for solver fitness.
func (r Result) PenaltyScore() float64 {
	total := 0.0
	for _, v := range r.Violations {
		switch v.Code {
		case CodeMandatory:
			total += penaltyMandatory
		case CodeForbiddenEdge:
			total += penaltyForbiddenEdge
		case CodeTimeWindow:
			total += penaltyTimeWindow
		case CodeCapacity:
			total += penaltyCapacity
		case CodeMaxDistance, CodeMaxDuration:
			total += penaltyOverrun
		case CodeMaxStops:
			total += penaltyStopCount
		}
	}
	return total
}

// Validate runs every check against the sequence. Checks are independent
// and additive; a sequence can collect several violations at once.
func Validate(seq []model.Node, start model.GeoPoint, vehicle *model.VehicleProfile, c *model.RouteConstraints) Result {
	res := Result{Valid: true}
	if c == nil {
		return res
	}
	add := func(code, severity, detail string) {
		res.Violations = append(res.Violations, model.Violation{Code: code, Severity: severity, Detail: detail})
		if severity == "ERROR" {
			res.Valid = false
		}
	}

	if c.MaxStops > 0 && len(seq) > c.MaxStops {
		add(CodeMaxStops, "WARNING", fmt.Sprintf("%d stops exceed limit %d", len(seq), c.MaxStops))
	}

	present := make(map[string]bool, len(seq))
	for _, n := range seq {
		present[n.ID] = true
	}
	for _, m := range c.MandatoryNodes {
		if !present[m] {
			add(CodeMandatory, "ERROR", fmt.Sprintf("mandatory node %s absent", m))
		}
	}

	totalDist := geo.SequenceDistance(start, seq)
	if c.MaxDistanceM > 0 && totalDist > c.MaxDistanceM {
		add(CodeMaxDistance, "ERROR", fmt.Sprintf("distance %.0fm exceeds limit %.0fm", totalDist, c.MaxDistanceM))
	}

	if dur := routeDuration(seq, start, vehicle, c); c.MaxDurationMin > 0 && dur > c.MaxDurationMin {
		add(CodeMaxDuration, "ERROR", fmt.Sprintf("duration %.1fmin exceeds limit %.1fmin", dur, c.MaxDurationMin))
	}

	if c.VehicleCapacity > 0 && len(c.Demands) > 0 {
		demand := 0.0
		for _, n := range seq {
			demand += c.Demands[n.ID]
		}
		if demand > c.VehicleCapacity {
			add(CodeCapacity, "ERROR", fmt.Sprintf("demand %.1f exceeds capacity %.1f", demand, c.VehicleCapacity))
		}
	}

	for _, v := range timeWindowBreaches(seq, start, vehicle, c) {
		add(CodeTimeWindow, "ERROR", v)
	}

	for i := 0; i+1 < len(seq); i++ {
		if forbidden(c.ForbiddenEdges, seq[i].ID, seq[i+1].ID) {
			add(CodeForbiddenEdge, "ERROR", fmt.Sprintf("edge %s-%s is forbidden", seq[i].ID, seq[i+1].ID))
		}
	}
	return res
}

// routeDuration walks the sequence accumulating travel and service time,
// inserting a break every BreakAfterHours of accumulated duration. Break
// cadence follows accumulated duration, not continuous driving time.
func routeDuration(seq []model.Node, start model.GeoPoint, vehicle *model.VehicleProfile, c *model.RouteConstraints) float64 {
	dur := 0.0
	cur := start
	nextBreakAt := 0.0
	if c.BreakAfterHours > 0 {
		nextBreakAt = c.BreakAfterHours * 60
	}
	for _, n := range seq {
		d := geo.Distance(cur, n.Position)
		dur += geo.TravelTimeMin(d, vehicle)
		dur += c.ServiceTimeFor(n.ID)
		if nextBreakAt > 0 && dur >= nextBreakAt {
			dur += c.BreakDurationMin
			nextBreakAt += c.BreakAfterHours * 60
		}
		cur = n.Position
	}
	return dur
}

// timeWindowBreaches simulates the route with a running clock. The clock
// waits until a node's earliest time before service starts; a breach is
// flagged when departure would pass the latest time.
func timeWindowBreaches(seq []model.Node, start model.GeoPoint, vehicle *model.VehicleProfile, c *model.RouteConstraints) []string {
	if len(c.TimeWindows) == 0 {
		return nil
	}
	var out []string
	clock := 0.0
	cur := start
	for _, n := range seq {
		clock += geo.TravelTimeMin(geo.Distance(cur, n.Position), vehicle)
		tw, ok := c.TimeWindows[n.ID]
		if ok && clock < tw.EarliestMin {
			clock = tw.EarliestMin
		}
		clock += c.ServiceTimeFor(n.ID)
		if ok && tw.LatestMin > 0 && clock > tw.LatestMin {
			out = append(out, fmt.Sprintf("node %s departs at %.1fmin after window end %.1fmin", n.ID, clock, tw.LatestMin))
		}
		cur = n.Position
	}
	return out
}

func forbidden(edges [][2]string, a, b string) bool {
	for _, e := range edges {
		if (e[0] == a && e[1] == b) || (e[0] == b && e[1] == a) {
			return true
		}
	}
	return false
}

// FilterValidNodes enforces the max-stops pre-filter: every mandatory node
// is kept, then the highest-priority optional nodes fill the remaining
// capacity. Without a binding max-stops limit the input is returned as is.
func FilterValidNodes(nodes []model.Node, c *model.RouteConstraints) []model.Node {
	if c == nil || c.MaxStops <= 0 || len(nodes) <= c.MaxStops {
		return nodes
	}
	kept := make([]model.Node, 0, c.MaxStops)
	var optional []model.Node
	for _, n := range nodes {
		if c.HasMandatory(n.ID) {
			kept = append(kept, n)
		} else {
			optional = append(optional, n)
		}
	}
	sort.SliceStable(optional, func(i, j int) bool {
		return optional[i].Priority > optional[j].Priority
	})
	for _, n := range optional {
		if len(kept) >= c.MaxStops {
			break
		}
		kept = append(kept, n)
	}
	return kept
}
