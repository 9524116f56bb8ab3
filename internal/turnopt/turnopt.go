// Package turnopt is a post-pass over an already-ordered list of path
// segments. It re-links segments to cut sharp turns and U-turns, and
// trims points covered more than once. It never invents geometry; it
// only reorders, reverses and drops.
package turnopt

import (
	"sweepnav/internal/geo"
	"sweepnav/internal/model"
)

// Junction classes by bearing change between consecutive segments.
const (
	TurnNormal = "normal" // < 90 degrees
	TurnSharp  = "sharp"  // 90 to 150
	TurnUTurn  = "u_turn" // >= 150
)

// Bearing-change thresholds in degrees.
const (
	sharpTurnDeg = 90
	uTurnDeg     = 150

	// Overlapping points closer than this are duplicates.
	DefaultOverlapToleranceM = 10

	// Reverse a segment only when it cuts the junction cost by more
	// than this fraction.
	reversalGainFraction = 0.20
)

// Per-junction cost estimates used for the savings report.
const (
	sharpTurnFuelL   = 0.02
	sharpTurnTimeMin = 0.2
	uTurnFuelL       = 0.05
	uTurnTimeMin     = 0.5
)

// Segment is one directed polyline of a route.
type Segment struct {
	ID     string           `json:"id"`
	Points []model.GeoPoint `json:"points"`
}

// Start returns the first point of the segment.
func (s Segment) Start() model.GeoPoint { return s.Points[0] }

// End returns the last point of the segment.
func (s Segment) End() model.GeoPoint { return s.Points[len(s.Points)-1] }

// Reversed returns the segment traversed in the opposite direction.
func (s Segment) Reversed() Segment {
	pts := make([]model.GeoPoint, len(s.Points))
	for i, p := range s.Points {
		pts[len(pts)-1-i] = p
	}
	return Segment{ID: s.ID, Points: pts}
}

// LengthM sums the segment's leg distances.
func (s Segment) LengthM() float64 {
	total := 0.0
	for i := 0; i+1 < len(s.Points); i++ {
		total += geo.Distance(s.Points[i], s.Points[i+1])
	}
	return total
}

// exitBearing is the heading while leaving the segment's end.
func (s Segment) exitBearing() float64 {
	n := len(s.Points)
	if n < 2 {
		return 0
	}
	return geo.Bearing(s.Points[n-2], s.Points[n-1])
}

// entryBearing is the heading while entering the segment's start.
func (s Segment) entryBearing() float64 {
	if len(s.Points) < 2 {
		return 0
	}
	return geo.Bearing(s.Points[0], s.Points[1])
}

// ClassifyJunction labels the transition from a to b.
func ClassifyJunction(a, b Segment) string {
	delta := geo.BearingDelta(a.exitBearing(), b.entryBearing())
	switch {
	case delta >= uTurnDeg:
		return TurnUTurn
	case delta >= sharpTurnDeg:
		return TurnSharp
	default:
		return TurnNormal
	}
}

// Stats reports the effect of the two passes.
type Stats struct {
	SharpTurnsBefore int     `json:"sharpTurnsBefore"`
	SharpTurnsAfter  int     `json:"sharpTurnsAfter"`
	UTurnsBefore     int     `json:"uTurnsBefore"`
	UTurnsAfter      int     `json:"uTurnsAfter"`
	OverlapTrimmedM  float64 `json:"overlapTrimmedM"`
	FuelSavedL       float64 `json:"fuelSavedL"`
	TimeSavedMin     float64 `json:"timeSavedMin"`
}

// Optimize runs turn minimization then overlap reduction and reports
// the combined savings estimate.
func Optimize(segments []Segment, vehicle *model.VehicleProfile) ([]Segment, Stats) {
	var st Stats
	if len(segments) == 0 {
		return segments, st
	}
	st.SharpTurnsBefore, st.UTurnsBefore = countTurns(segments)

	relinked := MinimizeTurns(segments, vehicle)
	st.SharpTurnsAfter, st.UTurnsAfter = countTurns(relinked)

	trimmed, trimmedM := ReduceOverlap(relinked, DefaultOverlapToleranceM)
	st.OverlapTrimmedM = trimmedM

	st.FuelSavedL = float64(st.SharpTurnsBefore-st.SharpTurnsAfter)*sharpTurnFuelL +
		float64(st.UTurnsBefore-st.UTurnsAfter)*uTurnFuelL +
		geo.FuelLiters(trimmedM, vehicle)
	st.TimeSavedMin = float64(st.SharpTurnsBefore-st.SharpTurnsAfter)*sharpTurnTimeMin +
		float64(st.UTurnsBefore-st.UTurnsAfter)*uTurnTimeMin +
		geo.TravelTimeMin(trimmedM, vehicle)
	if st.FuelSavedL < 0 {
		st.FuelSavedL = 0
	}
	if st.TimeSavedMin < 0 {
		st.TimeSavedMin = 0
	}
	return trimmed, st
}

func countTurns(segments []Segment) (sharp, uturn int) {
	for i := 0; i+1 < len(segments); i++ {
		switch ClassifyJunction(segments[i], segments[i+1]) {
		case TurnSharp:
			sharp++
		case TurnUTurn:
			uturn++
		}
	}
	return
}

// MinimizeTurns rebuilds the segment order greedily: from the current
// segment end, pick the unused segment (in either direction) with the
// lowest junction cost. The first segment anchors the walk.
func MinimizeTurns(segments []Segment, vehicle *model.VehicleProfile) []Segment {
	if len(segments) < 3 {
		return segments
	}
	used := make([]bool, len(segments))
	out := make([]Segment, 0, len(segments))
	cur := segments[0]
	used[0] = true
	out = append(out, cur)

	for len(out) < len(segments) {
		bestIdx := -1
		var bestSeg Segment
		bestCost := 0.0
		for i, cand := range segments {
			if used[i] {
				continue
			}
			forward := junctionCost(cur, cand, vehicle)
			seg := cand
			cost := forward
			if len(cand.Points) > 1 {
				rev := cand.Reversed()
				if c := junctionCost(cur, rev, vehicle); c < forward*(1-reversalGainFraction) {
					seg, cost = rev, c
				}
			}
			if bestIdx < 0 || cost < bestCost {
				bestIdx, bestSeg, bestCost = i, seg, cost
			}
		}
		used[bestIdx] = true
		cur = bestSeg
		out = append(out, bestSeg)
	}
	return out
}

// junctionCost blends gap distance with bearing continuity. Turns the
// vehicle cannot make within its turn radius are effectively barred.
func junctionCost(from, to Segment, vehicle *model.VehicleProfile) float64 {
	gap := geo.Distance(from.End(), to.Start())
	delta := geo.BearingDelta(from.exitBearing(), to.entryBearing())
	cost := gap + delta*2
	if vehicle != nil && vehicle.TurnRadiusM > 0 &&
		delta >= uTurnDeg && gap < 2*vehicle.TurnRadiusM {
		cost += 1e6
	}
	return cost
}

// ReduceOverlap drops, from each segment, points lying within
// toleranceM of any point of an earlier segment. Segments left with a
// single point are dropped entirely; trimmed length is returned.
func ReduceOverlap(segments []Segment, toleranceM float64) ([]Segment, float64) {
	if toleranceM <= 0 {
		toleranceM = DefaultOverlapToleranceM
	}
	out := make([]Segment, 0, len(segments))
	trimmedM := 0.0
	for i, seg := range segments {
		kept := make([]model.GeoPoint, 0, len(seg.Points))
		for k, p := range seg.Points {
			// A segment's first point meeting the previous segment's
			// end is the junction, not redundant coverage.
			junction := k == 0 && i > 0 &&
				geo.Distance(p, segments[i-1].End()) <= toleranceM
			if !junction && coveredBefore(p, segments[:i], toleranceM) {
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			trimmedM += seg.LengthM()
			continue
		}
		trimmed := Segment{ID: seg.ID, Points: kept}
		trimmedM += seg.LengthM() - trimmed.LengthM()
		out = append(out, trimmed)
	}
	if trimmedM < 0 {
		trimmedM = 0
	}
	return out, trimmedM
}

func coveredBefore(p model.GeoPoint, earlier []Segment, toleranceM float64) bool {
	for _, seg := range earlier {
		for _, q := range seg.Points {
			if geo.Distance(p, q) <= toleranceM {
				return true
			}
		}
	}
	return false
}

// SegmentsFromItems converts an ordered item list into leg segments,
// one per consecutive pair, named after the leg's first item.
func SegmentsFromItems(items []model.WorkItem) []Segment {
	var segs []Segment
	for i := 0; i+1 < len(items); i++ {
		segs = append(segs, Segment{
			ID:     items[i].ID,
			Points: []model.GeoPoint{items[i].Position, items[i+1].Position},
		})
	}
	return segs
}
