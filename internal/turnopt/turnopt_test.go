package turnopt

import (
	"math"
	"testing"

	"sweepnav/internal/model"
)

const metersPerDeg = 111194.92664455873

func pt(xM, yM float64) model.GeoPoint {
	return model.GeoPoint{Lng: xM / metersPerDeg, Lat: yM / metersPerDeg}
}

func seg(id string, pts ...model.GeoPoint) Segment {
	return Segment{ID: id, Points: pts}
}

func TestClassifyJunction(t *testing.T) {
	east := seg("a", pt(0, 0), pt(100, 0))
	cases := []struct {
		name string
		next Segment
		want string
	}{
		{"straight", seg("b", pt(100, 0), pt(200, 0)), TurnNormal},
		{"right angle", seg("b", pt(100, 0), pt(100, -100)), TurnSharp},
		{"back track", seg("b", pt(100, 0), pt(0, 0)), TurnUTurn},
	}
	for _, c := range cases {
		if got := ClassifyJunction(east, c.next); got != c.want {
			t.Errorf("%s: junction = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestMinimizeTurnsRelinksByProximity(t *testing.T) {
	// Given out of order: the middle leg comes last.
	segments := []Segment{
		seg("a", pt(0, 0), pt(100, 0)),
		seg("c", pt(200, 0), pt(300, 0)),
		seg("b", pt(100, 0), pt(200, 0)),
	}
	out := MinimizeTurns(segments, nil)
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if out[i].ID != id {
			t.Fatalf("order %v, want %v", idsOf(out), want)
		}
	}
}

func TestMinimizeTurnsReversesBackwardSegment(t *testing.T) {
	// b is given pointing back toward a; reversing it removes both the
	// gap and the U-turn.
	segments := []Segment{
		seg("a", pt(0, 0), pt(100, 0)),
		seg("b", pt(300, 0), pt(100, 0)),
		seg("c", pt(300, 0), pt(400, 0)),
	}
	out := MinimizeTurns(segments, nil)
	if out[1].ID != "b" {
		t.Fatalf("order %v, want b second", idsOf(out))
	}
	if d := math.Abs(out[1].Start().Lng - pt(100, 0).Lng); d > 1e-9 {
		t.Fatalf("segment b not reversed, starts at lng %f", out[1].Start().Lng)
	}
	if got := ClassifyJunction(out[0], out[1]); got != TurnNormal {
		t.Fatalf("junction after reversal = %s, want normal", got)
	}
}

func TestTurnRadiusGateBarsUTurn(t *testing.T) {
	// Next-door candidate needs an immediate U-turn the truck cannot
	// make; the farther straight-ahead candidate must win.
	segments := []Segment{
		seg("a", pt(0, 0), pt(100, 0)),
		seg("uturn", pt(100, 0), pt(0, 0)),
		seg("ahead", pt(150, 0), pt(250, 0)),
	}
	v := &model.VehicleProfile{TurnRadiusM: 12}
	out := MinimizeTurns(segments, v)
	if out[1].ID != "ahead" {
		t.Fatalf("order %v, want ahead second", idsOf(out))
	}
}

func TestReduceOverlapTrimsLaterSegment(t *testing.T) {
	// Second segment retraces the first within tolerance, then
	// continues on.
	segments := []Segment{
		seg("a", pt(0, 0), pt(50, 0), pt(100, 0)),
		seg("b", pt(100, 3), pt(50, 3), pt(50, 200)),
	}
	out, trimmedM := ReduceOverlap(segments, DefaultOverlapToleranceM)
	if len(out) != 2 {
		t.Fatalf("segments %d, want 2", len(out))
	}
	// The junction point survives, the retraced midpoint does not.
	if len(out[1].Points) != 2 {
		t.Fatalf("later segment kept %d points, want 2", len(out[1].Points))
	}
	if trimmedM <= 0 {
		t.Fatal("no trimmed length reported")
	}
}

func TestReduceOverlapDropsFullyCoveredSegment(t *testing.T) {
	segments := []Segment{
		seg("a", pt(0, 0), pt(100, 0)),
		seg("dup", pt(2, 0), pt(98, 0)),
	}
	out, trimmedM := ReduceOverlap(segments, DefaultOverlapToleranceM)
	if len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("segments %v, want only a", idsOf(out))
	}
	if trimmedM < 90 {
		t.Fatalf("trimmed %f m, want ~96", trimmedM)
	}
}

func TestOptimizeReportsSavings(t *testing.T) {
	// Scrambled order full of U-turns; re-linking straightens it.
	segments := []Segment{
		seg("a", pt(0, 0), pt(100, 0)),
		seg("d", pt(300, 0), pt(400, 0)),
		seg("b", pt(100, 0), pt(200, 0)),
		seg("c", pt(200, 0), pt(300, 0)),
	}
	out, st := Optimize(segments, &model.VehicleProfile{AvgSpeedKmh: 30, ConsumptionL100: 10})
	if len(out) != 4 {
		t.Fatalf("segments %d, want 4", len(out))
	}
	if st.UTurnsAfter > st.UTurnsBefore {
		t.Fatalf("u-turns grew: %d -> %d", st.UTurnsBefore, st.UTurnsAfter)
	}
	if st.FuelSavedL < 0 || st.TimeSavedMin < 0 {
		t.Fatalf("negative savings %+v", st)
	}
	want := []string{"a", "b", "c", "d"}
	for i, id := range want {
		if out[i].ID != id {
			t.Fatalf("order %v, want %v", idsOf(out), want)
		}
	}
}

func TestSegmentsFromItems(t *testing.T) {
	items := []model.WorkItem{
		{Node: model.Node{ID: "x", Position: pt(0, 0)}},
		{Node: model.Node{ID: "y", Position: pt(100, 0)}},
		{Node: model.Node{ID: "z", Position: pt(200, 0)}},
	}
	segs := SegmentsFromItems(items)
	if len(segs) != 2 {
		t.Fatalf("segments %d, want 2", len(segs))
	}
	if segs[0].ID != "x" || segs[1].ID != "y" {
		t.Fatalf("segment ids %v", idsOf(segs))
	}
}

func idsOf(segs []Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.ID
	}
	return out
}
