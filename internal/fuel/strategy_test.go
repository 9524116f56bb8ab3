package fuel

import (
	"math"
	"testing"

	"sweepnav/internal/model"
)

func TestEfficiencyCurve(t *testing.T) {
	if got := Efficiency(15); got != 1.0 {
		t.Fatalf("Efficiency(15) = %f, want 1.0", got)
	}
	if got := Efficiency(12.5); math.Abs(got-0.925) > 1e-9 {
		t.Fatalf("Efficiency(12.5) = %f, want 0.925", got)
	}
	if got := Efficiency(80); got != 0.5 {
		t.Fatalf("Efficiency(80) = %f, want tail value 0.5", got)
	}
	if got := Efficiency(-3); got != 0.4 {
		t.Fatalf("Efficiency(-3) = %f, want head value 0.4", got)
	}
}

func TestCleaningEffectiveness(t *testing.T) {
	if got := CleaningEffectiveness(5, "normal"); got != 1.0 {
		t.Fatalf("effectiveness at 5 km/h = %f, want 1.0", got)
	}
	if got := CleaningEffectiveness(15, "heavy"); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("heavy at 15 km/h = %f, want 0.5", got)
	}
	if got := CleaningEffectiveness(200, "heavy"); got != 0.2 {
		t.Fatalf("floor = %f, want 0.2", got)
	}
}

func TestBestSpeedStaysInBounds(t *testing.T) {
	for _, cond := range []string{"light", "normal", "heavy", "unknown"} {
		s := BestSpeed(cond)
		bounds, ok := speedBounds[cond]
		if !ok {
			bounds = speedBounds["normal"]
		}
		if s < bounds[0] || s > bounds[1] {
			t.Fatalf("%s: best speed %f outside [%f,%f]", cond, s, bounds[0], bounds[1])
		}
	}
	// Heavy soiling pushes the optimum below the normal one.
	if BestSpeed("heavy") >= BestSpeed("normal") {
		t.Fatalf("heavy best %f not below normal best %f", BestSpeed("heavy"), BestSpeed("normal"))
	}
}

func TestCostLMultipliers(t *testing.T) {
	base := Segment{LengthM: 1000, Surface: "asphalt", Condition: "normal"}
	cobble := base
	cobble.Surface = "cobblestone"
	v := &model.VehicleProfile{FuelType: "diesel"}
	if CostL(cobble, v, 15) <= CostL(base, v, 15) {
		t.Fatal("cobblestone not more expensive than asphalt")
	}

	withTurns := base
	withTurns.Turns = 5
	if CostL(withTurns, v, 15) <= CostL(base, v, 15) {
		t.Fatal("turn penalty not applied")
	}

	ev := &model.VehicleProfile{FuelType: "electric"}
	if CostL(base, ev, 15) >= CostL(base, v, 15) {
		t.Fatal("electric not cheaper than diesel")
	}
}

func TestPlanEmitsSpeedAdviceAboveThreshold(t *testing.T) {
	segs := []Segment{
		{ID: "fast", LengthM: 2000, Condition: "normal", CurrentSpeedKmh: 30},
		{ID: "tuned", LengthM: 2000, Condition: "normal", CurrentSpeedKmh: BestSpeed("normal")},
	}
	plan := Plan(segs, &model.VehicleProfile{FuelType: "diesel"})
	if len(plan.SpeedAdvice) != 1 {
		t.Fatalf("advice count %d, want 1", len(plan.SpeedAdvice))
	}
	adv := plan.SpeedAdvice[0]
	if adv.SegmentID != "fast" {
		t.Fatalf("advice for %s, want fast", adv.SegmentID)
	}
	if adv.FuelSavedL <= 0 {
		t.Fatalf("non-positive saving %f", adv.FuelSavedL)
	}
	if plan.OptimizedFuelL >= plan.CurrentFuelL {
		t.Fatalf("optimized %f not below current %f", plan.OptimizedFuelL, plan.CurrentFuelL)
	}
}

func TestPlanGroupsEquipmentBySignature(t *testing.T) {
	segs := []Segment{
		{ID: "a", LengthM: 500, Surface: "asphalt", Condition: "heavy", CurrentSpeedKmh: 10},
		{ID: "b", LengthM: 500, Surface: "asphalt", Condition: "heavy", CurrentSpeedKmh: 10},
		{ID: "c", LengthM: 500, Surface: "cobblestone", Condition: "light", CurrentSpeedKmh: 10},
	}
	plan := Plan(segs, nil)
	if len(plan.EquipmentAdvice) != 2 {
		t.Fatalf("equipment advice count %d, want 2", len(plan.EquipmentAdvice))
	}
	for _, adv := range plan.EquipmentAdvice {
		if adv.SuctionPc <= 0 || adv.SuctionPc > 100 ||
			adv.WaterPc <= 0 || adv.WaterPc > 100 ||
			adv.BrushSpeedPc <= 0 || adv.BrushSpeedPc > 100 {
			t.Fatalf("setting out of range: %+v", adv)
		}
	}
	// Heavy asphalt demands more suction than light cobblestone.
	var heavy, light model.EquipmentAdvice
	for _, adv := range plan.EquipmentAdvice {
		if adv.Condition == "heavy" {
			heavy = adv
		} else {
			light = adv
		}
	}
	if heavy.SuctionPc <= light.SuctionPc {
		t.Fatalf("heavy suction %f not above light %f", heavy.SuctionPc, light.SuctionPc)
	}
}

func TestSegmentsFromItems(t *testing.T) {
	items := []model.WorkItem{
		{Node: model.Node{ID: "x", Position: model.GeoPoint{Lng: 0, Lat: 0}}, Surface: "asphalt", Condition: "normal"},
		{Node: model.Node{ID: "y", Position: model.GeoPoint{Lng: 0.001, Lat: 0}}, Surface: "concrete", Condition: "heavy"},
		{Node: model.Node{ID: "z", Position: model.GeoPoint{Lng: 0.002, Lat: 0}}},
	}
	segs := SegmentsFromItems(items, &model.VehicleProfile{AvgSpeedKmh: 12})
	if len(segs) != 2 {
		t.Fatalf("segments %d, want 2", len(segs))
	}
	if segs[0].Surface != "asphalt" || segs[1].Surface != "concrete" {
		t.Fatalf("surfaces %s, %s", segs[0].Surface, segs[1].Surface)
	}
	if segs[0].LengthM < 100 || segs[0].LengthM > 120 {
		t.Fatalf("leg length %f, want ~111", segs[0].LengthM)
	}
	if segs[0].CurrentSpeedKmh != 12 {
		t.Fatalf("current speed %f, want 12", segs[0].CurrentSpeedKmh)
	}
}
