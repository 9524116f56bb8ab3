// Package fuel models per-vehicle fuel burn for cleaning work and
// recommends cruise speeds and equipment settings per segment. Numbers
// feed back into route metrics; nothing here changes the route order.
package fuel

import (
	"fmt"
	"math"
	"sort"

	"sweepnav/internal/geo"
	"sweepnav/internal/model"
)

// Speed deltas at or below this are noise, not advice.
const speedAdviceThresholdKmh = 2.0

// vehicleModel is the static fuel model for one fuel type.
type vehicleModel struct {
	baseLPerKm      float64
	equipLPerKm     float64 // cleaning equipment overhead while sweeping
	turnPenaltyL    float64
	idleLPerMin     float64
	electricDivisor float64 // >1 scales everything down for electric drive
}

var vehicleModels = map[string]vehicleModel{
	"diesel":   {baseLPerKm: 0.35, equipLPerKm: 0.12, turnPenaltyL: 0.04, idleLPerMin: 0.03},
	"petrol":   {baseLPerKm: 0.30, equipLPerKm: 0.10, turnPenaltyL: 0.035, idleLPerMin: 0.025},
	"hybrid":   {baseLPerKm: 0.22, equipLPerKm: 0.10, turnPenaltyL: 0.02, idleLPerMin: 0.005},
	"electric": {baseLPerKm: 0.35, equipLPerKm: 0.12, turnPenaltyL: 0.04, idleLPerMin: 0.03, electricDivisor: 4},
}

func modelFor(fuelType string) vehicleModel {
	if m, ok := vehicleModels[fuelType]; ok {
		return m
	}
	return vehicleModels["diesel"]
}

var surfaceMultiplier = map[string]float64{
	"asphalt":     1.0,
	"concrete":    1.05,
	"cobblestone": 1.25,
	"gravel":      1.35,
}

var conditionMultiplier = map[string]float64{
	"light":  0.9,
	"normal": 1.0,
	"heavy":  1.2,
}

// Feasible sweeping speed ranges per condition, km/h.
var speedBounds = map[string][2]float64{
	"light":  {8, 25},
	"normal": {6, 20},
	"heavy":  {4, 15},
}

func multiplierOr1(table map[string]float64, key string) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return 1.0
}

// efficiencyCurve maps speed to relative fuel efficiency, peaking in
// the mid teens and falling off both ways. Piecewise linear.
var efficiencyCurve = [][2]float64{
	{0, 0.4}, {5, 0.6}, {10, 0.85}, {15, 1.0}, {20, 0.9}, {30, 0.7}, {50, 0.5},
}

// Efficiency interpolates the speed/efficiency curve.
func Efficiency(speedKmh float64) float64 {
	pts := efficiencyCurve
	if speedKmh <= pts[0][0] {
		return pts[0][1]
	}
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		if speedKmh <= b[0] {
			t := (speedKmh - a[0]) / (b[0] - a[0])
			return a[1] + t*(b[1]-a[1])
		}
	}
	return pts[len(pts)-1][1]
}

// CleaningEffectiveness falls with speed, faster on heavy soiling.
// Clamped to [0.2, 1].
func CleaningEffectiveness(speedKmh float64, condition string) float64 {
	slope := 0.02
	if condition == "heavy" {
		slope = 0.05
	}
	e := 1.0 - slope*math.Max(0, speedKmh-5)
	if e < 0.2 {
		e = 0.2
	}
	return e
}

// Segment is one stretch of route with homogeneous surface/condition.
type Segment struct {
	ID              string
	LengthM         float64
	Surface         string
	Condition       string
	CurrentSpeedKmh float64
	Turns           int
	IdleMin         float64
}

// SegmentsFromItems builds fuel segments from an ordered route, one
// per leg, carrying the leg's origin surface and condition.
func SegmentsFromItems(items []model.WorkItem, v *model.VehicleProfile) []Segment {
	speed := geo.DefaultSpeedKmh
	if v != nil && v.AvgSpeedKmh > 0 {
		speed = v.AvgSpeedKmh
	}
	var segs []Segment
	for i := 0; i+1 < len(items); i++ {
		segs = append(segs, Segment{
			ID:              items[i].ID,
			LengthM:         geo.Distance(items[i].Position, items[i+1].Position),
			Surface:         items[i].Surface,
			Condition:       items[i].Condition,
			CurrentSpeedKmh: speed,
		})
	}
	return segs
}

// CostL computes the segment's fuel burn at the given speed.
func CostL(seg Segment, v *model.VehicleProfile, speedKmh float64) float64 {
	fuelType := ""
	if v != nil {
		fuelType = v.FuelType
	}
	m := modelFor(fuelType)
	km := seg.LengthM / 1000
	cost := km * m.baseLPerKm *
		multiplierOr1(surfaceMultiplier, seg.Surface) *
		multiplierOr1(conditionMultiplier, seg.Condition) /
		Efficiency(speedKmh)
	cost += km * m.equipLPerKm
	cost += float64(seg.Turns) * m.turnPenaltyL
	cost += seg.IdleMin * m.idleLPerMin
	if m.electricDivisor > 1 {
		cost /= m.electricDivisor
	}
	return cost
}

// BestSpeed searches the condition's feasible range for the speed
// maximizing efficiency times cleaning effectiveness.
func BestSpeed(condition string) float64 {
	bounds, ok := speedBounds[condition]
	if !ok {
		bounds = speedBounds["normal"]
	}
	best, bestScore := bounds[0], -1.0
	for s := bounds[0]; s <= bounds[1]; s++ {
		score := Efficiency(s) * CleaningEffectiveness(s, condition)
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}

// Plan evaluates every segment at its current and best speed and
// assembles the fuel plan: totals, speed advice past the 2 km/h
// threshold, and equipment advice grouped by surface/condition
// signature.
func Plan(segments []Segment, v *model.VehicleProfile) model.FuelPlan {
	plan := model.FuelPlan{}
	type sig struct{ surface, condition string }
	groups := map[sig]float64{}

	for _, seg := range segments {
		current := CostL(seg, v, seg.CurrentSpeedKmh)
		plan.CurrentFuelL += current

		best := BestSpeed(seg.Condition)
		optimized := CostL(seg, v, best)
		if optimized < current && math.Abs(best-seg.CurrentSpeedKmh) > speedAdviceThresholdKmh {
			plan.OptimizedFuelL += optimized
			plan.SpeedAdvice = append(plan.SpeedAdvice, model.SpeedAdvice{
				SegmentID:       seg.ID,
				CurrentKmh:      seg.CurrentSpeedKmh,
				RecommendedKmh:  best,
				FuelSavedL:      current - optimized,
				EffectivenessPc: 100 * CleaningEffectiveness(best, seg.Condition),
			})
		} else {
			plan.OptimizedFuelL += current
		}

		groups[sig{seg.Surface, seg.Condition}] += current
	}

	keys := make([]sig, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].surface != keys[j].surface {
			return keys[i].surface < keys[j].surface
		}
		return keys[i].condition < keys[j].condition
	})
	for _, k := range keys {
		adv := equipmentFor(k.surface, k.condition)
		adv.ExpectedLSave = groups[k] * 0.05
		plan.EquipmentAdvice = append(plan.EquipmentAdvice, adv)
	}
	return plan
}

// equipmentFor proposes suction, water and brush settings for one
// surface/condition signature.
func equipmentFor(surface, condition string) model.EquipmentAdvice {
	adv := model.EquipmentAdvice{Surface: surface, Condition: condition}
	switch condition {
	case "heavy":
		adv.SuctionPc, adv.WaterPc, adv.BrushSpeedPc = 90, 65, 85
	case "light":
		adv.SuctionPc, adv.WaterPc, adv.BrushSpeedPc = 50, 40, 50
	default:
		adv.SuctionPc, adv.WaterPc, adv.BrushSpeedPc = 70, 50, 65
	}
	switch surface {
	case "cobblestone":
		adv.SuctionPc = math.Min(100, adv.SuctionPc+10)
		adv.WaterPc = math.Min(100, adv.WaterPc+15)
		adv.BrushSpeedPc = math.Min(100, adv.BrushSpeedPc+10)
	case "concrete":
		adv.WaterPc = math.Min(100, adv.WaterPc+10)
	}
	return adv
}

// String implements fmt.Stringer for diagnostics.
func (s Segment) String() string {
	return fmt.Sprintf("%s %.0fm %s/%s @%.0fkm/h", s.ID, s.LengthM, s.Surface, s.Condition, s.CurrentSpeedKmh)
}
