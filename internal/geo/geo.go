// Package geo holds the pure distance/time/fuel cost primitives every
// optimization stage shares. All functions are total for finite input;
// coordinate validation happens at the API edge.
package geo

import (
	"math"

	"sweepnav/internal/model"
)

const (
	// EarthRadiusM is the mean Earth radius used by the haversine formula.
	EarthRadiusM = 6371000.0

	// DefaultSpeedKmh applies when the vehicle profile carries no speed.
	DefaultSpeedKmh = 30.0

	// DefaultConsumptionL100 applies when no vehicle profile is given.
	DefaultConsumptionL100 = 10.0
)

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b model.GeoPoint) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

// Bearing returns the initial bearing from a to b in degrees [0,360).
func Bearing(a, b model.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// BearingDelta returns the absolute change between two bearings, in [0,180].
func BearingDelta(b1, b2 float64) float64 {
	d := math.Abs(b2 - b1)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// TravelTimeMin converts a distance to minutes at the vehicle's average speed.
func TravelTimeMin(distanceM float64, vehicle *model.VehicleProfile) float64 {
	speed := DefaultSpeedKmh
	if vehicle != nil && vehicle.AvgSpeedKmh > 0 {
		speed = vehicle.AvgSpeedKmh
	}
	return distanceM / 1000 / speed * 60
}

// FuelLiters converts a distance to liters at the vehicle's consumption rate.
func FuelLiters(distanceM float64, vehicle *model.VehicleProfile) float64 {
	rate := DefaultConsumptionL100
	if vehicle != nil && vehicle.ConsumptionL100 > 0 {
		rate = vehicle.ConsumptionL100
	}
	return distanceM / 1000 * rate / 100
}

// Matrix caches pairwise distance, time and fuel cost over a node set.
// Symmetric under the great-circle model; diagonal is zero. Built once per
// run and owned by that run.
type Matrix struct {
	Dist [][]float64
	Time [][]float64
	Fuel [][]float64
}

// NewMatrix builds the cost matrix for nodes under the given vehicle.
func NewMatrix(nodes []model.Node, vehicle *model.VehicleProfile) *Matrix {
	n := len(nodes)
	m := &Matrix{
		Dist: make([][]float64, n),
		Time: make([][]float64, n),
		Fuel: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		m.Dist[i] = make([]float64, n)
		m.Time[i] = make([]float64, n)
		m.Fuel[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Distance(nodes[i].Position, nodes[j].Position)
			t := TravelTimeMin(d, vehicle)
			f := FuelLiters(d, vehicle)
			m.Dist[i][j], m.Dist[j][i] = d, d
			m.Time[i][j], m.Time[j][i] = t, t
			m.Fuel[i][j], m.Fuel[j][i] = f, f
		}
	}
	return m
}

// SequenceDistance sums leg distances from start through the sequence.
func SequenceDistance(start model.GeoPoint, seq []model.Node) float64 {
	total := 0.0
	cur := start
	for _, n := range seq {
		total += Distance(cur, n.Position)
		cur = n.Position
	}
	return total
}

// Totals computes aggregate distance/time/fuel for a sequence.
func Totals(start model.GeoPoint, seq []model.Node, vehicle *model.VehicleProfile) (distM, timeMin, fuelL float64) {
	distM = SequenceDistance(start, seq)
	timeMin = TravelTimeMin(distM, vehicle)
	fuelL = FuelLiters(distM, vehicle)
	return
}

// ComputeBaseline produces the naive reference solution every optimization
// path compares against: nearest unvisited node by raw distance, no
// priority weighting, no fuel optimization. Both the route optimization
// and cleaning paths must use this one implementation.
func ComputeBaseline(nodes []model.Node, start model.GeoPoint, vehicle *model.VehicleProfile) model.Solution {
	seq := make([]model.Node, 0, len(nodes))
	remaining := append([]model.Node(nil), nodes...)
	cur := start
	for len(remaining) > 0 {
		bestIdx := 0
		bestDist := math.MaxFloat64
		for i, n := range remaining {
			if d := Distance(cur, n.Position); d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		next := remaining[bestIdx]
		seq = append(seq, next)
		cur = next.Position
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	d, t, f := Totals(start, seq, vehicle)
	return model.Solution{
		Sequence:       seq,
		TotalDistanceM: d,
		TotalTimeMin:   t,
		FuelCostL:      f,
		Algorithm:      "baseline",
	}
}

// EfficiencyPercent maps optimized vs baseline distance to a [0,100] gain.
// Equal or worse distance maps to 0.
func EfficiencyPercent(baselineM, optimizedM float64) float64 {
	if baselineM <= 0 || optimizedM >= baselineM {
		return 0
	}
	pc := (baselineM - optimizedM) / baselineM * 100
	if pc > 100 {
		pc = 100
	}
	return pc
}
