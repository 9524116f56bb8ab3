package geo

import (
	"math"
	"testing"

	"sweepnav/internal/model"
)

func TestDistanceSymmetryAndZero(t *testing.T) {
	a := model.GeoPoint{Lng: 28.9784, Lat: 41.0082}
	b := model.GeoPoint{Lng: 32.8597, Lat: 39.9334}
	if d := Distance(a, a); d != 0 {
		t.Fatalf("distance(a,a) = %f, want 0", d)
	}
	ab := Distance(a, b)
	ba := Distance(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("asymmetric distance: %f vs %f", ab, ba)
	}
	// Istanbul-Ankara is roughly 350 km great-circle.
	if ab < 300000 || ab > 400000 {
		t.Fatalf("implausible distance %f m", ab)
	}
}

func TestBearingRange(t *testing.T) {
	a := model.GeoPoint{Lng: 0, Lat: 0}
	cases := []struct {
		to   model.GeoPoint
		want float64
	}{
		{model.GeoPoint{Lng: 0, Lat: 1}, 0},
		{model.GeoPoint{Lng: 1, Lat: 0}, 90},
		{model.GeoPoint{Lng: 0, Lat: -1}, 180},
		{model.GeoPoint{Lng: -1, Lat: 0}, 270},
	}
	for _, c := range cases {
		got := Bearing(a, c.to)
		if math.Abs(got-c.want) > 0.01 {
			t.Errorf("bearing to %+v = %f, want %f", c.to, got, c.want)
		}
		if got < 0 || got >= 360 {
			t.Errorf("bearing %f out of [0,360)", got)
		}
	}
}

func TestBearingDelta(t *testing.T) {
	if d := BearingDelta(350, 10); math.Abs(d-20) > 1e-9 {
		t.Fatalf("wraparound delta = %f, want 20", d)
	}
	if d := BearingDelta(90, 270); math.Abs(d-180) > 1e-9 {
		t.Fatalf("opposite delta = %f, want 180", d)
	}
}

func TestTravelTimeAndFuelDefaults(t *testing.T) {
	// 30 km at the 30 km/h default is 60 minutes.
	if m := TravelTimeMin(30000, nil); math.Abs(m-60) > 1e-9 {
		t.Fatalf("travel time = %f, want 60", m)
	}
	// 100 km at the 10 L/100km default is 10 liters.
	if l := FuelLiters(100000, nil); math.Abs(l-10) > 1e-9 {
		t.Fatalf("fuel = %f, want 10", l)
	}
	v := &model.VehicleProfile{AvgSpeedKmh: 60, ConsumptionL100: 20}
	if m := TravelTimeMin(30000, v); math.Abs(m-30) > 1e-9 {
		t.Fatalf("vehicle travel time = %f, want 30", m)
	}
	if l := FuelLiters(100000, v); math.Abs(l-20) > 1e-9 {
		t.Fatalf("vehicle fuel = %f, want 20", l)
	}
}

func TestMatrixShape(t *testing.T) {
	nodes := []model.Node{
		{ID: "a", Position: model.GeoPoint{Lng: 0, Lat: 0}},
		{ID: "b", Position: model.GeoPoint{Lng: 0.01, Lat: 0}},
		{ID: "c", Position: model.GeoPoint{Lng: 0.02, Lat: 0}},
	}
	m := NewMatrix(nodes, nil)
	if len(m.Dist) != 3 {
		t.Fatalf("matrix dim %d, want 3", len(m.Dist))
	}
	for i := range nodes {
		if m.Dist[i][i] != 0 {
			t.Fatalf("diagonal [%d][%d] = %f, want 0", i, i, m.Dist[i][i])
		}
		for j := range nodes {
			if m.Dist[i][j] != m.Dist[j][i] {
				t.Fatalf("matrix not symmetric at (%d,%d)", i, j)
			}
		}
	}
}

func TestComputeBaselineVisitsAll(t *testing.T) {
	nodes := []model.Node{
		{ID: "n1", Position: model.GeoPoint{Lng: 0.002, Lat: 0}},
		{ID: "n2", Position: model.GeoPoint{Lng: 0.001, Lat: 0}},
		{ID: "n3", Position: model.GeoPoint{Lng: 0.003, Lat: 0}},
	}
	sol := ComputeBaseline(nodes, model.GeoPoint{Lng: 0, Lat: 0}, nil)
	if len(sol.Sequence) != 3 {
		t.Fatalf("sequence length %d, want 3", len(sol.Sequence))
	}
	// Nearest-first from lng 0 over a line is in-order.
	want := []string{"n2", "n1", "n3"}
	for i, id := range want {
		if sol.Sequence[i].ID != id {
			t.Fatalf("sequence[%d] = %s, want %s", i, sol.Sequence[i].ID, id)
		}
	}
}

func TestEfficiencyPercentBounds(t *testing.T) {
	if e := EfficiencyPercent(1000, 1000); e != 0 {
		t.Fatalf("equal distances should be 0%%, got %f", e)
	}
	if e := EfficiencyPercent(1000, 1200); e != 0 {
		t.Fatalf("worse distance should be 0%%, got %f", e)
	}
	e := EfficiencyPercent(1000, 600)
	if e < 0 || e > 100 {
		t.Fatalf("efficiency %f out of [0,100]", e)
	}
	if math.Abs(e-40) > 1e-9 {
		t.Fatalf("efficiency = %f, want 40", e)
	}
}
