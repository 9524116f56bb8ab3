// Package emission converts fuel burn into combustion emission
// estimates. Factor tables follow IPCC per-liter values; electric
// figures are grid-mix equivalents per liter of diesel displaced.
package emission

import "sweepnav/internal/model"

// NOx global warming potential relative to CO2.
const noxGWP = 298.0

// Factor holds per-liter emission masses for one fuel type, in kg.
type Factor struct {
	CO2PerL       float64
	NOxPerL       float64
	PMPerL        float64
	LifecyclePerL float64 // includes upstream fuel production
}

var factors = map[string]Factor{
	"diesel":   {CO2PerL: 2.68, NOxPerL: 0.015, PMPerL: 0.0008, LifecyclePerL: 3.15},
	"petrol":   {CO2PerL: 2.31, NOxPerL: 0.012, PMPerL: 0.0005, LifecyclePerL: 2.72},
	"hybrid":   {CO2PerL: 1.50, NOxPerL: 0.008, PMPerL: 0.0003, LifecyclePerL: 1.85},
	"electric": {CO2PerL: 0.45, NOxPerL: 0, PMPerL: 0, LifecyclePerL: 0.52},
}

// FactorFor returns the factor table for a fuel type, defaulting to
// diesel like the fuel model does.
func FactorFor(fuelType string) Factor {
	if f, ok := factors[fuelType]; ok {
		return f
	}
	return factors["diesel"]
}

// Estimate converts liters of fuel into an emission estimate for one
// fuel type.
func Estimate(fuelL float64, fuelType string) model.EmissionEstimate {
	if fuelL < 0 {
		fuelL = 0
	}
	f := FactorFor(fuelType)
	co2 := fuelL * f.CO2PerL
	nox := fuelL * f.NOxPerL
	return model.EmissionEstimate{
		CO2Kg:       co2,
		NOxKg:       nox,
		PMKg:        fuelL * f.PMPerL,
		CO2EqKg:     co2 + nox*noxGWP,
		LifecycleKg: fuelL * f.LifecyclePerL,
	}
}

// Sum folds two estimates component-wise.
func Sum(a, b model.EmissionEstimate) model.EmissionEstimate {
	return model.EmissionEstimate{
		CO2Kg:       a.CO2Kg + b.CO2Kg,
		NOxKg:       a.NOxKg + b.NOxKg,
		PMKg:        a.PMKg + b.PMKg,
		CO2EqKg:     a.CO2EqKg + b.CO2EqKg,
		LifecycleKg: a.LifecycleKg + b.LifecycleKg,
	}
}
