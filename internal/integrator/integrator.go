// Package integrator orchestrates the cleaning pipeline: spatial
// pattern sequencing, solver refinement, turn/overlap cleanup, fuel
// strategy and emission accounting, at four escalating levels. Each level strictly extends the
// route of the level below it; nothing is recomputed from scratch.
package integrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sweepnav/internal/emission"
	"sweepnav/internal/fuel"
	"sweepnav/internal/geo"
	"sweepnav/internal/logging"
	"sweepnav/internal/model"
	"sweepnav/internal/pattern"
	"sweepnav/internal/scheduler"
	"sweepnav/internal/solver"
	"sweepnav/internal/turnopt"
)

var (
	ErrNoArea     = errors.New("no work items in area")
	ErrNoVehicles = errors.New("no vehicles available")
)

// Optimization levels, each a strict superset of the previous.
const (
	LevelBasic    = "basic"
	LevelStandard = "standard"
	LevelAdvanced = "advanced"
	LevelMaximum  = "maximum"
)

var levelRank = map[string]int{
	LevelBasic:    0,
	LevelStandard: 1,
	LevelAdvanced: 2,
	LevelMaximum:  3,
}

// ParseLevel validates the level name; empty selects standard.
func ParseLevel(name string) (string, error) {
	if name == "" {
		return LevelStandard, nil
	}
	if _, ok := levelRank[name]; !ok {
		return "", fmt.Errorf("unknown optimization level %q", name)
	}
	return name, nil
}

// Default solver budget for the refinement stage, per vehicle.
const defaultRefineTimeLimitMs = 5000

// Recommendation thresholds.
const (
	minEfficiencyGainPc = 10.0
	minFuelSavingPc     = 5.0
)

// OptimizeCleaningOperations runs the full pipeline for one area.
func OptimizeCleaningOperations(req model.CleaningRequest) (model.CleaningPlan, error) {
	if len(req.Area) == 0 {
		return model.CleaningPlan{}, ErrNoArea
	}
	if len(req.Vehicles) == 0 {
		return model.CleaningPlan{}, ErrNoVehicles
	}
	date := req.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return model.CleaningPlan{}, fmt.Errorf("unparseable date %q", req.Date)
	}
	level, err := ParseLevel(req.Options.Level)
	if err != nil {
		return model.CleaningPlan{}, err
	}

	ordered, err := sequenceArea(req.Area, req.Options, level)
	if err != nil {
		return model.CleaningPlan{}, err
	}

	plan := model.CleaningPlan{
		ID:    uuid.NewString(),
		Date:  date,
		Level: level,
	}

	rank := levelRank[level]
	chunks := splitChunks(ordered, len(req.Vehicles))
	for i, chunk := range chunks {
		v := req.Vehicles[i]
		route, fp := vehicleRoute(chunk, v, req.Options, rank)
		plan.VehicleRoutes = append(plan.VehicleRoutes, route)
		if fp != nil {
			plan.FuelPlan = mergeFuelPlans(plan.FuelPlan, fp)
		}
	}

	if rank >= levelRank[LevelStandard] {
		sched, err := scheduler.GenerateSchedule(model.ScheduleRequest{
			Items:    ordered,
			Vehicles: req.Vehicles,
			Date:     date,
			Options:  req.Options.ScheduleOpt,
		})
		if err == nil {
			plan.Schedule = &sched
		}
	}

	plan.Metrics = computeMetrics(req.Area, plan.VehicleRoutes, req.Vehicles)
	plan.Emissions = estimateEmissions(plan.VehicleRoutes, req.Vehicles)
	plan.Recommendations = recommend(plan)

	log := logging.Component("integrator")
	log.Info().
		Str("plan_id", plan.ID).
		Str("level", level).
		Int("items", len(req.Area)).
		Int("vehicles", len(req.Vehicles)).
		Float64("efficiency_gain", plan.Metrics.EfficiencyGain).
		Msg("cleaning plan assembled")
	return plan, nil
}

// sequenceArea produces the base pattern order. At maximum level with
// no explicit pattern, the cheapest of the three traversals wins.
func sequenceArea(items []model.WorkItem, opts model.CleaningOptions, level string) ([]model.WorkItem, error) {
	if levelRank[level] >= levelRank[LevelMaximum] && opts.Pattern == "" {
		var best []model.WorkItem
		bestDist := -1.0
		for _, p := range []string{pattern.Spiral, pattern.Boustrophedon, pattern.PerimeterFirst} {
			seq, err := pattern.Sequence(items, p, opts.CellSizeM)
			if err != nil {
				return nil, err
			}
			d := itemsDistance(seq)
			if bestDist < 0 || d < bestDist {
				best, bestDist = seq, d
			}
		}
		return best, nil
	}
	return pattern.Sequence(items, opts.Pattern, opts.CellSizeM)
}

// splitChunks slices an ordered list into n contiguous chunks, the
// leading chunks one longer when the split is uneven.
func splitChunks(items []model.WorkItem, n int) [][]model.WorkItem {
	if n > len(items) {
		n = len(items)
	}
	chunks := make([][]model.WorkItem, 0, n)
	size := len(items) / n
	rem := len(items) % n
	pos := 0
	for i := 0; i < n; i++ {
		end := pos + size
		if i < rem {
			end++
		}
		chunks = append(chunks, items[pos:end])
		pos = end
	}
	return chunks
}

// vehicleRoute escalates one chunk through the stages enabled by the
// level rank. Later stages only replace the route when they improve it.
func vehicleRoute(chunk []model.WorkItem, v model.VehicleProfile, opts model.CleaningOptions, rank int) (model.VehicleRoute, *model.FuelPlan) {
	items := chunk
	start := items[0].Position

	if rank >= levelRank[LevelStandard] && len(items) > 2 {
		items = refine(items, start, &v, opts.Solver)
	}
	if rank >= levelRank[LevelAdvanced] && len(items) > 2 {
		items = untangle(items, &v)
	}

	sol := solutionFor(items, start, &v)
	var fp *model.FuelPlan
	if rank >= levelRank[LevelMaximum] {
		p := fuel.Plan(fuel.SegmentsFromItems(items, &v), &v)
		fp = &p
		if p.OptimizedFuelL > 0 && p.OptimizedFuelL < sol.FuelCostL {
			sol.FuelCostL = p.OptimizedFuelL
		}
	}
	return model.VehicleRoute{VehicleID: v.ID, Solution: sol}, fp
}

// refine runs the genetic solver over the chunk and keeps its order
// only when it beats the pattern order.
func refine(items []model.WorkItem, start model.GeoPoint, v *model.VehicleProfile, opts model.OptimizeOptions) []model.WorkItem {
	if opts.Algorithm == "" {
		opts.Algorithm = "genetic"
	}
	if opts.TimeLimitMs <= 0 {
		opts.TimeLimitMs = defaultRefineTimeLimitMs
	}
	nodes := make([]model.Node, len(items))
	byID := make(map[string]model.WorkItem, len(items))
	for i, it := range items {
		nodes[i] = it.Node
		byID[it.ID] = it
	}
	sol, err := solver.New(opts).Solve(solver.Problem{Nodes: nodes, Start: start, Vehicle: v})
	if err != nil {
		return items
	}
	if sol.TotalDistanceM >= itemsDistance(items) {
		return items
	}
	out := make([]model.WorkItem, 0, len(sol.Sequence))
	for _, n := range sol.Sequence {
		out = append(out, byID[n.ID])
	}
	return out
}

// untangle applies the turn/overlap pass to the leg segments and maps
// the re-linked legs back to an item order.
func untangle(items []model.WorkItem, v *model.VehicleProfile) []model.WorkItem {
	segs := turnopt.MinimizeTurns(turnopt.SegmentsFromItems(items), v)
	byID := make(map[string]model.WorkItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make([]model.WorkItem, 0, len(items))
	seen := map[string]bool{}
	for _, s := range segs {
		if !seen[s.ID] {
			out = append(out, byID[s.ID])
			seen[s.ID] = true
		}
	}
	// The last item never heads a leg; append it and anything else the
	// re-link dropped.
	for _, it := range items {
		if !seen[it.ID] {
			out = append(out, it)
			seen[it.ID] = true
		}
	}
	if itemsDistance(out) >= itemsDistance(items) {
		return items
	}
	return out
}

func itemsDistance(items []model.WorkItem) float64 {
	total := 0.0
	for i := 0; i+1 < len(items); i++ {
		total += geo.Distance(items[i].Position, items[i+1].Position)
	}
	return total
}

func solutionFor(items []model.WorkItem, start model.GeoPoint, v *model.VehicleProfile) model.Solution {
	nodes := make([]model.Node, len(items))
	for i, it := range items {
		nodes[i] = it.Node
	}
	d, tm, f := geo.Totals(start, nodes, v)
	base := geo.ComputeBaseline(nodes, start, v)
	return model.Solution{
		Sequence:       nodes,
		TotalDistanceM: d,
		TotalTimeMin:   tm,
		FuelCostL:      f,
		Efficiency:     geo.EfficiencyPercent(base.TotalDistanceM, d),
	}
}

// computeMetrics aggregates before/after numbers against the shared
// naive baseline over the whole area.
func computeMetrics(area []model.WorkItem, routes []model.VehicleRoute, vehicles []model.VehicleProfile) model.PerformanceMetrics {
	nodes := make([]model.Node, len(area))
	for i, it := range area {
		nodes[i] = it.Node
	}
	var v *model.VehicleProfile
	if len(vehicles) > 0 {
		v = &vehicles[0]
	}
	base := geo.ComputeBaseline(nodes, area[0].Position, v)

	m := model.PerformanceMetrics{
		BaselineDistanceM: base.TotalDistanceM,
		BaselineTimeMin:   base.TotalTimeMin,
		BaselineFuelL:     base.FuelCostL,
	}
	for _, r := range routes {
		m.OptimizedDistanceM += r.Solution.TotalDistanceM
		m.OptimizedTimeMin += r.Solution.TotalTimeMin
		m.OptimizedFuelL += r.Solution.FuelCostL
	}
	m.EfficiencyGain = geo.EfficiencyPercent(m.BaselineDistanceM, m.OptimizedDistanceM)
	return m
}

// estimateEmissions totals combustion emissions over the vehicle
// routes. Routes map to vehicles by chunk index.
func estimateEmissions(routes []model.VehicleRoute, vehicles []model.VehicleProfile) *model.EmissionEstimate {
	var total model.EmissionEstimate
	for i, r := range routes {
		fuelType := ""
		if i < len(vehicles) {
			fuelType = vehicles[i].FuelType
		}
		total = emission.Sum(total, emission.Estimate(r.Solution.FuelCostL, fuelType))
	}
	return &total
}

// recommend emits advice when measured improvement misses thresholds.
func recommend(plan model.CleaningPlan) []model.Recommendation {
	var recs []model.Recommendation
	m := plan.Metrics

	if m.EfficiencyGain < minEfficiencyGainPc {
		recs = append(recs, model.Recommendation{
			Kind:     "time",
			Priority: "high",
			Message:  "route improvement below target; raise the optimization level or the solver time budget",
			Value:    m.EfficiencyGain,
		})
	}
	if m.BaselineFuelL > 0 {
		savingPc := 100 * (m.BaselineFuelL - m.OptimizedFuelL) / m.BaselineFuelL
		if savingPc < minFuelSavingPc {
			recs = append(recs, model.Recommendation{
				Kind:     "fuel",
				Priority: "medium",
				Message:  "fuel savings below target; enable maximum level for speed and equipment tuning",
				Value:    savingPc,
			})
		}
	}
	if plan.Schedule != nil && plan.Schedule.CoverageEfficiency < 100 {
		recs = append(recs, model.Recommendation{
			Kind:     "scheduling",
			Priority: "medium",
			Message:  "not all items fit the working window; extend hours or allow overtime",
			Value:    plan.Schedule.CoverageEfficiency,
		})
	}
	if plan.Emissions != nil && m.BaselineFuelL > m.OptimizedFuelL && m.OptimizedFuelL > 0 {
		avoided := plan.Emissions.CO2EqKg * (m.BaselineFuelL - m.OptimizedFuelL) / m.OptimizedFuelL
		recs = append(recs, model.Recommendation{
			Kind:     "emissions",
			Priority: "low",
			Message:  fmt.Sprintf("routing avoids %.1f kg CO2e versus the naive route", avoided),
			Value:    avoided,
		})
	}
	if plan.FuelPlan != nil {
		for _, adv := range plan.FuelPlan.EquipmentAdvice {
			recs = append(recs, model.Recommendation{
				Kind:     "equipment",
				Priority: "low",
				Message: fmt.Sprintf("set suction %.0f%%, water %.0f%%, brush %.0f%% on %s/%s",
					adv.SuctionPc, adv.WaterPc, adv.BrushSpeedPc, adv.Surface, adv.Condition),
				Value: adv.ExpectedLSave,
			})
		}
	}
	return recs
}

// mergeFuelPlans folds one vehicle's fuel plan into the aggregate.
func mergeFuelPlans(agg, next *model.FuelPlan) *model.FuelPlan {
	if agg == nil {
		out := *next
		return &out
	}
	agg.CurrentFuelL += next.CurrentFuelL
	agg.OptimizedFuelL += next.OptimizedFuelL
	agg.SpeedAdvice = append(agg.SpeedAdvice, next.SpeedAdvice...)
	agg.EquipmentAdvice = append(agg.EquipmentAdvice, next.EquipmentAdvice...)
	return agg
}
