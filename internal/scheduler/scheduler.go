// Package scheduler assigns work items to bounded time blocks across a
// fleet. Items are ranked once per pass by a composite score and pulled
// greedily into blocks; ordering inside a block is delegated to the
// route solver. Scores are recomputed every pass since urgency and
// constraints drift between passes.
package scheduler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"sweepnav/internal/logging"
	"sweepnav/internal/model"
	"sweepnav/internal/solver"
)

var (
	ErrNoItems    = errors.New("no work items to schedule")
	ErrNoVehicles = errors.New("no vehicles available")
)

// Workday and block defaults, minutes from midnight.
const (
	DefaultWorkdayStartMin  = 480 // 08:00
	DefaultWorkdayEndMin    = 960 // 16:00
	DefaultBlockDurationMin = 120
	DefaultMaxOvertimeMin   = 120
	DefaultItemDurationMin  = 30

	// Blocks stop filling below this remainder.
	minBlockFillMin = 10

	// Leftover items above this score qualify for overtime blocks.
	overtimeScoreThreshold = 500
)

// Score weights. Static priority is stretched so that a top-priority,
// long-overdue item clears the overtime threshold on its own.
const (
	priorityScale  = 5.0
	urgencyPerHour = 2.0
	urgencyCap     = 100.0
)

type scoredItem struct {
	item     model.WorkItem
	score    float64
	assigned bool
}

// Score computes the composite priority of one work item for a pass
// starting at startMin minutes from midnight.
func Score(it model.WorkItem, c *model.RouteConstraints, startMin float64) float64 {
	s := float64(it.Priority) * priorityScale

	urgency := it.HoursSinceDone * urgencyPerHour
	if urgency > urgencyCap {
		urgency = urgencyCap
	}
	s += urgency

	// Reward items whose traffic peak falls outside the working window:
	// cleaning them is unconstrained by traffic timing.
	if it.TrafficPeakHour > 0 {
		peakMin := float64(it.TrafficPeakHour) * 60
		if peakMin < startMin || peakMin >= startMin+8*60 {
			s += 25
		}
	}

	switch it.Surface {
	case "cobblestone":
		s += 15
	case "concrete":
		s += 10
	case "asphalt":
		s += 5
	}
	switch it.Condition {
	case "heavy":
		s += 15
	case "normal":
		s += 5
	}

	if c != nil && c.VehicleCapacity > 0 && it.DemandKg > c.VehicleCapacity {
		s -= 100
	}
	return s
}

// GenerateSchedule runs one scheduling pass over the request.
func GenerateSchedule(req model.ScheduleRequest) (model.Schedule, error) {
	if len(req.Items) == 0 {
		return model.Schedule{}, ErrNoItems
	}
	if len(req.Vehicles) == 0 {
		return model.Schedule{}, ErrNoVehicles
	}
	for _, it := range req.Items {
		if !it.Position.Valid() {
			return model.Schedule{}, fmt.Errorf("item %s: coordinate out of range", it.ID)
		}
	}

	opts := req.Options
	if opts.WorkdayStartMin <= 0 {
		opts.WorkdayStartMin = DefaultWorkdayStartMin
	}
	if opts.WorkdayEndMin <= opts.WorkdayStartMin {
		opts.WorkdayEndMin = opts.WorkdayStartMin + (DefaultWorkdayEndMin - DefaultWorkdayStartMin)
	}
	if opts.BlockDurationMin <= 0 {
		opts.BlockDurationMin = DefaultBlockDurationMin
	}
	if opts.AllowOvertime && opts.MaxOvertimeMin <= 0 {
		opts.MaxOvertimeMin = DefaultMaxOvertimeMin
	}

	scored := make([]*scoredItem, len(req.Items))
	for i, it := range req.Items {
		it.ClampPriority()
		if it.DurationMin <= 0 {
			it.DurationMin = DefaultItemDurationMin
		}
		scored[i] = &scoredItem{item: it, score: Score(it, req.Constraints, opts.WorkdayStartMin)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	// Lower-consumption vehicles fill first.
	vehicles := make([]model.VehicleProfile, len(req.Vehicles))
	copy(vehicles, req.Vehicles)
	sort.SliceStable(vehicles, func(i, j int) bool {
		return vehicles[i].ConsumptionL100 < vehicles[j].ConsumptionL100
	})

	sched := model.Schedule{ID: uuid.NewString(), Date: req.Date}
	lastPos := make(map[string]model.GeoPoint, len(vehicles))

	blockedSlots := 0
	for start := opts.WorkdayStartMin; start+minBlockFillMin <= opts.WorkdayEndMin; start += opts.BlockDurationMin {
		end := start + opts.BlockDurationMin
		if end > opts.WorkdayEndMin {
			end = opts.WorkdayEndMin
		}
		if blocked(req.Constraints, start, end) {
			blockedSlots++
			continue
		}
		for _, v := range vehicles {
			b := fillBlock(scored, v, start, end, 0)
			if b == nil {
				continue
			}
			orderBlock(b, &v, lastPos, &sched)
			sched.Blocks = append(sched.Blocks, *b)
		}
	}

	if opts.AllowOvertime {
		otEnd := opts.WorkdayEndMin + opts.MaxOvertimeMin
		for start := opts.WorkdayEndMin; start+minBlockFillMin <= otEnd; start += opts.BlockDurationMin {
			end := start + opts.BlockDurationMin
			if end > otEnd {
				end = otEnd
			}
			for _, v := range vehicles {
				b := fillBlock(scored, v, start, end, overtimeScoreThreshold)
				if b == nil {
					continue
				}
				b.Overtime = true
				orderBlock(b, &v, lastPos, &sched)
				sched.Blocks = append(sched.Blocks, *b)
			}
		}
	}

	assigned := 0
	unassignedHigh := 0
	for _, si := range scored {
		if si.assigned {
			assigned++
			sched.TotalTimeMin += si.item.DurationMin
		} else if si.score > overtimeScoreThreshold {
			unassignedHigh++
		}
	}
	sched.CoverageEfficiency = 100 * float64(assigned) / float64(len(scored))

	if blockedSlots > 0 {
		sched.Violations = append(sched.Violations, model.Violation{
			Code:     "blocking_window",
			Severity: "ERROR",
			Detail:   fmt.Sprintf("%d time blocks unusable due to blocking time range", blockedSlots),
		})
	}
	if unassignedHigh > 0 {
		sched.Violations = append(sched.Violations, model.Violation{
			Code:     "unassigned_high_priority",
			Severity: "WARNING",
			Detail:   fmt.Sprintf("%d high-priority items left unscheduled", unassignedHigh),
		})
	}

	log := logging.Component("scheduler")
	log.Info().
		Str("schedule_id", sched.ID).
		Int("items", len(scored)).
		Int("assigned", assigned).
		Int("blocks", len(sched.Blocks)).
		Float64("coverage", sched.CoverageEfficiency).
		Msg("scheduling pass complete")
	return sched, nil
}

// blocked reports whether the blocking time range covers any part of
// the slot [start,end).
func blocked(c *model.RouteConstraints, start, end float64) bool {
	if c == nil || c.BlockingTimeRange == nil {
		return false
	}
	bw := c.BlockingTimeRange
	return bw.EarliestMin < end && bw.LatestMin > start
}

// fillBlock pulls items off the scored list into a new block for one
// vehicle. minScore excludes items below the overtime bar; zero admits
// everything. Returns nil when nothing fits.
func fillBlock(scored []*scoredItem, v model.VehicleProfile, start, end, minScore float64) *model.ScheduleBlock {
	b := &model.ScheduleBlock{
		ID:        uuid.NewString(),
		VehicleID: v.ID,
		StartMin:  start,
		EndMin:    end,
	}
	remaining := end - start
	total := 0.0
	for _, si := range scored {
		if remaining < minBlockFillMin {
			break
		}
		if si.assigned || si.score <= minScore && minScore > 0 {
			continue
		}
		if si.item.DurationMin > remaining {
			continue
		}
		if v.CapacityKg > 0 && si.item.DemandKg > v.CapacityKg {
			continue
		}
		si.assigned = true
		b.Items = append(b.Items, si.item)
		remaining -= si.item.DurationMin
		total += si.score
	}
	if len(b.Items) == 0 {
		return nil
	}
	b.Priority = total / float64(len(b.Items))
	return b
}

// orderBlock sequences the block's items with the greedy solver, using
// the vehicle's last known position as the leg origin, and folds the
// travel metrics into the schedule totals.
func orderBlock(b *model.ScheduleBlock, v *model.VehicleProfile, lastPos map[string]model.GeoPoint, sched *model.Schedule) {
	if len(b.Items) < 2 {
		if len(b.Items) == 1 {
			lastPos[b.VehicleID] = b.Items[0].Position
		}
		return
	}
	nodes := make([]model.Node, len(b.Items))
	byID := make(map[string]model.WorkItem, len(b.Items))
	for i, it := range b.Items {
		nodes[i] = it.Node
		byID[it.ID] = it
	}
	start, ok := lastPos[b.VehicleID]
	if !ok {
		start = nodes[0].Position
	}

	s := solver.New(model.OptimizeOptions{Algorithm: "nearest_neighbor"})
	sol, err := s.Solve(solver.Problem{Nodes: nodes, Start: start, Vehicle: v})
	if err != nil {
		lastPos[b.VehicleID] = nodes[len(nodes)-1].Position
		return
	}
	ordered := make([]model.WorkItem, 0, len(sol.Sequence))
	for _, n := range sol.Sequence {
		ordered = append(ordered, byID[n.ID])
	}
	b.Items = ordered
	lastPos[b.VehicleID] = ordered[len(ordered)-1].Position

	sched.TotalTimeMin += sol.TotalTimeMin
	sched.TotalFuelCostL += sol.FuelCostL
}
