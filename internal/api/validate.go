package api

import (
	"fmt"

	"sweepnav/internal/integrator"
	"sweepnav/internal/model"
	"sweepnav/internal/pattern"
	"sweepnav/internal/solver"
)

func validateOptions(o *model.OptimizeOptions) error {
	if _, err := solver.ParseStrategy(o.Algorithm); err != nil {
		return err
	}
	if o.TimeLimitMs < 0 {
		return fmt.Errorf("timeLimitMs must be >= 0")
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("maxIterations must be >= 0")
	}
	if o.PopulationSize < 0 {
		return fmt.Errorf("populationSize must be >= 0")
	}
	if o.MutationRate < 0 || o.MutationRate > 1 {
		return fmt.Errorf("mutationRate must be in [0,1]")
	}
	if o.EliteRatio < 0 || o.EliteRatio >= 1 {
		return fmt.Errorf("eliteRatio must be in [0,1)")
	}
	if o.PriorityWeight < 0 || o.PriorityWeight > 1 {
		return fmt.Errorf("priorityWeight must be in [0,1]")
	}
	return nil
}

func validateOptimizeRequest(req *model.OptimizeRequest) error {
	if len(req.Nodes) == 0 {
		return fmt.Errorf("nodes must not be empty")
	}
	if !req.Start.Valid() {
		return fmt.Errorf("start position out of range")
	}
	for _, n := range req.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node without id")
		}
		if !n.Position.Valid() {
			return fmt.Errorf("node %s: position out of range", n.ID)
		}
	}
	return validateOptions(&req.Options)
}

func validateScheduleRequest(req *model.ScheduleRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("items must not be empty")
	}
	if len(req.Vehicles) == 0 {
		return fmt.Errorf("vehicles must not be empty")
	}
	o := req.Options
	if o.WorkdayStartMin < 0 || o.WorkdayEndMin < 0 {
		return fmt.Errorf("workday bounds must be >= 0")
	}
	if o.WorkdayEndMin > 0 && o.WorkdayEndMin <= o.WorkdayStartMin {
		return fmt.Errorf("workdayEndMin must be after workdayStartMin")
	}
	if o.MaxOvertimeMin < 0 {
		return fmt.Errorf("maxOvertimeMin must be >= 0")
	}
	return nil
}

func validateCleaningRequest(req *model.CleaningRequest) error {
	if len(req.Area) == 0 {
		return fmt.Errorf("area must not be empty")
	}
	if len(req.Vehicles) == 0 {
		return fmt.Errorf("vehicles must not be empty")
	}
	if _, err := integrator.ParseLevel(req.Options.Level); err != nil {
		return err
	}
	switch req.Options.Pattern {
	case "", pattern.Spiral, pattern.SpiralCCW, pattern.Boustrophedon, pattern.PerimeterFirst:
	default:
		return fmt.Errorf("unknown pattern %q", req.Options.Pattern)
	}
	if req.Options.CellSizeM < 0 {
		return fmt.Errorf("cellSizeM must be >= 0")
	}
	return validateOptions(&req.Options.Solver)
}
