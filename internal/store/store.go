package store

import (
	"context"
	"errors"

	"sweepnav/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Optimization runs
	SaveRun(ctx context.Context, run model.OptimizationRun) error
	GetRun(ctx context.Context, id string) (model.OptimizationRun, error)
	ListRuns(ctx context.Context, cursor string, limit int) (items []model.OptimizationRun, nextCursor string, err error)

	// Schedules
	SaveSchedule(ctx context.Context, sched model.Schedule) error
	GetSchedule(ctx context.Context, id string) (model.Schedule, error)

	// Cleaning plans
	SavePlan(ctx context.Context, plan model.CleaningPlan) error
	GetPlan(ctx context.Context, id string) (model.CleaningPlan, error)

	Ping(ctx context.Context) error
	Close() error
}

var ErrNotFound = errors.New("not found")
