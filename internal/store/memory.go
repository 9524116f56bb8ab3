package store

import (
	"context"
	"sync"

	"sweepnav/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu     sync.Mutex
	runs   map[string]model.OptimizationRun
	runIDs []string // insertion order, newest last
	scheds map[string]model.Schedule
	plans  map[string]model.CleaningPlan
}

func NewMemory() *Memory {
	return &Memory{
		runs:   map[string]model.OptimizationRun{},
		scheds: map[string]model.Schedule{},
		plans:  map[string]model.CleaningPlan{},
	}
}

func (m *Memory) SaveRun(ctx context.Context, run model.OptimizationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.runs[run.ID]; !exists {
		m.runIDs = append(m.runIDs, run.ID)
	}
	m.runs[run.ID] = run
	return nil
}

func (m *Memory) GetRun(ctx context.Context, id string) (model.OptimizationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return model.OptimizationRun{}, ErrNotFound
	}
	return run, nil
}

// ListRuns pages newest-first; cursor is the last returned id.
func (m *Memory) ListRuns(ctx context.Context, cursor string, limit int) ([]model.OptimizationRun, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	start := len(m.runIDs) - 1
	if cursor != "" {
		for i := len(m.runIDs) - 1; i >= 0; i-- {
			if m.runIDs[i] == cursor {
				start = i - 1
				break
			}
		}
	}
	out := []model.OptimizationRun{}
	var next string
	for i := start; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[m.runIDs[i]])
	}
	if len(out) == limit && start-limit >= 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (m *Memory) SaveSchedule(ctx context.Context, sched model.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheds[sched.ID] = sched
	return nil
}

func (m *Memory) GetSchedule(ctx context.Context, id string) (model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sched, ok := m.scheds[id]
	if !ok {
		return model.Schedule{}, ErrNotFound
	}
	return sched, nil
}

func (m *Memory) SavePlan(ctx context.Context, plan model.CleaningPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[plan.ID] = plan
	return nil
}

func (m *Memory) GetPlan(ctx context.Context, id string) (model.CleaningPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	plan, ok := m.plans[id]
	if !ok {
		return model.CleaningPlan{}, ErrNotFound
	}
	return plan, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
