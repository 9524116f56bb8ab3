package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"sweepnav/internal/model"
)

// Postgres persists runs, schedules and plans as JSONB documents keyed
// by id. Document storage fits here: records are written once and read
// whole, never queried by inner fields.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Migrate creates the tables when missing. Dev helper; production
// schemas are managed externally.
func (p *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS optimization_runs (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			doc JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			doc JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cleaning_plans (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			doc JSONB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) SaveRun(ctx context.Context, run model.OptimizationRun) error {
	return p.upsert(ctx, "optimization_runs", run.ID, run)
}

func (p *Postgres) GetRun(ctx context.Context, id string) (model.OptimizationRun, error) {
	var run model.OptimizationRun
	err := p.getDoc(ctx, "optimization_runs", id, &run)
	return run, err
}

func (p *Postgres) ListRuns(ctx context.Context, cursor string, limit int) ([]model.OptimizationRun, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if cursor != "" {
		rows, err = p.db.QueryContext(ctx,
			`SELECT doc FROM optimization_runs
			 WHERE created_at < (SELECT created_at FROM optimization_runs WHERE id=$1)
			 ORDER BY created_at DESC LIMIT $2`, cursor, limit)
	} else {
		rows, err = p.db.QueryContext(ctx,
			`SELECT doc FROM optimization_runs ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.OptimizationRun{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, "", err
		}
		var run model.OptimizationRun
		if err := json.Unmarshal(raw, &run); err != nil {
			return nil, "", err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	var next string
	if len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (p *Postgres) SaveSchedule(ctx context.Context, sched model.Schedule) error {
	return p.upsert(ctx, "schedules", sched.ID, sched)
}

func (p *Postgres) GetSchedule(ctx context.Context, id string) (model.Schedule, error) {
	var sched model.Schedule
	err := p.getDoc(ctx, "schedules", id, &sched)
	return sched, err
}

func (p *Postgres) SavePlan(ctx context.Context, plan model.CleaningPlan) error {
	return p.upsert(ctx, "cleaning_plans", plan.ID, plan)
}

func (p *Postgres) GetPlan(ctx context.Context, id string) (model.CleaningPlan, error) {
	var plan model.CleaningPlan
	err := p.getDoc(ctx, "cleaning_plans", id, &plan)
	return plan, err
}

func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) upsert(ctx context.Context, table, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`, id, raw)
	return err
}

func (p *Postgres) getDoc(ctx context.Context, table, id string, dst any) error {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT doc FROM `+table+` WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
