// Package history keeps an optional audit trail of run outcomes in Postgres.
// The core never depends on it succeeding; recording failures are logged and
// the run result stands.
package history

import (
	"context"
	"time"

	"github.com/example/campsched/internal/db"
	"github.com/google/uuid"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS run_attempts (
	id TEXT PRIMARY KEY,
	job_name TEXT NOT NULL,
	outcome TEXT NOT NULL,
	slot_label TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_run_attempts_job ON run_attempts(job_name, created_at DESC);
`

type Attempt struct {
	ID        string
	JobName   string
	Outcome   string
	SlotLabel string
	Error     string
	CreatedAt time.Time
}

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

// Migrate applies the idempotent schema. Called once at startup.
func (r *Repo) Migrate(ctx context.Context) error {
	return r.db.Exec(ctx, schemaSQL)
}

func (r *Repo) Record(ctx context.Context, jobName, outcome, slotLabel, errText string) error {
	return r.db.Exec(ctx,
		`INSERT INTO run_attempts(id, job_name, outcome, slot_label, error) VALUES ($1,$2,$3,$4,$5)`,
		uuid.NewString(), jobName, outcome, slotLabel, errText,
	)
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, job_name, outcome, slot_label, error, created_at
FROM run_attempts
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.JobName, &a.Outcome, &a.SlotLabel, &a.Error, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
