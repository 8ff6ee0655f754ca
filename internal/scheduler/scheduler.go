// Package scheduler fires each enabled job on its own fixed interval. It is
// deliberately dumb: no cron expressions, no persistence, no catch-up — a
// stale booking opportunity is not worth running, so late ticks collapse and
// overlapping ticks are dropped.
package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/example/campsched/internal/jobs"
)

// Executor runs one trigger of one job. *runner.JobRunner satisfies it.
type Executor interface {
	RunOnce(ctx context.Context, job jobs.Job)
}

// misfireGrace absorbs scheduling jitter: a tick at most this late still
// runs; anything later collapses the backlog to the next aligned tick.
const misfireGrace = 5 * time.Second

type Scheduler struct {
	exec    Executor
	jobList []jobs.Job
	grace   time.Duration
}

func New(exec Executor, jobList []jobs.Job) *Scheduler {
	return &Scheduler{exec: exec, jobList: jobList, grace: misfireGrace}
}

// Run starts one loop per enabled job and blocks until the context is
// canceled. Shutdown abandons in-flight runs; it does not wait for them.
func (s *Scheduler) Run(ctx context.Context) {
	started := 0
	for _, j := range s.jobList {
		if !j.Enabled {
			continue
		}
		go s.jobLoop(ctx, j)
		started++
	}
	log.Printf("scheduler: %d job loop(s) started", started)
	<-ctx.Done()
}

// jobLoop ticks at the job's interval, starting one interval after
// registration. At most one invocation per job is in flight here (the
// runner's per-job lock is the second line of defense); extra ticks are
// dropped, and a backlog of missed ticks coalesces to a single pending one.
func (s *Scheduler) jobLoop(ctx context.Context, job jobs.Job) {
	interval := time.Duration(job.IntervalSec) * time.Second
	next := time.Now().Add(interval)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	var inflight atomic.Bool

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-timer.C:
			late := now.Sub(next)
			next = next.Add(interval)
			if late > s.grace {
				for !next.After(now) {
					next = next.Add(interval)
				}
			}
			timer.Reset(time.Until(next))

			if !inflight.CompareAndSwap(false, true) {
				log.Printf("scheduler: [%s] invocation still in flight, tick dropped", job.Name)
				continue
			}
			go func() {
				defer inflight.Store(false)
				s.exec.RunOnce(ctx, job)
			}()
		}
	}
}
