// Package runner is the orchestration core: one run drives a browser session
// through an adapter's login/search/book sequence, applies the selection
// policy, and reports exactly one terminal outcome.
package runner

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/example/campsched/internal/adapter"
	"github.com/example/campsched/internal/browser"
	"github.com/example/campsched/internal/config"
	"github.com/example/campsched/internal/jobs"
	"github.com/example/campsched/internal/notify"
)

type OutcomeKind string

const (
	OutcomeNoMatch    OutcomeKind = "no_match"
	OutcomeDryRun     OutcomeKind = "dry_run"
	OutcomeBooked     OutcomeKind = "booked"
	OutcomeBookFailed OutcomeKind = "book_failed"
	OutcomeError      OutcomeKind = "error"
)

// Outcome is the explicit result of one run phase. Every run that gets past
// the enabled/lock checks produces exactly one.
type Outcome struct {
	Kind OutcomeKind
	Slot *adapter.SlotResult
	Err  error
}

// Recorder persists attempt outcomes; *history.Repo satisfies it. A nil
// recorder disables history.
type Recorder interface {
	Record(ctx context.Context, jobName, outcome, slotLabel, errText string) error
}

// Status is the in-memory view of a job's most recent run, for the ops UI.
type Status struct {
	JobName   string
	LastKind  OutcomeKind
	LastSlot  string
	LastError string
	LastRunAt time.Time
	Runs      int
}

type JobRunner struct {
	runtime  config.Runtime
	notifier *notify.Notifier
	launcher browser.Launcher
	recorder Recorder

	// one mutex per job name, built up-front from the known job list so
	// first access never races
	locks map[string]*sync.Mutex

	mu     sync.Mutex
	status map[string]*Status
}

func New(rt config.Runtime, notifier *notify.Notifier, launcher browser.Launcher, jobList []jobs.Job, recorder Recorder) *JobRunner {
	locks := make(map[string]*sync.Mutex, len(jobList))
	status := make(map[string]*Status, len(jobList))
	for _, j := range jobList {
		locks[j.Name] = &sync.Mutex{}
		status[j.Name] = &Status{JobName: j.Name}
	}
	return &JobRunner{
		runtime:  rt,
		notifier: notifier,
		launcher: launcher,
		recorder: recorder,
		locks:    locks,
		status:   status,
	}
}

// RunOnce executes one scheduled trigger. Disabled jobs are a silent no-op.
// If the previous run of the same job is still in flight the trigger is
// dropped with a single skip notification — never queued.
func (r *JobRunner) RunOnce(ctx context.Context, job jobs.Job) {
	if !job.Enabled {
		return
	}

	lock, ok := r.locks[job.Name]
	if !ok {
		log.Printf("runner: [%s] not registered, trigger ignored", job.Name)
		return
	}
	if !lock.TryLock() {
		r.send(ctx, fmt.Sprintf("[%s] skipped: previous run still in progress", job.Name))
		return
	}
	defer lock.Unlock()

	out := r.runPhase(ctx, job)
	r.report(ctx, job, out)
}

// runPhase is the guarded section. All failure modes — including adapter
// panics — collapse into an Outcome here; nothing escapes to the scheduler.
func (r *JobRunner) runPhase(ctx context.Context, job jobs.Job) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = Outcome{Kind: OutcomeError, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	factory, err := adapter.Lookup(job.Adapter)
	if err != nil {
		return Outcome{Kind: OutcomeError, Err: err}
	}

	var state []byte
	if path := r.runtime.StorageStatePath; path != "" {
		if b, err := os.ReadFile(path); err == nil {
			state = b
		}
	}

	sess, err := r.launcher.Launch(ctx, browser.Options{
		Headless:     r.runtime.Headless,
		Timeout:      r.runtime.Timeout,
		StorageState: state,
	})
	if err != nil {
		return Outcome{Kind: OutcomeError, Err: fmt.Errorf("opening browser session: %w", err)}
	}
	// the session closes on every exit path: success, no-match, dry-run,
	// booking outcome, error, panic
	defer func() {
		if err := sess.Close(context.WithoutCancel(ctx)); err != nil {
			log.Printf("runner: [%s] closing session: %v", job.Name, err)
		}
	}()

	site := factory(adapter.Env{
		Page:        sess.Page(),
		BaseURL:     job.BaseURL,
		Credentials: job.Credentials,
		Criteria:    job.Criteria,
		Runtime:     r.runtime,
	})

	if err := site.Login(ctx); err != nil {
		return Outcome{Kind: OutcomeError, Err: fmt.Errorf("login: %w", err)}
	}
	// persist the refreshed session right away so a later crash still
	// benefits from it
	if path := r.runtime.StorageStatePath; path != "" {
		r.persistState(ctx, sess, path, job.Name)
	}

	slots, err := site.SearchSlots(ctx)
	if err != nil {
		return Outcome{Kind: OutcomeError, Err: fmt.Errorf("search: %w", err)}
	}

	selected, ok := PickSlot(slots, job)
	if !ok {
		return Outcome{Kind: OutcomeNoMatch}
	}

	if r.runtime.DryRun {
		return Outcome{Kind: OutcomeDryRun, Slot: &selected}
	}

	booked, err := site.BookSlot(ctx, selected)
	if err != nil {
		return Outcome{Kind: OutcomeError, Err: fmt.Errorf("book: %w", err)}
	}
	if !booked {
		return Outcome{Kind: OutcomeBookFailed, Slot: &selected}
	}
	return Outcome{Kind: OutcomeBooked, Slot: &selected}
}

func (r *JobRunner) persistState(ctx context.Context, sess browser.Session, path, jobName string) {
	blob, err := sess.StorageState(ctx)
	if err != nil {
		log.Printf("runner: [%s] snapshotting session state: %v", jobName, err)
		return
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("runner: [%s] creating state dir: %v", jobName, err)
			return
		}
	}
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		log.Printf("runner: [%s] writing session state: %v", jobName, err)
	}
}

// report maps the outcome to exactly one notification, updates the status
// snapshot, and records history when configured. Delivery or recording
// failures are logged and never fail the job.
func (r *JobRunner) report(ctx context.Context, job jobs.Job, out Outcome) {
	var msg string
	switch out.Kind {
	case OutcomeNoMatch:
		msg = fmt.Sprintf("[%s] no slot matching the criteria", job.Name)
	case OutcomeDryRun:
		msg = fmt.Sprintf("[%s] DRY RUN: would book %s", job.Name, out.Slot.Label())
	case OutcomeBooked:
		msg = fmt.Sprintf("[%s] booked: %s / %s / %d night(s)", job.Name, out.Slot.SiteName, out.Slot.CheckIn, out.Slot.Nights)
	case OutcomeBookFailed:
		msg = fmt.Sprintf("[%s] booking attempt failed for %s", job.Name, out.Slot.Label())
	case OutcomeError:
		msg = fmt.Sprintf("[%s] error: %v", job.Name, out.Err)
	default:
		msg = fmt.Sprintf("[%s] finished: %s", job.Name, out.Kind)
	}
	r.send(ctx, msg)

	slotLabel := ""
	if out.Slot != nil {
		slotLabel = out.Slot.Label()
	}
	errText := ""
	if out.Err != nil {
		errText = out.Err.Error()
	}

	r.mu.Lock()
	if st, ok := r.status[job.Name]; ok {
		st.LastKind = out.Kind
		st.LastSlot = slotLabel
		st.LastError = errText
		st.LastRunAt = time.Now()
		st.Runs++
	}
	r.mu.Unlock()

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, job.Name, string(out.Kind), slotLabel, errText); err != nil {
			log.Printf("runner: [%s] recording attempt: %v", job.Name, err)
		}
	}
}

func (r *JobRunner) send(ctx context.Context, msg string) {
	if err := r.notifier.Send(ctx, msg); err != nil {
		log.Printf("runner: notification delivery: %v", err)
	}
}

// Snapshot returns a copy of the per-job status table for the ops UI.
func (r *JobRunner) Snapshot() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, 0, len(r.status))
	for _, st := range r.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobName < out[j].JobName })
	return out
}
