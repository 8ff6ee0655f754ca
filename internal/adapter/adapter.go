// Package adapter fixes the three semantic checkpoints the orchestration
// core reasons about — authenticate, discover, commit — and leaves everything
// else (popups, anti-bot challenges, payment steps) private to each site
// implementation.
package adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/example/campsched/internal/browser"
	"github.com/example/campsched/internal/captcha"
	"github.com/example/campsched/internal/config"
	"github.com/example/campsched/internal/jobs"
)

// SlotResult is a discovered reservation opportunity. Produced fresh by
// SearchSlots each run, consumed by the selection policy in the same run,
// never persisted.
type SlotResult struct {
	SlotID   string
	Zone     string
	SiteName string
	CheckIn  string
	Nights   int
	Capacity int
}

func (s SlotResult) Label() string {
	return fmt.Sprintf("%s (%s)", s.SiteName, s.Zone)
}

type SiteAdapter interface {
	// Login establishes an authenticated browsing context. A recoverable
	// configuration problem (missing credentials or selectors) surfaces as
	// a *ConfigError.
	Login(ctx context.Context) error

	// SearchSlots returns zero or more opportunities. No availability is
	// an empty list, not an error.
	SearchSlots(ctx context.Context) ([]SlotResult, error)

	// BookSlot attempts to finalize a reservation. False means a
	// recognized failure to report without crashing the run; unrecognized
	// failures come back as errors.
	BookSlot(ctx context.Context, slot SlotResult) (bool, error)
}

// Env is everything an adapter gets to work with: the page handle, the job's
// target and opaque settings, and the process runtime.
type Env struct {
	Page        browser.Page
	BaseURL     string
	Credentials map[string]string
	Criteria    jobs.Criteria
	Runtime     config.Runtime

	// Solver overrides the mode-selected captcha solver; mainly for tests.
	Solver captcha.Solver
}

func (e Env) solver() captcha.Solver {
	if e.Solver != nil {
		return e.Solver
	}
	mode := e.Criteria.String("captcha_mode")
	if mode == "" {
		mode = e.Runtime.CaptchaMode
	}
	return captcha.ForMode(mode, e.Runtime.CaptchaFixedCode, e.Runtime.CaptchaInputTimeout)
}

type Factory func(Env) SiteAdapter

var registry = map[string]Factory{}

// Register adds an adapter implementation under a key. Called from init;
// the registry is read-only once the process is serving.
func Register(name string, f Factory) {
	registry[name] = f
}

// Lookup resolves an adapter key. Unknown keys are a configuration error
// naming the valid keys.
func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown adapter %q, available: %s", name, strings.Join(Names(), ", "))}
	}
	return f, nil
}

func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
