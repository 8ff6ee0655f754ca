// Package captcha provides pluggable solvers for text challenges adapters
// hit mid-flow. The interactive solver reads from stdin on its own goroutine
// so a pending prompt never stalls other scheduled jobs.
package captcha

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

type Solver interface {
	Solve(ctx context.Context, prompt string) (string, error)
}

// Manual blocks on operator input. An optional deadline bounds the wait;
// zero means wait forever, matching historical behavior.
type Manual struct {
	In       io.Reader
	Out      io.Writer
	Deadline time.Duration
}

func (m *Manual) Solve(ctx context.Context, prompt string) (string, error) {
	in := m.In
	if in == nil {
		in = os.Stdin
	}
	out := m.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprint(out, prompt)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		ch <- result{strings.TrimSpace(line), err}
	}()

	if m.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Deadline)
		defer cancel()
	}

	select {
	case r := <-ch:
		if r.err != nil && r.line == "" {
			return "", r.err
		}
		return r.line, nil
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for captcha input: %w", ctx.Err())
	}
}

// Fixed returns a pre-configured code, for deterministic testing.
type Fixed struct {
	Code string
}

func (f *Fixed) Solve(ctx context.Context, prompt string) (string, error) {
	return strings.TrimSpace(f.Code), nil
}

// ForMode selects a solver by mode string. Unrecognized modes fall back to
// the interactive solver.
func ForMode(mode, fixedCode string, inputDeadline time.Duration) Solver {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "fixed":
		return &Fixed{Code: fixedCode}
	default:
		return &Manual{Deadline: inputDeadline}
	}
}
