package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/campsched/internal/browser"
)

// Selectors is the criteria-driven locator table. Each key maps to one CSS
// selector or a list of candidates tried in order, first match wins, so the
// same adapter tolerates minor DOM drift without code changes.
type Selectors struct {
	table map[string]any
}

func (e Env) Selectors() Selectors {
	return Selectors{table: e.Criteria.Sub("selectors")}
}

func (s Selectors) Candidates(key string) []string {
	v, ok := s.table[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			if str := fmt.Sprintf("%v", item); str != "" {
				out = append(out, str)
			}
		}
		return out
	}
	return []string{fmt.Sprintf("%v", v)}
}

// One returns the first candidate for a key, or "".
func (s Selectors) One(key string) string {
	cands := s.Candidates(key)
	if len(cands) == 0 {
		return ""
	}
	return cands[0]
}

// fillFirst fills the first candidate selector present on the page.
// Individual candidate failures are swallowed; false means none worked.
func fillFirst(ctx context.Context, page browser.Page, candidates []string, value string) bool {
	for _, sel := range candidates {
		ok, err := page.Exists(ctx, sel)
		if err != nil || !ok {
			continue
		}
		if err := page.Fill(ctx, sel, value); err == nil {
			return true
		}
	}
	return false
}

func clickFirst(ctx context.Context, page browser.Page, candidates []string) bool {
	for _, sel := range candidates {
		ok, err := page.Exists(ctx, sel)
		if err != nil || !ok {
			continue
		}
		if err := page.Click(ctx, sel); err == nil {
			return true
		}
	}
	return false
}

// waitAny polls until any candidate selector appears or the deadline passes.
// This covers slow login forms that render after redirects; the deadline is
// independent of the per-action timeout.
func waitAny(ctx context.Context, page browser.Page, candidates []string, deadline, poll time.Duration) bool {
	end := time.Now().Add(deadline)
	for {
		for _, sel := range candidates {
			if ok, err := page.Exists(ctx, sel); err == nil && ok {
				return true
			}
		}
		if time.Now().After(end) {
			return false
		}
		if !sleep(ctx, poll) {
			return false
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// dumpDebug writes a timestamped screenshot and page snapshot under logs/
// for post-mortem inspection. Best effort: never raises, never blocks the
// failure path it is called from.
func dumpDebug(ctx context.Context, page browser.Page, tag string) {
	stamp := time.Now().Format("20060102_150405")
	dir := "logs"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	if png, err := page.Screenshot(ctx); err == nil {
		_ = os.WriteFile(filepath.Join(dir, fmt.Sprintf("%s_%s.png", tag, stamp)), png, 0o644)
	}
	if html, err := page.Content(ctx); err == nil {
		_ = os.WriteFile(filepath.Join(dir, fmt.Sprintf("%s_%s.html", tag, stamp)), []byte(html), 0o644)
	}
}
