package jobs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
jobs:
  - name: camp
    adapter: interpark_anseong
    base_url: https://tickets.example.com
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one job, got %d", len(got))
	}
	j := got[0]
	if !j.Enabled {
		t.Error("enabled should default to true")
	}
	if j.IntervalSec != 30 {
		t.Errorf("interval should default to 30, got %d", j.IntervalSec)
	}
	if j.Credentials == nil || j.Criteria == nil {
		t.Error("credentials and criteria must never be nil")
	}
}

func TestLoadHonorsExplicitDisable(t *testing.T) {
	path := writeConfig(t, `
jobs:
  - name: camp
    enabled: false
    adapter: mock
    base_url: https://example.com
    interval_seconds: 5
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[0].Enabled {
		t.Error("explicit enabled: false must survive loading")
	}
	if got[0].IntervalSec != 5 {
		t.Errorf("explicit interval lost, got %d", got[0].IntervalSec)
	}
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	path := writeConfig(t, `
jobs:
  - name: camp
    adapter: mock
    base_url: https://example.com
  - name: camp
    adapter: mock
    base_url: https://example.com
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "duplicate job name") {
		t.Errorf("expected a duplicate-name error, got %v", err)
	}
}

func TestLoadRejectsIncompleteJobs(t *testing.T) {
	cases := map[string]string{
		"missing name": `
jobs:
  - adapter: mock
    base_url: https://example.com
`,
		"missing adapter": `
jobs:
  - name: camp
    base_url: https://example.com
`,
		"missing base_url": `
jobs:
  - name: camp
    adapter: mock
`,
		"negative interval": `
jobs:
  - name: camp
    adapter: mock
    base_url: https://example.com
    interval_seconds: -3
`,
	}
	for label, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected a validation error", label)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoadPassesCriteriaThrough(t *testing.T) {
	path := writeConfig(t, `
jobs:
  - name: camp
    adapter: interpark_anseong
    base_url: https://tickets.example.com
    credentials:
      username: u
      password: p
    criteria:
      guests: 4
      check_in: "2026-09-12"
      preferred_zones: [RIVER, DECK]
      selectors:
        username_input: "#userId"
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c := got[0].Criteria
	if c.Int("guests", 1) != 4 {
		t.Errorf("guests: got %d", c.Int("guests", 1))
	}
	if c.String("check_in") != "2026-09-12" {
		t.Errorf("check_in: got %q", c.String("check_in"))
	}
	if zones := c.StringList("preferred_zones"); len(zones) != 2 || zones[0] != "RIVER" {
		t.Errorf("preferred_zones: got %v", zones)
	}
	if c.Sub("selectors").String("username_input") != "#userId" {
		t.Errorf("nested selectors lost: %v", c.Sub("selectors"))
	}
	if got[0].Credentials["username"] != "u" {
		t.Errorf("credentials lost: %v", got[0].Credentials)
	}
}

func TestCriteriaAccessors(t *testing.T) {
	c := Criteria{
		"int":        3,
		"float":      float64(7),
		"numstr":     "12",
		"badnum":     "x",
		"flag":       true,
		"flagstr":    "yes",
		"offstr":     "off",
		"scalarlist": "one",
		"list":       []any{"a", "", nil, "b"},
		"nested":     map[string]any{"k": "v"},
	}

	if c.Int("int", 0) != 3 || c.Int("float", 0) != 7 || c.Int("numstr", 0) != 12 {
		t.Error("Int conversions failed")
	}
	if c.Int("badnum", 9) != 9 || c.Int("absent", 9) != 9 {
		t.Error("Int should fall back to the default")
	}
	if !c.Bool("flag") || !c.Bool("flagstr") || c.Bool("offstr") || c.Bool("absent") {
		t.Error("Bool conversions failed")
	}
	if got := c.StringList("scalarlist"); len(got) != 1 || got[0] != "one" {
		t.Errorf("scalar StringList: %v", got)
	}
	if got := c.StringList("list"); len(got) != 2 || got[1] != "b" {
		t.Errorf("list StringList should drop empties, got %v", got)
	}
	if c.Sub("nested").String("k") != "v" {
		t.Error("Sub lost nested values")
	}
	if c.Sub("absent") == nil {
		t.Error("Sub of a missing key must be an empty, non-nil table")
	}
}
