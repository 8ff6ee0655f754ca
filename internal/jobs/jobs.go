package jobs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Job is a named, independently scheduled booking task. It is built once at
// startup from the config file and immutable afterwards; the name doubles as
// the scheduler id and the run-exclusivity lock key.
type Job struct {
	Name        string            `yaml:"name"`
	Enabled     bool              `yaml:"enabled"`
	Adapter     string            `yaml:"adapter"`
	BaseURL     string            `yaml:"base_url"`
	IntervalSec int               `yaml:"interval_seconds"`
	Credentials map[string]string `yaml:"credentials"`
	Criteria    Criteria          `yaml:"criteria"`
}

type jobFile struct {
	Jobs []rawJob `yaml:"jobs"`
}

type rawJob struct {
	Name        string            `yaml:"name"`
	Enabled     *bool             `yaml:"enabled"`
	Adapter     string            `yaml:"adapter"`
	BaseURL     string            `yaml:"base_url"`
	IntervalSec int               `yaml:"interval_seconds"`
	Credentials map[string]string `yaml:"credentials"`
	Criteria    map[string]any    `yaml:"criteria"`
}

// Load reads and validates the job set from a YAML file.
func Load(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job config: %w", err)
	}
	var f jobFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing job config: %w", err)
	}

	out := make([]Job, 0, len(f.Jobs))
	seen := make(map[string]bool, len(f.Jobs))
	for i, r := range f.Jobs {
		j := Job{
			Name:        r.Name,
			Enabled:     true,
			Adapter:     r.Adapter,
			BaseURL:     r.BaseURL,
			IntervalSec: r.IntervalSec,
			Credentials: r.Credentials,
			Criteria:    Criteria(r.Criteria),
		}
		if r.Enabled != nil {
			j.Enabled = *r.Enabled
		}
		if j.IntervalSec == 0 {
			j.IntervalSec = 30
		}
		if j.Credentials == nil {
			j.Credentials = map[string]string{}
		}
		if j.Criteria == nil {
			j.Criteria = Criteria{}
		}
		if err := j.Validate(); err != nil {
			return nil, fmt.Errorf("job #%d (%q): %w", i+1, r.Name, err)
		}
		if seen[j.Name] {
			return nil, fmt.Errorf("duplicate job name %q", j.Name)
		}
		seen[j.Name] = true
		out = append(out, j)
	}
	return out, nil
}

func (j Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("name required")
	}
	if j.Adapter == "" {
		return fmt.Errorf("adapter required")
	}
	if j.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if j.IntervalSec < 1 {
		return fmt.Errorf("interval_seconds must be >= 1")
	}
	return nil
}
