package config

import (
	"fmt"

	"github.com/hbollon/go-edlib"
	"github.com/vmunix/vpress/internal/policy"
)

// minimum Jaro-Winkler similarity before a policy-name suggestion is offered.
const suggestionThreshold = 0.8

// Validate checks the loaded settings for problems a run cannot recover
// from. Override paths are deliberately not checked for existence: a
// nonexistent override is inert, not an error.
func (c *Config) Validate() error {
	if c.Job.Input == "" {
		return fmt.Errorf("job.input is required")
	}
	if c.Job.Output == "" {
		return fmt.Errorf("job.output is required")
	}
	if c.Job.Workers < 0 {
		return fmt.Errorf("job.workers must not be negative")
	}
	if c.Job.Threads < 0 {
		return fmt.Errorf("job.threads must not be negative")
	}

	if err := validatePolicy("compression.policy", c.Compression.Policy); err != nil {
		return err
	}
	for i, o := range c.Overrides {
		if o.Path == "" {
			return fmt.Errorf("override[%d]: path is required", i)
		}
		if err := validatePolicy(fmt.Sprintf("override[%d].policy", i), o.Policy); err != nil {
			return err
		}
	}
	return nil
}

func validatePolicy(field, name string) error {
	if policy.Compression(name).Valid() {
		return nil
	}
	if suggestion := suggestPolicy(name); suggestion != "" {
		return fmt.Errorf("%s: unknown policy %q (did you mean %q?)", field, name, suggestion)
	}
	return fmt.Errorf("%s: unknown policy %q", field, name)
}

// suggestPolicy returns the closest known policy name, or "" when
// nothing is close enough to be a plausible typo.
func suggestPolicy(name string) string {
	var best string
	var bestScore float32
	for _, c := range policy.Compressions() {
		score := edlib.JaroWinklerSimilarity(name, string(c))
		if score > bestScore {
			best, bestScore = string(c), score
		}
	}
	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}
