// Package config loads the refit configuration file: the replacement rules
// that make up the shipped transform, plus optional run defaults.
package config

import (
	"gitlab.com/tozd/go/errors"

	"refit/pkg/transform"
)

// Rule is a single literal replacement applied to every processed file.
type Rule struct {
	From string `json:"from" yaml:"from" hcl:"from"`
	To   string `json:"to" yaml:"to" hcl:"to,optional"`
}

// Config is the refit configuration.
type Config struct {
	// Rules are applied in order by the shipped replacer transform.
	Rules []Rule `json:"rules,omitempty" yaml:"rules,omitempty" hcl:"rule,block"`

	// Actions, when set, overrides the default action sequence, in the
	// same comma-separated form as the --actions flag.
	Actions string `json:"actions,omitempty" yaml:"actions,omitempty" hcl:"actions,optional"`

	// Diff is an external diff command invoked as "diff oldpath newpath".
	// Empty selects the builtin diff renderer.
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty" hcl:"diff,optional"`

	location string
}

// Location returns the path the config was loaded from, empty for the
// zero config.
func (c *Config) Location() string {
	return c.location
}

// TransformRules converts the configured rules for the replacer transform.
func (c *Config) TransformRules() []transform.Rule {
	rules := make([]transform.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rules = append(rules, transform.Rule{From: r.From, To: r.To})
	}
	return rules
}

// Validate checks the loaded config for inconsistencies.
func Validate(cfg *Config) error {
	for i, r := range cfg.Rules {
		if r.From == "" {
			return errors.Errorf("rule %d: from is required", i)
		}
	}
	return nil
}
