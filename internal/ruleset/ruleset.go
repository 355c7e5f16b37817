// Package ruleset loads filter definitions from YAML files.
//
// A file holds a top-level "filters" list:
//
//	filters:
//	  - description: spam link
//	    kind: substring
//	    pattern: "http://bit.ly"
//	    true_positives: 10
//	    false_positives: 1
//	    examples: ["check this http://bit.ly/x"]
//	    negative_examples: ["no links here"]
//
// Examples must match the filter and negative examples must not; Validate
// checks both.
package ruleset

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"spam_bot/internal/filter"
	"spam_bot/internal/model"
)

// Definition is one filter as written in a ruleset file.
type Definition struct {
	Description      string   `yaml:"description"`
	Kind             string   `yaml:"kind"`
	Pattern          string   `yaml:"pattern,omitempty"`
	TruePositives    uint     `yaml:"true_positives,omitempty"`
	FalsePositives   uint     `yaml:"false_positives,omitempty"`
	Examples         []string `yaml:"examples,omitempty"`
	NegativeExamples []string `yaml:"negative_examples,omitempty"`
}

type file struct {
	Filters []Definition `yaml:"filters"`
}

// Load parses a ruleset from YAML bytes.
func Load(data []byte) ([]Definition, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(f.Filters) == 0 {
		return nil, fmt.Errorf("no filters found in YAML")
	}
	return f.Filters, nil
}

// LoadFile parses the ruleset stored at path.
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Load(data)
}

// Build constructs the filter described by d.
func (d Definition) Build(engine filter.Engine) (*filter.Filter, error) {
	kind, err := filter.ParseKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", d.Description, err)
	}
	f, err := filter.NewWithEngine(engine, d.Description, d.Pattern, kind, d.TruePositives, d.FalsePositives)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", d.Description, err)
	}
	return f, nil
}

// Record converts d into a storage record owned by chatID.
func (d Definition) Record(chatID int64) model.Filter {
	return model.Filter{
		ChatID:         chatID,
		Description:    d.Description,
		Pattern:        d.Pattern,
		Kind:           d.Kind,
		TruePositives:  d.TruePositives,
		FalsePositives: d.FalsePositives,
	}
}

// BuildSet builds every definition into a filter.Set. Entry IDs are the
// 1-based positions of the definitions.
func BuildSet(defs []Definition, engine filter.Engine) (*filter.Set, error) {
	entries := make([]filter.Entry, 0, len(defs))
	for i, d := range defs {
		f, err := d.Build(engine)
		if err != nil {
			return nil, err
		}
		entries = append(entries, filter.Entry{ID: int64(i + 1), Filter: f})
	}
	return filter.NewSet(entries...), nil
}

// Validate builds each definition and runs its examples. All problems are
// reported together.
func Validate(defs []Definition, engine filter.Engine) error {
	var errs []error
	for _, d := range defs {
		f, err := d.Build(engine)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, ex := range d.Examples {
			res, err := f.Match(filter.Post{Body: ex})
			if err != nil {
				errs = append(errs, fmt.Errorf("filter %q: example %q: %w", d.Description, ex, err))
				continue
			}
			if !res.Matched {
				errs = append(errs, fmt.Errorf("filter %q: example %q does not match", d.Description, ex))
			}
		}
		for _, ex := range d.NegativeExamples {
			res, err := f.Match(filter.Post{Body: ex})
			if err != nil {
				errs = append(errs, fmt.Errorf("filter %q: negative example %q: %w", d.Description, ex, err))
				continue
			}
			if res.Matched {
				errs = append(errs, fmt.Errorf("filter %q: negative example %q matches", d.Description, ex))
			}
		}
	}
	return errors.Join(errs...)
}
