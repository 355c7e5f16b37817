package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"spam_bot/internal/filter"
)

// wordTable is the on-disk word model. JSON files are accepted as well since
// they parse as YAML:
//
//	{"initialProbability": 0.263, "wordProbabilities": {"replica": [0.9, 0.01]}}
//
// Each word maps to [spam probability, ham probability].
type wordTable struct {
	InitialProbability *float64              `yaml:"initialProbability"`
	WordProbabilities  map[string][]float64 `yaml:"wordProbabilities"`
}

// LoadWordModel parses a word table. The prior defaults to
// filter.DefaultPrior when the table does not set one.
func LoadWordModel(data []byte) (*filter.WordModel, error) {
	var t wordTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse word table: %w", err)
	}
	if len(t.WordProbabilities) == 0 {
		return nil, fmt.Errorf("no words found in word table")
	}

	prior := filter.DefaultPrior
	if t.InitialProbability != nil {
		prior = *t.InitialProbability
	}

	words := make(map[string]filter.WordProbability, len(t.WordProbabilities))
	for w, p := range t.WordProbabilities {
		if len(p) != 2 {
			return nil, fmt.Errorf("word %q: want [spam, ham] probabilities, got %d values", w, len(p))
		}
		words[w] = filter.WordProbability{Spam: p[0], Ham: p[1]}
	}
	return filter.NewWordModel(prior, words)
}

// LoadWordModelFile parses the word table stored at path.
func LoadWordModelFile(path string) (*filter.WordModel, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return LoadWordModel(data)
}
