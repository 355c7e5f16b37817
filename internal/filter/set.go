package filter

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/cloudflare/ahocorasick"
)

// Entry pairs a filter with the caller's identifier for it.
type Entry struct {
	ID     int64
	Filter *Filter
}

// Hit is a filter that matched a post.
type Hit struct {
	ID     int64
	Filter *Filter
	Result Result
}

// Set checks a post against many filters at once. Substring filters are
// narrowed down with an Aho-Corasick pass over the body before matching.
type Set struct {
	entries []Entry

	ac        *ahocorasick.Matcher
	keywords  []string
	byKeyword map[string][]int // keyword -> entry indexes
	always    []int            // entries without a usable keyword
}

// NewSet builds a Set. Entry order breaks ties when ranking hits.
func NewSet(entries ...Entry) *Set {
	s := &Set{
		entries:   entries,
		byKeyword: make(map[string][]int),
	}
	for i, e := range entries {
		if e.Filter == nil || e.Filter.Kind() != KindSubstring || e.Filter.Pattern() == "" {
			s.always = append(s.always, i)
			continue
		}
		p := e.Filter.Pattern()
		if _, ok := s.byKeyword[p]; !ok {
			s.keywords = append(s.keywords, p)
		}
		s.byKeyword[p] = append(s.byKeyword[p], i)
	}
	if len(s.keywords) > 0 {
		s.ac = ahocorasick.NewStringMatcher(s.keywords)
	}
	return s
}

// Len returns the number of filters in the set.
func (s *Set) Len() int { return len(s.entries) }

// Check returns every filter that matches post, most accurate first.
// An engine failure stops the check; the error wraps *MatchExecutionError.
func (s *Set) Check(post Post) ([]Hit, error) {
	candidates := make([]bool, len(s.entries))
	for _, i := range s.always {
		candidates[i] = true
	}
	if s.ac != nil {
		for _, k := range s.ac.MatchThreadSafe([]byte(post.Body)) {
			for _, i := range s.byKeyword[s.keywords[k]] {
				candidates[i] = true
			}
		}
	}

	var hits []Hit
	for i, e := range s.entries {
		if !candidates[i] {
			continue
		}
		res, err := e.Filter.Match(post)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", e.ID, err)
		}
		if res.Matched {
			hits = append(hits, Hit{ID: e.ID, Filter: e.Filter, Result: res})
		}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(b.Filter.Accuracy(), a.Filter.Accuracy()); c != 0 {
			return c
		}
		return cmp.Compare(b.Filter.TruePositives(), a.Filter.TruePositives())
	})
	return hits, nil
}
