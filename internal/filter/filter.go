// Package filter implements the rules that classify posts: literal substring
// search, regular expression search and a short-body heuristic. Each rule
// carries the true/false positive counts collected from user feedback.
package filter

import (
	"fmt"
	"strings"
)

// ShortBodyLimit is the body length, in bytes, below which a KindShortBody
// filter matches.
const ShortBodyLimit = 500

// Post is the text being classified.
type Post struct {
	Body string
}

// Span is a half-open byte range [Start, End) within a post body.
type Span struct {
	Start int
	End   int
}

// Result is the outcome of matching one post against one filter.
// Span is nil when Matched is false and for KindShortBody filters.
type Result struct {
	Matched bool
	Span    *Span
}

// Filter is an immutable classification rule. Construct it with New; the zero
// value matches nothing and reports an UnknownKindError.
// A Filter is safe for concurrent use.
type Filter struct {
	description    string
	pattern        string
	kind           Kind
	truePositives  uint
	falsePositives uint
	m              matcher
}

// New builds a filter using the POSIX regex engine.
func New(description, pattern string, kind Kind, truePositives, falsePositives uint) (*Filter, error) {
	return NewWithEngine(POSIXEngine{}, description, pattern, kind, truePositives, falsePositives)
}

// NewWithEngine builds a filter, compiling pattern with engine when kind is
// KindRegex. A pattern that fails to compile yields *PatternCompilationError
// and a nil Filter.
func NewWithEngine(engine Engine, description, pattern string, kind Kind, truePositives, falsePositives uint) (*Filter, error) {
	f := &Filter{
		description:    description,
		pattern:        pattern,
		kind:           kind,
		truePositives:  truePositives,
		falsePositives: falsePositives,
	}

	switch kind {
	case KindSubstring:
		f.m = substringMatcher{pattern: pattern}
	case KindRegex:
		prog, err := engine.Compile(pattern)
		if err != nil {
			return nil, &PatternCompilationError{Pattern: pattern, Err: err}
		}
		f.m = regexMatcher{pattern: pattern, prog: prog}
	case KindShortBody:
		f.m = shortBodyMatcher{}
	default:
		return nil, &UnknownKindError{Kind: kind}
	}
	return f, nil
}

// Description returns the human-readable rule name.
func (f *Filter) Description() string { return f.description }

// Pattern returns the raw pattern text.
func (f *Filter) Pattern() string { return f.pattern }

// Kind returns the filter kind.
func (f *Filter) Kind() Kind { return f.kind }

// TruePositives returns the number of confirmed correct matches.
func (f *Filter) TruePositives() uint { return f.truePositives }

// FalsePositives returns the number of matches marked as wrong.
func (f *Filter) FalsePositives() uint { return f.falsePositives }

// Accuracy returns TruePositives / (TruePositives + FalsePositives),
// or 0.5 for a filter without feedback.
func (f *Filter) Accuracy() float64 {
	total := f.truePositives + f.falsePositives
	if total == 0 {
		return 0.5
	}
	return float64(f.truePositives) / float64(total)
}

func (f *Filter) String() string {
	return fmt.Sprintf("%s %s %q", f.kind, f.description, f.pattern)
}

// Match reports whether post matches the filter and where.
// It neither modifies the filter nor the post.
func (f *Filter) Match(post Post) (Result, error) {
	if f == nil || f.m == nil {
		var k Kind
		if f != nil {
			k = f.kind
		}
		return Result{}, &UnknownKindError{Kind: k}
	}
	return f.m.match(post.Body)
}

// matcher is implemented only by the three kinds in this file.
type matcher interface {
	match(body string) (Result, error)
}

type substringMatcher struct {
	pattern string
}

func (m substringMatcher) match(body string) (Result, error) {
	i := strings.Index(body, m.pattern)
	if i < 0 {
		return Result{}, nil
	}
	return Result{Matched: true, Span: &Span{Start: i, End: i + len(m.pattern)}}, nil
}

type regexMatcher struct {
	pattern string
	prog    Program
}

func (m regexMatcher) match(body string) (Result, error) {
	loc, err := m.prog.FindIndex(body)
	if err != nil {
		return Result{}, &MatchExecutionError{Pattern: m.pattern, Err: err}
	}
	if loc == nil {
		return Result{}, nil
	}
	return Result{Matched: true, Span: &Span{Start: loc[0], End: loc[1]}}, nil
}

type shortBodyMatcher struct{}

func (shortBodyMatcher) match(body string) (Result, error) {
	return Result{Matched: len(body) < ShortBodyLimit}, nil
}
