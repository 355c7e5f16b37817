package filter

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"time"

	"github.com/dlclark/regexp2"
)

// Engine compiles regex patterns for KindRegex filters.
type Engine interface {
	Compile(pattern string) (Program, error)
}

// Program is a compiled pattern. FindIndex returns the byte offsets of the
// leftmost match, nil when there is none, or an error when the engine could
// not finish. Implementations must be safe for concurrent use.
type Program interface {
	FindIndex(body string) ([]int, error)
}

// POSIXEngine accepts POSIX extended regular expression syntax and matches
// case-insensitively with leftmost-longest semantics. Dot matches newlines and
// anchors apply to the whole body, as with regcomp without REG_NEWLINE.
// Stacked repetition operators such as a** or a+* are rejected as invalid
// even though some libc regcomp implementations accept them.
type POSIXEngine struct{}

// Compile implements Engine.
func (POSIXEngine) Compile(pattern string) (Program, error) {
	if _, err := syntax.Parse(pattern, syntax.POSIX); err != nil {
		return nil, err
	}
	re, err := regexp.Compile("(?is)" + pattern)
	if err != nil {
		return nil, err
	}
	re.Longest()
	return posixProgram{re: re}, nil
}

type posixProgram struct {
	re *regexp.Regexp
}

func (p posixProgram) FindIndex(body string) ([]int, error) {
	return p.re.FindStringIndex(body), nil
}

// DefaultMatchTimeout bounds a single BacktrackEngine match.
const DefaultMatchTimeout = time.Second

// BacktrackEngine uses regexp2, which supports backreferences and lookaround
// at the cost of possible exponential run time. Matches that exceed Timeout
// fail with an error instead of running on.
type BacktrackEngine struct {
	Timeout time.Duration
}

// Compile implements Engine.
func (e BacktrackEngine) Compile(pattern string) (Program, error) {
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase|regexp2.Singleline)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = e.Timeout
	if re.MatchTimeout <= 0 {
		re.MatchTimeout = DefaultMatchTimeout
	}
	return backtrackProgram{re: re}, nil
}

type backtrackProgram struct {
	re *regexp2.Regexp
}

func (p backtrackProgram) FindIndex(body string) ([]int, error) {
	m, err := p.re.FindStringMatch(body)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	// regexp2 reports rune offsets.
	start := runeToByteOffset(body, m.Index)
	end := runeToByteOffset(body, m.Index+m.Length)
	return []int{start, end}, nil
}

func runeToByteOffset(s string, n int) int {
	i := 0
	for off := range s {
		if i == n {
			return off
		}
		i++
	}
	return len(s)
}

// EngineByName returns the engine registered under name ("posix" or
// "backtrack"). timeout only applies to the backtracking engine.
func EngineByName(name string, timeout time.Duration) (Engine, error) {
	switch name {
	case "", "posix":
		return POSIXEngine{}, nil
	case "backtrack":
		return BacktrackEngine{Timeout: timeout}, nil
	}
	return nil, fmt.Errorf("unknown regex engine %q, use: posix, backtrack", name)
}
