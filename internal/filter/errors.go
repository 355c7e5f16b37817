package filter

import "fmt"

// PatternCompilationError is returned by New when a regex pattern does not
// compile. No usable Filter exists when this error is returned.
type PatternCompilationError struct {
	Pattern string
	Err     error
}

func (e *PatternCompilationError) Error() string {
	return fmt.Sprintf("compile regex %q: %v", e.Pattern, e.Err)
}

func (e *PatternCompilationError) Unwrap() error { return e.Err }

// MatchExecutionError is returned by Match when the regex engine fails while
// running a compiled pattern. It never means "no match".
type MatchExecutionError struct {
	Pattern string
	Err     error
}

func (e *MatchExecutionError) Error() string {
	return fmt.Sprintf("execute regex %q: %v", e.Pattern, e.Err)
}

func (e *MatchExecutionError) Unwrap() error { return e.Err }

// UnknownKindError reports a filter kind outside the supported set.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("invalid filter kind %d", int(e.Kind))
}
