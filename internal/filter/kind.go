package filter

import "fmt"

// Kind identifies how a Filter decides whether a post matches.
// The zero value is not a valid kind.
type Kind int

// Supported filter kinds.
const (
	KindSubstring Kind = iota + 1
	KindRegex
	KindShortBody
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSubstring:
		return "substring"
	case KindRegex:
		return "regex"
	case KindShortBody:
		return "short_body"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a wire name back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "substring":
		return KindSubstring, nil
	case "regex":
		return KindRegex, nil
	case "short_body":
		return KindShortBody, nil
	}
	return 0, fmt.Errorf("unknown filter kind %q, use: substring, regex, short_body", s)
}
