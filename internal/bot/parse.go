package bot

import (
	"fmt"
	"strconv"
	"strings"

	"spam_bot/internal/filter"
)

// FilterArgs holds the parsed arguments of /addfilter.
type FilterArgs struct {
	Kind        filter.Kind
	Description string
	Pattern     string
}

// ParseFilterCommand parses arguments for /addfilter.
// Format: <kind> <description> | <pattern>
// The pattern may be omitted for short_body filters.
func ParseFilterCommand(args string) (FilterArgs, error) {
	const usage = "usage: /addfilter <substring|regex|short_body> <description> | <pattern>"

	kindStr, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	if kindStr == "" {
		return FilterArgs{}, fmt.Errorf("%s", usage)
	}
	kind, err := filter.ParseKind(strings.ToLower(kindStr))
	if err != nil {
		return FilterArgs{}, err
	}

	desc, pattern, hasPattern := strings.Cut(rest, "|")
	desc = strings.TrimSpace(desc)
	pattern = strings.TrimSpace(pattern)
	if desc == "" {
		return FilterArgs{}, fmt.Errorf("filter description is required\n%s", usage)
	}
	if kind != filter.KindShortBody && (!hasPattern || pattern == "") {
		return FilterArgs{}, fmt.Errorf("%s filter needs a pattern\n%s", kind, usage)
	}
	if kind == filter.KindShortBody {
		pattern = ""
	}

	return FilterArgs{Kind: kind, Description: desc, Pattern: pattern}, nil
}

// ParseIDArg extracts a numeric ID from a command argument string.
func ParseIDArg(args string) (int64, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("ID is required")
	}
	id, err := strconv.ParseInt(strings.Fields(s)[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

// ParseRenameArgs extracts a feed ID and new name from command arguments.
func ParseRenameArgs(args string) (int64, string, error) {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 2 {
		return 0, "", fmt.Errorf("usage: /rename <id> <new_name>")
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid feed ID %q", parts[0])
	}
	name := strings.TrimSpace(parts[1])
	if name == "" {
		return 0, "", fmt.Errorf("new name cannot be empty")
	}
	return id, name, nil
}

// ParseIntervalArgs extracts a feed ID and interval in minutes.
func ParseIntervalArgs(args string) (int64, int, error) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("usage: /interval <id> <minutes>")
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid feed ID %q", parts[0])
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil || mins < 1 || mins > 1440 {
		return 0, 0, fmt.Errorf("interval must be between 1 and 1440 minutes")
	}
	return id, mins, nil
}
