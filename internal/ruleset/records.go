package ruleset

import (
	"errors"
	"fmt"

	"spam_bot/internal/filter"
	"spam_bot/internal/model"
)

// FromRecord constructs the filter for a stored record.
func FromRecord(r model.Filter, engine filter.Engine) (*filter.Filter, error) {
	kind, err := filter.ParseKind(r.Kind)
	if err != nil {
		return nil, fmt.Errorf("filter %d: %w", r.ID, err)
	}
	f, err := filter.NewWithEngine(engine, r.Description, r.Pattern, kind, r.TruePositives, r.FalsePositives)
	if err != nil {
		return nil, fmt.Errorf("filter %d: %w", r.ID, err)
	}
	return f, nil
}

// SetFromRecords builds a set keyed by record ID. Records that fail to build
// are left out and their errors returned joined alongside the set.
func SetFromRecords(records []model.Filter, engine filter.Engine) (*filter.Set, error) {
	entries := make([]filter.Entry, 0, len(records))
	var errs []error
	for _, r := range records {
		f, err := FromRecord(r, engine)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, filter.Entry{ID: r.ID, Filter: f})
	}
	return filter.NewSet(entries...), errors.Join(errs...)
}
