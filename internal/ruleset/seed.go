package ruleset

import (
	"context"
	"fmt"

	"spam_bot/internal/filter"
	"spam_bot/internal/storage"
)

// Seed imports the ruleset at path as filters owned by chatID. It does
// nothing when the chat already has filters, so restarts do not duplicate
// them. The ruleset must validate before anything is written. It returns the
// number of filters created.
func Seed(ctx context.Context, store storage.Storage, path string, chatID int64, engine filter.Engine) (int, error) {
	existing, err := store.ListFilters(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("list filters: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	defs, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	if err := Validate(defs, engine); err != nil {
		return 0, fmt.Errorf("validate %s: %w", path, err)
	}

	for i, d := range defs {
		rec := d.Record(chatID)
		if err := store.CreateFilter(ctx, &rec); err != nil {
			return i, fmt.Errorf("create filter %q: %w", d.Description, err)
		}
	}
	return len(defs), nil
}
