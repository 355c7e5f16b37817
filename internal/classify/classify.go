// Package classify runs a chat's filters over feed posts and records the
// posts they flag.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spam_bot/internal/fetcher"
	"spam_bot/internal/filter"
	"spam_bot/internal/model"
	"spam_bot/internal/ruleset"
	"spam_bot/internal/storage"
)

// Flagged is a post that matched at least one filter or that the word model
// judged spam. Report describes the most accurate hit, which is Hits[0]; when
// no filter hit, Report.FilterID is zero and Words explains the verdict.
type Flagged struct {
	Item   fetcher.Item
	Report model.Report
	Hits   []filter.Hit
	// Words is the word model verdict, nil when no model is configured.
	Words *filter.WordVerdict
}

// Classifier checks posts against the filters stored for a chat and, when
// configured, a shared word model.
type Classifier struct {
	store  storage.Storage
	engine filter.Engine
	words  *filter.WordModel
	log    *slog.Logger
}

// New creates a Classifier that compiles regex filters with engine.
func New(store storage.Storage, engine filter.Engine, log *slog.Logger) *Classifier {
	return &Classifier{store: store, engine: engine, log: log}
}

// Engine returns the regex engine used for stored filters.
func (c *Classifier) Engine() filter.Engine { return c.engine }

// SetWordModel enables the word model for every chat. It must be called
// before the classifier is shared between goroutines.
func (c *Classifier) SetWordModel(m *filter.WordModel) { c.words = m }

// WordModel returns the configured word model or nil.
func (c *Classifier) WordModel() *filter.WordModel { return c.words }

// ClassifyWords runs the word model over post. It returns nil when no model
// is configured.
func (c *Classifier) ClassifyWords(post filter.Post) *filter.WordVerdict {
	if c.words == nil {
		return nil
	}
	v := c.words.Classify(post)
	return &v
}

// FilterSet builds the filter set for chatID from storage. Stored filters
// that no longer compile are logged and skipped.
func (c *Classifier) FilterSet(ctx context.Context, chatID int64) (*filter.Set, error) {
	records, err := c.store.ListFilters(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	set, err := ruleset.SetFromRecords(records, c.engine)
	if err != nil {
		c.log.Warn("skipping filters", "chat_id", chatID, "error", err)
	}
	return set, nil
}

// Process checks every unseen item of feed. Flagged items get a stored
// report, which also marks them seen; the rest are marked seen directly. An
// item whose check fails with an engine error stays unseen so the next run
// retries it.
func (c *Classifier) Process(ctx context.Context, feed model.Feed, items []fetcher.Item) ([]Flagged, error) {
	set, err := c.FilterSet(ctx, feed.ChatID)
	if err != nil {
		return nil, err
	}

	var flagged []Flagged
	for _, item := range items {
		if ctx.Err() != nil {
			return flagged, ctx.Err()
		}

		seen, err := c.store.IsSeen(ctx, feed.ID, item.GUID)
		if err != nil {
			c.log.Error("check seen", "feed_id", feed.ID, "guid", item.GUID, "error", err)
			continue
		}
		if seen {
			continue
		}

		post := item.Post()
		hits, err := set.Check(post)
		if err != nil {
			var mee *filter.MatchExecutionError
			if errors.As(err, &mee) {
				c.log.Error("regex execution failed", "feed_id", feed.ID, "guid", item.GUID, "pattern", mee.Pattern, "error", mee.Err)
			} else {
				c.log.Error("check post", "feed_id", feed.ID, "guid", item.GUID, "error", err)
			}
			continue
		}
		words := c.ClassifyWords(post)

		if len(hits) == 0 && (words == nil || !words.Spam) {
			if err := c.store.MarkSeen(ctx, feed.ID, item.GUID); err != nil {
				c.log.Error("mark seen", "feed_id", feed.ID, "guid", item.GUID, "error", err)
			}
			continue
		}

		report := newReport(feed.ID, item, hits)
		if err := c.store.CreateReport(ctx, &report); err != nil {
			c.log.Error("create report", "feed_id", feed.ID, "guid", item.GUID, "error", err)
			continue
		}
		flagged = append(flagged, Flagged{Item: item, Report: report, Hits: hits, Words: words})
	}
	return flagged, nil
}

// newReport describes the top hit, or the word model when hits is empty.
func newReport(feedID int64, item fetcher.Item, hits []filter.Hit) model.Report {
	r := model.Report{
		FeedID: feedID,
		GUID:   item.GUID,
		Title:  item.Title,
		Link:   item.Link,
	}
	if len(hits) == 0 {
		return r
	}
	top := hits[0]
	r.FilterID = top.ID
	if sp := top.Result.Span; sp != nil {
		r.Start, r.End, r.HasSpan = sp.Start, sp.End, true
	}
	return r
}
