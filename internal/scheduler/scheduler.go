// Package scheduler polls due feeds and reports the posts that filters flag.
package scheduler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"spam_bot/internal/classify"
	"spam_bot/internal/fetcher"
	"spam_bot/internal/model"
	"spam_bot/internal/storage"
)

// Sender delivers reports to a chat.
type Sender interface {
	SendReport(feed model.Feed, f classify.Flagged)
}

// Scheduler periodically checks feeds and sends reports.
type Scheduler struct {
	store      storage.Storage
	fetcher    *fetcher.Fetcher
	classifier *classify.Classifier
	sender     Sender
	log        *slog.Logger
	tick       time.Duration
	pause      time.Duration
}

// New creates a Scheduler with the default HTTP client.
func New(store storage.Storage, classifier *classify.Classifier, sender Sender, log *slog.Logger) *Scheduler {
	return NewWithFetcher(store, fetcher.New(http.DefaultClient), classifier, sender, log)
}

// NewWithFetcher creates a Scheduler with a custom fetcher (useful for testing).
func NewWithFetcher(store storage.Storage, f *fetcher.Fetcher, classifier *classify.Classifier, sender Sender, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:      store,
		fetcher:    f,
		classifier: classifier,
		sender:     sender,
		log:        log,
		tick:       1 * time.Minute,
		pause:      50 * time.Millisecond,
	}
}

// SetTickInterval overrides the default 1-minute check interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.checkAll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

func (s *Scheduler) checkAll(ctx context.Context) {
	feeds, err := s.store.ListDueFeeds(ctx)
	if err != nil {
		s.log.Error("list due feeds", "error", err)
		return
	}

	for _, feed := range feeds {
		if ctx.Err() != nil {
			return
		}
		s.processFeed(ctx, feed)
	}
}

func (s *Scheduler) processFeed(ctx context.Context, feed model.Feed) {
	s.log.Debug("checking feed", "feed_id", feed.ID, "name", feed.Name)

	parsed, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		s.log.Error("fetch feed", "feed_id", feed.ID, "url", feed.URL, "error", err)
		s.updateLastCheck(ctx, &feed)
		return
	}

	flagged, err := s.classifier.Process(ctx, feed, fetcher.Items(parsed))
	if err != nil {
		s.log.Error("classify posts", "feed_id", feed.ID, "error", err)
	}

	for i, f := range flagged {
		s.sender.SendReport(feed, f)
		// Rate limit: ~20 messages/sec max for Telegram
		select {
		case <-ctx.Done():
			s.log.Warn("stopped sending reports", "feed_id", feed.ID, "sent", i+1, "unsent", len(flagged)-i-1)
			return
		case <-time.After(s.pause):
		}
	}

	if len(flagged) > 0 {
		s.log.Info("sent reports", "feed_id", feed.ID, "name", feed.Name, "count", len(flagged))
	}

	s.updateLastCheck(ctx, &feed)
}

func (s *Scheduler) updateLastCheck(ctx context.Context, feed *model.Feed) {
	now := time.Now().UTC()
	feed.LastCheckAt = &now
	if err := s.store.UpdateFeed(ctx, feed); err != nil {
		s.log.Error("update last check", "feed_id", feed.ID, "error", err)
	}
}
