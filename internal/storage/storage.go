// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"

	"spam_bot/internal/model"
)

// ErrVerdictExists is returned by SetVerdict for a report that was already judged.
var ErrVerdictExists = errors.New("report already has a verdict")

// Storage is the interface for all persistence operations.
type Storage interface {
	CreateFeed(ctx context.Context, feed *model.Feed) error
	GetFeed(ctx context.Context, id int64) (*model.Feed, error)
	ListFeeds(ctx context.Context, chatID int64) ([]model.Feed, error)
	ListDueFeeds(ctx context.Context) ([]model.Feed, error)
	UpdateFeed(ctx context.Context, feed *model.Feed) error
	DeleteFeed(ctx context.Context, id int64) error

	CreateFilter(ctx context.Context, f *model.Filter) error
	GetFilter(ctx context.Context, id int64) (*model.Filter, error)
	ListFilters(ctx context.Context, chatID int64) ([]model.Filter, error)
	DeleteFilter(ctx context.Context, id int64) error

	MarkSeen(ctx context.Context, feedID int64, guid string) error
	IsSeen(ctx context.Context, feedID int64, guid string) (bool, error)

	// CreateReport stores r and marks its post seen, atomically.
	CreateReport(ctx context.Context, r *model.Report) error
	GetReport(ctx context.Context, id int64) (*model.Report, error)
	// SetVerdict stores the verdict on a report and bumps the true or false
	// positive counter of the filter that produced it.
	SetVerdict(ctx context.Context, reportID int64, v model.Verdict) error

	Close() error
}
