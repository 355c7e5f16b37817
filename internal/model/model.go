// Package model defines the domain types used across the application.
package model

import "time"

// Feed represents a subscribed source of posts (an RSS or Atom feed).
type Feed struct {
	ID              int64
	ChatID          int64
	Name            string
	URL             string
	IntervalMinutes int
	IsActive        bool
	LastCheckAt     *time.Time
	CreatedAt       time.Time
}

// Filter is a stored classification rule owned by a chat. Kind holds the wire
// name of a filter.Kind ("substring", "regex" or "short_body").
type Filter struct {
	ID             int64
	ChatID         int64
	Description    string
	Pattern        string
	Kind           string
	TruePositives  uint
	FalsePositives uint
	CreatedAt      time.Time
}

// Verdict is the user's judgement of a report.
type Verdict string

// Supported verdicts.
const (
	VerdictNone          Verdict = ""
	VerdictTruePositive  Verdict = "tp"
	VerdictFalsePositive Verdict = "fp"
)

// Report records a post that a filter flagged. Start and End are byte offsets
// into the post body and are only meaningful when HasSpan is set. FilterID is
// zero for posts flagged by the word model alone.
type Report struct {
	ID        int64
	FeedID    int64
	FilterID  int64
	GUID      string
	Title     string
	Link      string
	Start     int
	End       int
	HasSpan   bool
	Verdict   Verdict
	CreatedAt time.Time
}

// SeenItem tracks a post that has already been processed.
type SeenItem struct {
	FeedID int64
	GUID   string
	SeenAt time.Time
}
