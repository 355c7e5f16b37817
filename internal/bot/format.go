package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"spam_bot/internal/classify"
	"spam_bot/internal/filter"
	"spam_bot/internal/model"
)

const (
	statusActive = "active"
	statusPaused = "paused"

	excerptRadius = 40
)

// FormatReport formats a flagged post as a Telegram report message.
func FormatReport(feedName string, f classify.Flagged) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Report #%d\n\n", feedName, f.Report.ID)
	b.WriteString(f.Item.Title)
	b.WriteString("\n\n")

	if len(f.Hits) > 0 {
		top := f.Hits[0]
		fmt.Fprintf(&b, "Matched %s\n", hitLabel(top))
		b.WriteString(matchDetail(f.Item.Body, top.Result))
		b.WriteString("\n")
		if len(f.Hits) > 1 {
			b.WriteString("\nAlso matched:\n")
			for _, h := range f.Hits[1:] {
				fmt.Fprintf(&b, "  %s\n", hitLabel(h))
			}
		}
	} else if f.Words != nil {
		fmt.Fprintf(&b, "Flagged by word model: %s\n", wordDetail(*f.Words))
	}

	if f.Item.Link != "" {
		b.WriteString("\n")
		b.WriteString(f.Item.Link)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nMark with /tp %d (spam) or /fp %d (not spam).", f.Report.ID, f.Report.ID)
	return b.String()
}

// FormatTestResult describes the hits produced by /test, followed by the
// word model verdict when one is given.
func FormatTestResult(body string, hits []filter.Hit, words *filter.WordVerdict) string {
	var b strings.Builder
	if len(hits) == 0 {
		b.WriteString("No filter matched.")
	} else {
		fmt.Fprintf(&b, "%d filter(s) matched:\n", len(hits))
		for _, h := range hits {
			fmt.Fprintf(&b, "\n%s\n%s\n", hitLabel(h), matchDetail(body, h.Result))
		}
	}
	if words != nil {
		if len(hits) == 0 {
			b.WriteString("\n")
		}
		b.WriteString("\n")
		verdict := "not spam"
		if words.Spam {
			verdict = "spam"
		}
		fmt.Fprintf(&b, "Word model: %s, %s", verdict, wordDetail(*words))
	}
	return b.String()
}

func wordDetail(v filter.WordVerdict) string {
	if len(v.Known) == 0 {
		return "no known words"
	}
	return fmt.Sprintf("%d known word(s): %s", len(v.Known), strings.Join(v.Known, ", "))
}

func hitLabel(h filter.Hit) string {
	return fmt.Sprintf("F%d %q (%s, accuracy %.0f%%)",
		h.ID, h.Filter.Description(), h.Filter.Kind(), h.Filter.Accuracy()*100)
}

func matchDetail(body string, r filter.Result) string {
	if r.Span == nil {
		return fmt.Sprintf("Body is shorter than %d bytes.", filter.ShortBodyLimit)
	}
	return fmt.Sprintf("At %d-%d: %s", r.Span.Start, r.Span.End, excerpt(body, r.Span.Start, r.Span.End))
}

// excerpt returns the matched text bracketed by [[ ]] with some context on
// either side. Cut points are moved to rune boundaries.
func excerpt(body string, start, end int) string {
	if start < 0 || end > len(body) || start > end {
		return ""
	}
	from := max(start-excerptRadius, 0)
	for from > 0 && !utf8.RuneStart(body[from]) {
		from--
	}
	to := min(end+excerptRadius, len(body))
	for to < len(body) && !utf8.RuneStart(body[to]) {
		to++
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString("...")
	}
	b.WriteString(body[from:start])
	b.WriteString("[[")
	b.WriteString(body[start:end])
	b.WriteString("]]")
	b.WriteString(body[end:to])
	if to < len(body) {
		b.WriteString("...")
	}
	return strings.ReplaceAll(b.String(), "\n", " ")
}

// FormatFeedList formats a list of feeds for display.
func FormatFeedList(feeds []model.Feed, filterCount int) string {
	if len(feeds) == 0 {
		return "You have no feeds yet. Use /add <url> to add one."
	}
	var b strings.Builder
	b.WriteString("Your feeds:\n")
	for _, f := range feeds {
		fmt.Fprintf(&b, "\n#%d %s  (every %d min) [%s]\n", f.ID, f.Name, f.IntervalMinutes, feedStatus(&f))
	}
	if filterCount == 0 {
		b.WriteString("\nNo filters yet. Use /addfilter to add one.")
	} else {
		fmt.Fprintf(&b, "\n%d filter(s) checked on every post. See /filters.", filterCount)
	}
	return b.String()
}

// FormatFeedInfo formats detailed information about a single feed.
func FormatFeedInfo(feed *model.Feed) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s [%s]\n", feed.ID, feed.Name, feedStatus(feed))
	fmt.Fprintf(&b, "URL: %s\n", feed.URL)
	fmt.Fprintf(&b, "Interval: every %d min\n", feed.IntervalMinutes)
	if feed.LastCheckAt != nil {
		fmt.Fprintf(&b, "Last check: %s\n", feed.LastCheckAt.Format("2006-01-02 15:04 UTC"))
	}
	return b.String()
}

// FormatFilterList formats the filters of a chat with their feedback counters.
func FormatFilterList(filters []model.Filter) string {
	if len(filters) == 0 {
		return "No filters yet.\nUse /addfilter <kind> <description> | <pattern> to add one."
	}

	var b strings.Builder
	b.WriteString("Your filters:\n")
	for _, f := range filters {
		fmt.Fprintf(&b, "\nF%d [%s] %s\n", f.ID, f.Kind, f.Description)
		if f.Pattern != "" {
			fmt.Fprintf(&b, "   pattern: %s\n", f.Pattern)
		}
		fmt.Fprintf(&b, "   TP %d / FP %d, accuracy %.0f%%\n",
			f.TruePositives, f.FalsePositives, accuracy(f.TruePositives, f.FalsePositives)*100)
	}
	return b.String()
}

// accuracy mirrors filter.Filter.Accuracy for stored records.
func accuracy(tp, fp uint) float64 {
	if tp+fp == 0 {
		return 0.5
	}
	return float64(tp) / float64(tp+fp)
}

func verdictLabel(v model.Verdict) string {
	switch v {
	case model.VerdictTruePositive:
		return "spam"
	case model.VerdictFalsePositive:
		return "not spam"
	default:
		return "unjudged"
	}
}

func feedStatus(f *model.Feed) string {
	if f.IsActive {
		return statusActive
	}
	return statusPaused
}
