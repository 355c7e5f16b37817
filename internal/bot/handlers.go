package bot

import (
	"context"
	"errors"
	"fmt"

	"spam_bot/internal/fetcher"
	"spam_bot/internal/filter"
	"spam_bot/internal/model"
	"spam_bot/internal/storage"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Spam Watch Bot!

Watch feeds of new posts and get a report whenever one looks like spam.

Quick start:
1. /add <url> - add a feed to watch
2. /addfilter substring <description> | <text> - flag posts containing text
3. /addfilter regex <description> | <pattern> - flag posts matching a regex

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Feed management:
/add <url> - add a new feed
/list - show all feeds
/info <id> - feed details
/remove <id> - delete a feed
/rename <id> <name> - rename a feed
/interval <id> <min> - set check interval (1-1440)
/pause <id> - pause checking
/resume <id> - resume checking
/check <id> - check a feed now

Filter management:
/filters - show your filters
/addfilter <kind> <description> | <pattern> - add a filter
/rmfilter <filter_id> - remove a filter
/test <text> - run your filters against some text

Kinds: substring (case-sensitive), regex (POSIX extended, case-insensitive),
short_body (flags posts shorter than 500 bytes, no pattern).

Feedback:
/tp <report_id> - the report was spam
/fp <report_id> - the report was not spam`)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /add <url>")
		return
	}

	feed, err := b.fetcher.Fetch(ctx, args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to fetch feed: %v", err))
		return
	}

	name := feed.Title
	if name == "" {
		name = args
	}

	f := &model.Feed{
		ChatID:          chatID,
		Name:            name,
		URL:             args,
		IntervalMinutes: 15,
		IsActive:        true,
	}
	if err := b.store.CreateFeed(ctx, f); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to save feed: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf("Feed added successfully!\n#%d %s (every %d min)\nURL: %s",
		f.ID, f.Name, f.IntervalMinutes, f.URL))
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	feeds, err := b.store.ListFeeds(ctx, chatID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	filters, err := b.store.ListFilters(ctx, chatID)
	if err != nil {
		b.log.Error("list filters", "chat_id", chatID, "error", err)
	}
	b.reply(chatID, FormatFeedList(feeds, len(filters)))
}

// ownFeed loads a feed and checks it belongs to chatID. It replies and
// returns nil when the feed is missing or foreign.
func (b *Bot) ownFeed(ctx context.Context, chatID, id int64) *model.Feed {
	feed, err := b.store.GetFeed(ctx, id)
	if err != nil || feed.ChatID != chatID {
		b.reply(chatID, fmt.Sprintf("Feed #%d not found.", id))
		return nil
	}
	return feed
}

func (b *Bot) handleInfo(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /info <id>")
		return
	}
	feed := b.ownFeed(ctx, chatID, id)
	if feed == nil {
		return
	}
	b.reply(chatID, FormatFeedInfo(feed))
}

func (b *Bot) handleRemove(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /remove <id>")
		return
	}
	feed := b.ownFeed(ctx, chatID, id)
	if feed == nil {
		return
	}

	if err := b.store.DeleteFeed(ctx, id); err != nil {
		b.reply(chatID, fmt.Sprintf("Error deleting feed: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d \"%s\" deleted.", id, feed.Name))
}

func (b *Bot) handleRename(ctx context.Context, chatID int64, args string) {
	id, name, err := ParseRenameArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	feed := b.ownFeed(ctx, chatID, id)
	if feed == nil {
		return
	}

	feed.Name = name
	if err := b.store.UpdateFeed(ctx, feed); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d renamed to \"%s\".", id, name))
}

func (b *Bot) handleInterval(ctx context.Context, chatID int64, args string) {
	id, mins, err := ParseIntervalArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	feed := b.ownFeed(ctx, chatID, id)
	if feed == nil {
		return
	}

	feed.IntervalMinutes = mins
	if err := b.store.UpdateFeed(ctx, feed); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d interval set to %d min.", id, mins))
}

func (b *Bot) handlePause(ctx context.Context, chatID int64, args string) {
	b.setActive(ctx, chatID, args, false)
}

func (b *Bot) handleResume(ctx context.Context, chatID int64, args string) {
	b.setActive(ctx, chatID, args, true)
}

func (b *Bot) setActive(ctx context.Context, chatID int64, args string, active bool) {
	cmd, done := "/pause", "paused"
	if active {
		cmd, done = "/resume", "resumed"
	}

	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Usage: %s <id>", cmd))
		return
	}
	feed := b.ownFeed(ctx, chatID, id)
	if feed == nil {
		return
	}

	feed.IsActive = active
	if err := b.store.UpdateFeed(ctx, feed); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d \"%s\" %s.", id, feed.Name, done))
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /check <id>")
		return
	}
	feed := b.ownFeed(ctx, chatID, id)
	if feed == nil {
		return
	}

	parsed, err := b.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to fetch: %v", err))
		return
	}

	flagged, err := b.classifier.Process(ctx, *feed, fetcher.Items(parsed))
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if len(flagged) == 0 {
		b.reply(chatID, fmt.Sprintf("No new flagged posts in #%d \"%s\".", feed.ID, feed.Name))
		return
	}

	for _, f := range flagged {
		b.SendReport(*feed, f)
	}
	b.reply(chatID, fmt.Sprintf("Flagged %d new post(s) in #%d \"%s\".", len(flagged), feed.ID, feed.Name))
}

func (b *Bot) handleFilters(ctx context.Context, chatID int64) {
	filters, err := b.store.ListFilters(ctx, chatID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, FormatFilterList(filters))
}

func (b *Bot) handleAddFilter(ctx context.Context, chatID int64, args string) {
	parsed, err := ParseFilterCommand(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	// Compile before saving so a broken pattern never reaches storage.
	if _, err := filter.NewWithEngine(b.classifier.Engine(), parsed.Description, parsed.Pattern, parsed.Kind, 0, 0); err != nil {
		b.reply(chatID, fmt.Sprintf("Invalid pattern: %v", err))
		return
	}

	f := &model.Filter{
		ChatID:      chatID,
		Description: parsed.Description,
		Pattern:     parsed.Pattern,
		Kind:        parsed.Kind.String(),
	}
	if err := b.store.CreateFilter(ctx, f); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf("Filter F%d added: [%s] %s", f.ID, f.Kind, f.Description))
}

func (b *Bot) handleRmFilter(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /rmfilter <filter_id>")
		return
	}

	f, err := b.store.GetFilter(ctx, id)
	if err != nil || f.ChatID != chatID {
		b.reply(chatID, fmt.Sprintf("Filter F%d not found.", id))
		return
	}

	if err := b.store.DeleteFilter(ctx, id); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Filter F%d \"%s\" removed.", id, f.Description))
}

func (b *Bot) handleTest(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /test <text>")
		return
	}

	set, err := b.classifier.FilterSet(ctx, chatID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if set.Len() == 0 && b.classifier.WordModel() == nil {
		b.reply(chatID, "No filters yet. Use /addfilter to add one.")
		return
	}

	post := filter.Post{Body: args}
	hits, err := set.Check(post)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Filter failed: %v", err))
		return
	}
	b.reply(chatID, FormatTestResult(args, hits, b.classifier.ClassifyWords(post)))
}

// handleVerdict records the user's judgement of a report and reports whether
// it was stored.
func (b *Bot) handleVerdict(ctx context.Context, chatID int64, args string, v model.Verdict) bool {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Usage: /%s <report_id>", v))
		return false
	}

	report, err := b.store.GetReport(ctx, id)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Report #%d not found.", id))
		return false
	}
	feed, err := b.store.GetFeed(ctx, report.FeedID)
	if err != nil || feed.ChatID != chatID {
		b.reply(chatID, fmt.Sprintf("Report #%d not found.", id))
		return false
	}

	if err := b.store.SetVerdict(ctx, id, v); err != nil {
		if errors.Is(err, storage.ErrVerdictExists) {
			b.reply(chatID, fmt.Sprintf("Report #%d was already marked as %s.", id, verdictLabel(report.Verdict)))
			return false
		}
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return false
	}

	b.log.Info("verdict", "report_id", id, "filter_id", report.FilterID, "verdict", string(v))

	if report.FilterID == 0 {
		b.reply(chatID, fmt.Sprintf("Report #%d marked as %s.", id, verdictLabel(v)))
		return true
	}
	f, err := b.store.GetFilter(ctx, report.FilterID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Report #%d marked as %s.", id, verdictLabel(v)))
		return true
	}
	b.reply(chatID, fmt.Sprintf("Report #%d marked as %s. F%d \"%s\" is now at TP %d / FP %d.",
		id, verdictLabel(v), f.ID, f.Description, f.TruePositives, f.FalsePositives))
	return true
}
