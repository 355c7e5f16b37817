package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"spam_bot/internal/classify"
	"spam_bot/internal/config"
	"spam_bot/internal/fetcher"
	"spam_bot/internal/filter"
	"spam_bot/internal/model"
	"spam_bot/internal/storage"
)

// --- mocks ---

type sentMsg struct {
	ChatID int64
	Text   string
	Markup any
}

type mockAPI struct {
	mu    sync.Mutex
	sent  []sentMsg
	edits int
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch msg := c.(type) {
	case tgbotapi.MessageConfig:
		m.sent = append(m.sent, sentMsg{ChatID: msg.ChatID, Text: msg.Text, Markup: msg.ReplyMarkup})
	case tgbotapi.EditMessageReplyMarkupConfig:
		m.edits++
	}
	return tgbotapi.Message{}, nil
}

func (m *mockAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(tgbotapi.UpdatesChannel)
}

func (m *mockAPI) StopReceivingUpdates() {}

func (m *mockAPI) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Text
}

func (m *mockAPI) allSent() []sentMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMsg, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *mockAPI) editCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.edits
}

func (m *mockAPI) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.edits = 0
}

type mockHTTPClient struct {
	body string
	err  error
}

func (m *mockHTTPClient) Do(_ *http.Request) (*http.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

// --- helpers ---

func newTestBot(t *testing.T, httpBody string) (*Bot, *mockAPI, *storage.SQLite) {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := &mockAPI{}
	b := &Bot{
		api:        api,
		store:      store,
		cfg:        &config.Config{},
		fetcher:    fetcher.New(&mockHTTPClient{body: httpBody}),
		classifier: classify.New(store, filter.POSIXEngine{}, log),
		log:        log,
	}
	return b, api, store
}

func seedFeed(t *testing.T, store *storage.SQLite, chatID int64, name, url string) *model.Feed {
	t.Helper()
	f := &model.Feed{ChatID: chatID, Name: name, URL: url, IntervalMinutes: 15, IsActive: true}
	if err := store.CreateFeed(context.Background(), f); err != nil {
		t.Fatalf("seed feed: %v", err)
	}
	return f
}

func seedFilter(t *testing.T, store *storage.SQLite, chatID int64, kind, desc, pattern string) *model.Filter {
	t.Helper()
	f := &model.Filter{ChatID: chatID, Kind: kind, Description: desc, Pattern: pattern}
	if err := store.CreateFilter(context.Background(), f); err != nil {
		t.Fatalf("seed filter: %v", err)
	}
	return f
}

func seedReport(t *testing.T, store *storage.SQLite, feedID, filterID int64) *model.Report {
	t.Helper()
	r := &model.Report{FeedID: feedID, FilterID: filterID, GUID: "q-1", Title: "Cheap watches", Start: 37, End: 50, HasSpan: true}
	if err := store.CreateReport(context.Background(), r); err != nil {
		t.Fatalf("seed report: %v", err)
	}
	return r
}

func loadQuestionsXML(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/questions.xml")
	if err != nil {
		t.Fatalf("read questions xml: %v", err)
	}
	return string(data)
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("reply missing %q, got:\n%s", want, got)
	}
}

// --- handler tests ---

func TestHandleStart(t *testing.T) {
	b, api, _ := newTestBot(t, "")
	b.handleStart(100)
	requireContains(t, api.lastText(), "Welcome to Spam Watch Bot")
}

func TestHandleHelp(t *testing.T) {
	b, api, _ := newTestBot(t, "")
	b.handleHelp(100)
	requireContains(t, api.lastText(), "/addfilter")
	requireContains(t, api.lastText(), "/tp <report_id>")
}

func TestHandleAdd(t *testing.T) {
	xml := loadQuestionsXML(t)
	ctx := context.Background()

	t.Run("empty args", func(t *testing.T) {
		b, api, _ := newTestBot(t, xml)
		b.handleAdd(ctx, 100, "")
		requireContains(t, api.lastText(), "Usage: /add")
	})

	t.Run("fetch error", func(t *testing.T) {
		b, api, _ := newTestBot(t, "not xml at all")
		b.handleAdd(ctx, 100, "https://bad.example.com")
		requireContains(t, api.lastText(), "Failed to fetch feed")
	})

	t.Run("success uses feed title", func(t *testing.T) {
		b, api, store := newTestBot(t, xml)
		b.handleAdd(ctx, 100, "https://qa.example.com/feed")
		requireContains(t, api.lastText(), "Feed added")
		requireContains(t, api.lastText(), "Newest Questions")

		feeds, _ := store.ListFeeds(ctx, 100)
		if diff := cmp.Diff(1, len(feeds)); diff != "" {
			t.Fatalf("feed count (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff("Newest Questions", feeds[0].Name); diff != "" {
			t.Errorf("feed name (-want +got):\n%s", diff)
		}
	})
}

func TestHandleList(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		b, api, _ := newTestBot(t, "")
		b.handleList(ctx, 100)
		requireContains(t, api.lastText(), "no feeds yet")
	})

	t.Run("with feeds and filters", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		seedFeed(t, store, 100, "Feed A", "https://a.com")
		seedFeed(t, store, 100, "Feed B", "https://b.com")
		seedFilter(t, store, 100, "substring", "spam link", "http://bit.ly")

		b.handleList(ctx, 100)
		reply := api.lastText()
		requireContains(t, reply, "#1 Feed A")
		requireContains(t, reply, "#2 Feed B")
		requireContains(t, reply, "1 filter(s)")
	})
}

func TestHandleFeedOwnership(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot(t, "")
	seedFeed(t, store, 200, "Other", "https://other.com")

	handlers := map[string]func(){
		"info":     func() { b.handleInfo(ctx, 100, "1") },
		"remove":   func() { b.handleRemove(ctx, 100, "1") },
		"rename":   func() { b.handleRename(ctx, 100, "1 Mine") },
		"interval": func() { b.handleInterval(ctx, 100, "1 30") },
		"pause":    func() { b.handlePause(ctx, 100, "1") },
		"resume":   func() { b.handleResume(ctx, 100, "1") },
		"check":    func() { b.handleCheck(ctx, 100, "1") },
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			api.reset()
			h()
			requireContains(t, api.lastText(), "Feed #1 not found")
		})
	}

	feed, err := store.GetFeed(ctx, 1)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if diff := cmp.Diff("Other", feed.Name); diff != "" {
		t.Errorf("foreign feed was modified (-want +got):\n%s", diff)
	}
}

func TestHandleFeedUpdates(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot(t, "")
	seedFeed(t, store, 100, "Feed", "https://x.com")

	b.handleRename(ctx, 100, "1 Questions")
	requireContains(t, api.lastText(), "renamed to \"Questions\"")

	b.handleInterval(ctx, 100, "1 30")
	requireContains(t, api.lastText(), "interval set to 30 min")

	b.handlePause(ctx, 100, "1")
	requireContains(t, api.lastText(), "paused")

	b.handleInfo(ctx, 100, "1")
	requireContains(t, api.lastText(), "[paused]")

	b.handleResume(ctx, 100, "1")
	requireContains(t, api.lastText(), "resumed")

	feed, err := store.GetFeed(ctx, 1)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	want := model.Feed{Name: "Questions", IntervalMinutes: 30, IsActive: true}
	got := model.Feed{Name: feed.Name, IntervalMinutes: feed.IntervalMinutes, IsActive: feed.IsActive}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("feed mismatch (-want +got):\n%s", diff)
	}

	b.handleRemove(ctx, 100, "1")
	requireContains(t, api.lastText(), "deleted")
	if _, err := store.GetFeed(ctx, 1); err == nil {
		t.Error("expected feed to be deleted")
	}
}

func TestHandleAddFilter(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		args      string
		wantReply string
		wantKind  string
	}{
		{name: "substring", args: "substring spam link | http://bit.ly", wantReply: "Filter F1 added: [substring] spam link", wantKind: "substring"},
		{name: "regex", args: `regex price gouging | \$[0-9]+\.[0-9]{2} *-> *\$[0-9]+`, wantReply: "Filter F1 added: [regex] price gouging", wantKind: "regex"},
		{name: "short body", args: "short_body too short", wantReply: "Filter F1 added: [short_body] too short", wantKind: "short_body"},
		{name: "unbalanced paren", args: "regex broken | (", wantReply: "Invalid pattern: compile regex \"(\""},
		{name: "perl class", args: `regex digits | \d+`, wantReply: "Invalid pattern"},
		{name: "unknown kind", args: "bayes words | cheap", wantReply: "unknown filter kind"},
		{name: "missing pattern", args: "regex no pattern", wantReply: "needs a pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, api, store := newTestBot(t, "")
			b.handleAddFilter(ctx, 100, tt.args)
			requireContains(t, api.lastText(), tt.wantReply)

			filters, err := store.ListFilters(ctx, 100)
			if err != nil {
				t.Fatalf("list filters: %v", err)
			}
			if tt.wantKind == "" {
				if diff := cmp.Diff(0, len(filters)); diff != "" {
					t.Errorf("rejected filter was stored (-want +got):\n%s", diff)
				}
				return
			}
			if diff := cmp.Diff(1, len(filters)); diff != "" {
				t.Fatalf("filter count (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantKind, filters[0].Kind); diff != "" {
				t.Errorf("kind (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleFilters(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot(t, "")

	b.handleFilters(ctx, 100)
	requireContains(t, api.lastText(), "No filters yet")

	seedFilter(t, store, 100, "substring", "spam link", "http://bit.ly")
	seedFilter(t, store, 200, "substring", "not mine", "casino")

	b.handleFilters(ctx, 100)
	reply := api.lastText()
	requireContains(t, reply, "F1 [substring] spam link")
	requireContains(t, reply, "TP 0 / FP 0, accuracy 50%")
	if strings.Contains(reply, "not mine") {
		t.Errorf("reply lists another chat's filter:\n%s", reply)
	}
}

func TestHandleRmFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("removes own filter", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		seedFilter(t, store, 100, "substring", "spam link", "http://bit.ly")
		b.handleRmFilter(ctx, 100, "1")
		requireContains(t, api.lastText(), "Filter F1 \"spam link\" removed")

		filters, _ := store.ListFilters(ctx, 100)
		if diff := cmp.Diff(0, len(filters)); diff != "" {
			t.Errorf("filters should be empty (-want +got):\n%s", diff)
		}
	})

	t.Run("foreign filter", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		seedFilter(t, store, 200, "substring", "spam link", "http://bit.ly")
		b.handleRmFilter(ctx, 100, "1")
		requireContains(t, api.lastText(), "Filter F1 not found")

		filters, _ := store.ListFilters(ctx, 200)
		if diff := cmp.Diff(1, len(filters)); diff != "" {
			t.Errorf("foreign filter was removed (-want +got):\n%s", diff)
		}
	})

	t.Run("usage", func(t *testing.T) {
		b, api, _ := newTestBot(t, "")
		b.handleRmFilter(ctx, 100, "")
		requireContains(t, api.lastText(), "Usage: /rmfilter")
	})
}

func TestHandleTest(t *testing.T) {
	ctx := context.Background()

	t.Run("no filters", func(t *testing.T) {
		b, api, _ := newTestBot(t, "")
		b.handleTest(ctx, 100, "anything")
		requireContains(t, api.lastText(), "No filters yet")
	})

	t.Run("reports spans", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		seedFilter(t, store, 100, "substring", "spam link", "http://bit.ly")
		seedFilter(t, store, 100, "short_body", "too short", "")

		b.handleTest(ctx, 100, "Click here http://bit.ly/xyz")
		reply := api.lastText()
		requireContains(t, reply, "2 filter(s) matched")
		requireContains(t, reply, "At 11-24: Click here [[http://bit.ly]]/xyz")
		requireContains(t, reply, "Body is shorter than 500 bytes.")
	})

	t.Run("no match", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		seedFilter(t, store, 100, "regex", "buy now", "buy.*now")
		b.handleTest(ctx, 100, "nothing to see")
		requireContains(t, api.lastText(), "No filter matched.")
	})

	t.Run("word model without filters", func(t *testing.T) {
		b, api, _ := newTestBot(t, "")
		m, err := filter.NewWordModel(filter.DefaultPrior, map[string]filter.WordProbability{
			"replica": {Spam: 0.9, Ham: 1e-50},
		})
		if err != nil {
			t.Fatalf("new word model: %v", err)
		}
		b.classifier.SetWordModel(m)

		b.handleTest(ctx, 100, "Replica watches")
		reply := api.lastText()
		requireContains(t, reply, "No filter matched.")
		requireContains(t, reply, "Word model: spam, 1 known word(s): replica")
	})
}

func TestHandleCheck(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot(t, loadQuestionsXML(t))
	seedFeed(t, store, 100, "Questions", "https://qa.example.com/feed")
	seedFilter(t, store, 100, "substring", "spam link", "http://bit.ly")

	b.handleCheck(ctx, 100, "1")
	sent := api.allSent()
	if diff := cmp.Diff(2, len(sent)); diff != "" {
		t.Fatalf("message count (-want +got):\n%s", diff)
	}
	requireContains(t, sent[0].Text, "[Questions] Report #1")
	requireContains(t, sent[0].Text, "Cheap watches")
	if _, ok := sent[0].Markup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Errorf("report has no inline keyboard: %T", sent[0].Markup)
	}
	requireContains(t, sent[1].Text, "Flagged 1 new post(s)")

	api.reset()
	b.handleCheck(ctx, 100, "1")
	requireContains(t, api.lastText(), "No new flagged posts")
}

func TestHandleVerdict(t *testing.T) {
	ctx := context.Background()

	t.Run("true positive bumps counter", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		feed := seedFeed(t, store, 100, "Questions", "https://qa.example.com/feed")
		f := seedFilter(t, store, 100, "substring", "spam link", "http://bit.ly")
		r := seedReport(t, store, feed.ID, f.ID)

		b.handleVerdict(ctx, 100, fmt.Sprint(r.ID), model.VerdictTruePositive)
		requireContains(t, api.lastText(), "marked as spam")
		requireContains(t, api.lastText(), "TP 1 / FP 0")

		b.handleVerdict(ctx, 100, fmt.Sprint(r.ID), model.VerdictFalsePositive)
		requireContains(t, api.lastText(), "already marked as spam")

		got, err := store.GetFilter(ctx, f.ID)
		if err != nil {
			t.Fatalf("get filter: %v", err)
		}
		if diff := cmp.Diff([2]uint{1, 0}, [2]uint{got.TruePositives, got.FalsePositives}); diff != "" {
			t.Errorf("counters (-want +got):\n%s", diff)
		}
	})

	t.Run("word model report", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		feed := seedFeed(t, store, 100, "Questions", "https://qa.example.com/feed")
		r := seedReport(t, store, feed.ID, 0)

		if !b.handleVerdict(ctx, 100, fmt.Sprint(r.ID), model.VerdictFalsePositive) {
			t.Fatal("expected verdict to be stored")
		}
		if diff := cmp.Diff(fmt.Sprintf("Report #%d marked as not spam.", r.ID), api.lastText()); diff != "" {
			t.Errorf("reply (-want +got):\n%s", diff)
		}
	})

	t.Run("foreign report", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		feed := seedFeed(t, store, 200, "Questions", "https://qa.example.com/feed")
		f := seedFilter(t, store, 200, "substring", "spam link", "http://bit.ly")
		r := seedReport(t, store, feed.ID, f.ID)

		b.handleVerdict(ctx, 100, fmt.Sprint(r.ID), model.VerdictFalsePositive)
		requireContains(t, api.lastText(), "not found")
	})

	t.Run("missing report", func(t *testing.T) {
		b, api, _ := newTestBot(t, "")
		b.handleVerdict(ctx, 100, "99", model.VerdictTruePositive)
		requireContains(t, api.lastText(), "Report #99 not found")
	})

	t.Run("usage", func(t *testing.T) {
		b, api, _ := newTestBot(t, "")
		b.handleVerdict(ctx, 100, "", model.VerdictFalsePositive)
		requireContains(t, api.lastText(), "Usage: /fp <report_id>")
	})
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()

	makeMsg := func(cmd, args string) *tgbotapi.Message {
		text := "/" + cmd
		if args != "" {
			text += " " + args
		}
		return &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: 100},
			Text: text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len("/" + cmd)},
			},
		}
	}

	t.Run("dispatches known commands", func(t *testing.T) {
		b, api, _ := newTestBot(t, "")

		cmds := []struct {
			cmd      string
			args     string
			contains string
		}{
			{"start", "", "Welcome"},
			{"help", "", "/add"},
			{"list", "", "no feeds"},
			{"filters", "", "No filters yet"},
			{"addfilter", "substring spam link | http://bit.ly", "Filter F1 added"},
			{"test", "see http://bit.ly/x", "1 filter(s) matched"},
			{"tp", "7", "Report #7 not found"},
			{"unknown_cmd", "", "Unknown command"},
		}

		for _, tc := range cmds {
			api.reset()
			b.handleCommand(ctx, makeMsg(tc.cmd, tc.args))
			requireContains(t, api.lastText(), tc.contains)
		}
	})
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()

	newCallback := func(data string) *tgbotapi.CallbackQuery {
		return &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: 1, UserName: "mod"},
			Data:    data,
			Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: 100}},
		}
	}

	t.Run("invalid data format", func(t *testing.T) {
		b, api, _ := newTestBot(t, "")
		b.handleCallback(ctx, newCallback("nocolon"))
		if diff := cmp.Diff(0, len(api.allSent())); diff != "" {
			t.Errorf("expected no text messages (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		b, api, _ := newTestBot(t, "")
		b.handleCallback(ctx, newCallback("tp:abc"))
		if diff := cmp.Diff(0, len(api.allSent())); diff != "" {
			t.Errorf("expected no text messages (-want +got):\n%s", diff)
		}
	})

	t.Run("false positive button", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		feed := seedFeed(t, store, 100, "Questions", "https://qa.example.com/feed")
		f := seedFilter(t, store, 100, "short_body", "too short", "")
		r := seedReport(t, store, feed.ID, f.ID)

		b.handleCallback(ctx, newCallback(fmt.Sprintf("fp:%d", r.ID)))
		requireContains(t, api.lastText(), "marked as not spam")
		if diff := cmp.Diff(1, api.editCount()); diff != "" {
			t.Errorf("keyboard edits (-want +got):\n%s", diff)
		}

		got, err := store.GetReport(ctx, r.ID)
		if err != nil {
			t.Fatalf("get report: %v", err)
		}
		if diff := cmp.Diff(model.VerdictFalsePositive, got.Verdict); diff != "" {
			t.Errorf("verdict (-want +got):\n%s", diff)
		}
	})

	t.Run("repeated button keeps keyboard", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		feed := seedFeed(t, store, 100, "Questions", "https://qa.example.com/feed")
		f := seedFilter(t, store, 100, "short_body", "too short", "")
		r := seedReport(t, store, feed.ID, f.ID)
		if err := store.SetVerdict(ctx, r.ID, model.VerdictTruePositive); err != nil {
			t.Fatalf("set verdict: %v", err)
		}

		b.handleCallback(ctx, newCallback(fmt.Sprintf("tp:%d", r.ID)))
		requireContains(t, api.lastText(), "already marked")
		if diff := cmp.Diff(0, api.editCount()); diff != "" {
			t.Errorf("keyboard edits (-want +got):\n%s", diff)
		}
	})

	t.Run("delete_confirm callback", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		seedFeed(t, store, 100, "Feed", "https://x.com")
		b.handleCallback(ctx, newCallback("delete_confirm:1"))
		sent := api.allSent()
		if diff := cmp.Diff(1, len(sent)); diff != "" {
			t.Fatalf("message count (-want +got):\n%s", diff)
		}
		requireContains(t, sent[0].Text, "Delete #1")
	})

	t.Run("delete callback", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		seedFeed(t, store, 100, "Feed", "https://x.com")
		b.handleCallback(ctx, newCallback("delete:1"))
		requireContains(t, api.lastText(), "deleted")
	})

	t.Run("rmfilter callback", func(t *testing.T) {
		b, api, store := newTestBot(t, "")
		seedFilter(t, store, 100, "substring", "spam link", "http://bit.ly")
		b.handleCallback(ctx, newCallback("rmfilter:1"))
		requireContains(t, api.lastText(), "Filter F1 \"spam link\" removed")
	})
}

func TestSendReport(t *testing.T) {
	b, api, _ := newTestBot(t, "")
	feed := model.Feed{ID: 1, ChatID: 100, Name: "Questions"}
	f := classify.Flagged{
		Item:   fetcher.Item{Title: "Cheap watches", Body: "pls help", GUID: "q-4"},
		Report: model.Report{ID: 3},
	}

	b.SendReport(feed, f)
	sent := api.allSent()
	if diff := cmp.Diff(1, len(sent)); diff != "" {
		t.Fatalf("message count (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(int64(100), sent[0].ChatID); diff != "" {
		t.Errorf("chat (-want +got):\n%s", diff)
	}
	kb, ok := sent[0].Markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("markup type %T", sent[0].Markup)
	}
	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			data = append(data, *btn.CallbackData)
		}
	}
	if diff := cmp.Diff([]string{"tp:3", "fp:3"}, data); diff != "" {
		t.Errorf("callback data (-want +got):\n%s", diff)
	}
}
