package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"spam_bot/internal/model"
	"spam_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases intact and serializes
	// counter updates.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateFeed inserts a new feed and populates its ID and CreatedAt.
func (s *SQLite) CreateFeed(ctx context.Context, feed *model.Feed) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO feeds (chat_id, name, url, interval_minutes, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		feed.ChatID, feed.Name, feed.URL, feed.IntervalMinutes, boolToInt(feed.IsActive), now,
	)
	if err != nil {
		return fmt.Errorf("insert feed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	feed.ID = id
	feed.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

const feedColumns = `id, chat_id, name, url, interval_minutes, is_active, last_check_at, created_at`

// GetFeed returns a single feed by its ID.
func (s *SQLite) GetFeed(ctx context.Context, id int64) (*model.Feed, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds WHERE id = ?`, id)
	return scanFeed(row)
}

// ListFeeds returns all feeds belonging to the given chat.
func (s *SQLite) ListFeeds(ctx context.Context, chatID int64) ([]model.Feed, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+feedColumns+` FROM feeds WHERE chat_id = ? ORDER BY id`, chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanFeeds(rows)
}

// ListDueFeeds returns all active feeds that are due for checking.
func (s *SQLite) ListDueFeeds(ctx context.Context) ([]model.Feed, error) {
	now := time.Now().UTC().Format(timeLayout)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+feedColumns+`
		 FROM feeds
		 WHERE is_active = 1
		   AND (last_check_at IS NULL
		        OR datetime(last_check_at, '+' || interval_minutes || ' minutes') <= datetime(?))`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("query due feeds: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanFeeds(rows)
}

// UpdateFeed persists changes to an existing feed.
func (s *SQLite) UpdateFeed(ctx context.Context, feed *model.Feed) error {
	var lastCheck *string
	if feed.LastCheckAt != nil {
		v := feed.LastCheckAt.UTC().Format(timeLayout)
		lastCheck = &v
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE feeds SET name = ?, url = ?, interval_minutes = ?, is_active = ?, last_check_at = ?
		 WHERE id = ?`,
		feed.Name, feed.URL, feed.IntervalMinutes, boolToInt(feed.IsActive), lastCheck, feed.ID,
	)
	if err != nil {
		return fmt.Errorf("update feed: %w", err)
	}
	return nil
}

// DeleteFeed removes a feed together with its seen items and reports.
func (s *SQLite) DeleteFeed(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_items WHERE feed_id = ?`, id); err != nil {
		return fmt.Errorf("delete seen_items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE feed_id = ?`, id); err != nil {
		return fmt.Errorf("delete reports: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return tx.Commit()
}

// CreateFilter inserts a new filter and populates its ID and CreatedAt.
func (s *SQLite) CreateFilter(ctx context.Context, f *model.Filter) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO filters (chat_id, description, pattern, kind, true_positives, false_positives, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ChatID, f.Description, f.Pattern, f.Kind, f.TruePositives, f.FalsePositives, now,
	)
	if err != nil {
		return fmt.Errorf("insert filter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	f.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

const filterColumns = `id, chat_id, description, pattern, kind, true_positives, false_positives, created_at`

// GetFilter returns a single filter by its ID.
func (s *SQLite) GetFilter(ctx context.Context, id int64) (*model.Filter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+filterColumns+` FROM filters WHERE id = ?`, id)
	f, err := scanFilter(row)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFilters returns all filters owned by the given chat in creation order.
func (s *SQLite) ListFilters(ctx context.Context, chatID int64) ([]model.Filter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+filterColumns+` FROM filters WHERE chat_id = ? ORDER BY id`, chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("query filters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var filters []model.Filter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// DeleteFilter removes a filter and the reports it produced.
func (s *SQLite) DeleteFilter(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE filter_id = ?`, id); err != nil {
		return fmt.Errorf("delete reports: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM filters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	return tx.Commit()
}

// MarkSeen records that a post has been processed.
func (s *SQLite) MarkSeen(ctx context.Context, feedID int64, guid string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_items (feed_id, guid) VALUES (?, ?)`,
		feedID, guid,
	)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// IsSeen checks whether a post has already been processed.
func (s *SQLite) IsSeen(ctx context.Context, feedID int64, guid string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seen_items WHERE feed_id = ? AND guid = ?`,
		feedID, guid,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check seen: %w", err)
	}
	return count > 0, nil
}

// CreateReport inserts a new report and populates its ID and CreatedAt. The
// reported post is marked seen in the same transaction.
func (s *SQLite) CreateReport(ctx context.Context, r *model.Report) error {
	now := time.Now().UTC().Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reports (feed_id, filter_id, guid, title, link, span_start, span_end, has_span, verdict, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.FeedID, r.FilterID, r.GUID, r.Title, r.Link, r.Start, r.End, boolToInt(r.HasSpan), string(r.Verdict), now,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_items (feed_id, guid) VALUES (?, ?)`,
		r.FeedID, r.GUID,
	); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}

	r.ID = id
	r.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetReport returns a single report by its ID.
func (s *SQLite) GetReport(ctx context.Context, id int64) (*model.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, feed_id, filter_id, guid, title, link, span_start, span_end, has_span, verdict, created_at
		 FROM reports WHERE id = ?`, id,
	)
	var r model.Report
	var hasSpan int
	var verdict, created string
	err := row.Scan(&r.ID, &r.FeedID, &r.FilterID, &r.GUID, &r.Title, &r.Link, &r.Start, &r.End, &hasSpan, &verdict, &created)
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	r.HasSpan = hasSpan == 1
	r.Verdict = model.Verdict(verdict)
	r.CreatedAt, _ = time.Parse(timeLayout, created)
	return &r, nil
}

// SetVerdict records v on the report and increments the matching counter of
// its filter in the same transaction.
func (s *SQLite) SetVerdict(ctx context.Context, reportID int64, v model.Verdict) error {
	var column string
	switch v {
	case model.VerdictTruePositive:
		column = "true_positives"
	case model.VerdictFalsePositive:
		column = "false_positives"
	default:
		return fmt.Errorf("invalid verdict %q", v)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var filterID int64
	var current string
	err = tx.QueryRowContext(ctx, `SELECT filter_id, verdict FROM reports WHERE id = ?`, reportID).Scan(&filterID, &current)
	if err != nil {
		return fmt.Errorf("get report: %w", err)
	}
	if current != string(model.VerdictNone) {
		return ErrVerdictExists
	}

	if _, err := tx.ExecContext(ctx, `UPDATE reports SET verdict = ? WHERE id = ?`, string(v), reportID); err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE filters SET `+column+` = `+column+` + 1 WHERE id = ?`, filterID,
	); err != nil {
		return fmt.Errorf("update filter counters: %w", err)
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanFeed(row scannable) (*model.Feed, error) {
	var f model.Feed
	var isActive int
	var lastCheck, created sql.NullString
	err := row.Scan(&f.ID, &f.ChatID, &f.Name, &f.URL, &f.IntervalMinutes, &isActive, &lastCheck, &created)
	if err != nil {
		return nil, fmt.Errorf("scan feed: %w", err)
	}
	f.IsActive = isActive == 1
	if lastCheck.Valid {
		t, _ := time.Parse(timeLayout, lastCheck.String)
		f.LastCheckAt = &t
	}
	if created.Valid {
		f.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &f, nil
}

func scanFeeds(rows *sql.Rows) ([]model.Feed, error) {
	var feeds []model.Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, *f)
	}
	return feeds, rows.Err()
}

func scanFilter(row scannable) (model.Filter, error) {
	var f model.Filter
	var tp, fp int64
	var created string
	err := row.Scan(&f.ID, &f.ChatID, &f.Description, &f.Pattern, &f.Kind, &tp, &fp, &created)
	if err != nil {
		return f, fmt.Errorf("scan filter: %w", err)
	}
	f.TruePositives = uint(tp)
	f.FalsePositives = uint(fp)
	f.CreatedAt, _ = time.Parse(timeLayout, created)
	return f, nil
}
