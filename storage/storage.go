// Package storage persists seen videos and subscriptions in a local SQLite
// database. The videos table doubles as the watcher's known-record set: the
// code column is unique and inserts are idempotent, so insertion itself
// decides whether a record counts as new.
package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/javsan-cli/javsan/source"
	"github.com/lithammer/fuzzysearch/fuzzy"
	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/lo"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	code             TEXT    NOT NULL UNIQUE,
	source_id        TEXT    NOT NULL,
	title            TEXT    NOT NULL DEFAULT '',
	detail_url       TEXT    NOT NULL DEFAULT '',
	cover_url        TEXT    NOT NULL DEFAULT '',
	preview_url      TEXT    NOT NULL DEFAULT '',
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	actresses        TEXT    NOT NULL DEFAULT '',
	tags             TEXT    NOT NULL DEFAULT '',
	release_date     TEXT    NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	sub_type   TEXT NOT NULL,
	keyword    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (sub_type, keyword)
);

CREATE TABLE IF NOT EXISTS push_records (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	subscription_id INTEGER NOT NULL,
	code            TEXT NOT NULL,
	pushed_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (subscription_id, code)
);
`

// SubscriptionType selects what a subscription matches against.
type SubscriptionType string

const (
	// SubscribeAll matches every new record.
	SubscribeAll SubscriptionType = "ALL"
	// SubscribeActress matches records featuring the keyword as actress.
	SubscribeActress SubscriptionType = "ACTRESS"
	// SubscribeTag matches records carrying the keyword as tag.
	SubscribeTag SubscriptionType = "TAG"
)

// Subscription is a stored notification rule.
type Subscription struct {
	ID        int64
	Type      SubscriptionType
	Keyword   string
	CreatedAt time.Time
}

// Storage wraps the SQLite database.
type Storage struct {
	db *sql.DB
}

// Open opens (creating when absent) the database at path and applies the
// schema. The busy timeout keeps the CLI and a running watcher from
// tripping over each other on the same file.
func Open(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Exists reports whether a record with the given code is already stored.
func (s *Storage) Exists(code string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM videos WHERE code = ?`, source.NormalizeCode(code)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertIfAbsent stores the record unless its code is already present and
// reports whether a row was actually inserted. Concurrent inserters of the
// same code agree on a single winner.
func (s *Storage) InsertIfAbsent(video *source.Video) (bool, error) {
	if video == nil || video.Code == "" {
		return false, fmt.Errorf("record without a code cannot be stored")
	}

	result, err := s.db.Exec(`
		INSERT OR IGNORE INTO videos
			(code, source_id, title, detail_url, cover_url, preview_url,
			 duration_minutes, actresses, tags, release_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.Code, video.SourceID, video.Title, video.DetailURL,
		video.CoverURL, video.PreviewURL, video.DurationMinutes,
		joinNames(video.Actresses), joinNames(video.Tags), video.ReleaseDate,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListRecent returns the most recently stored records, newest first.
func (s *Storage) ListRecent(limit int) ([]*source.Video, error) {
	rows, err := s.db.Query(`
		SELECT code, source_id, title, detail_url, cover_url, preview_url,
		       duration_minutes, actresses, tags, release_date
		FROM videos ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVideos(rows)
}

// SearchLocal fuzzy-matches the stored records against the keyword, over
// both the code and the title, best matches first.
func (s *Storage) SearchLocal(keyword string, limit int) ([]*source.Video, error) {
	rows, err := s.db.Query(`
		SELECT code, source_id, title, detail_url, cover_url, preview_url,
		       duration_minutes, actresses, tags, release_date
		FROM videos ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos, err := scanVideos(rows)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		video *source.Video
		rank  int
	}
	var matches []ranked
	for _, video := range videos {
		rank := fuzzy.RankMatchNormalizedFold(keyword, video.Code)
		if titleRank := fuzzy.RankMatchNormalizedFold(keyword, video.Title); titleRank >= 0 && (rank < 0 || titleRank < rank) {
			rank = titleRank
		}
		if rank < 0 {
			continue
		}
		matches = append(matches, ranked{video: video, rank: rank})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rank < matches[j].rank
	})

	found := lo.Map(matches, func(m ranked, _ int) *source.Video { return m.video })
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// Subscribe stores a notification rule and returns its id. Re-subscribing
// an existing rule returns the stored rule's id.
func (s *Storage) Subscribe(subType SubscriptionType, keyword string) (int64, error) {
	result, err := s.db.Exec(`
		INSERT OR IGNORE INTO subscriptions (sub_type, keyword) VALUES (?, ?)`,
		string(subType), keyword)
	if err != nil {
		return 0, err
	}

	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		return result.LastInsertId()
	}

	var id int64
	err = s.db.QueryRow(`
		SELECT id FROM subscriptions WHERE sub_type = ? AND keyword = ?`,
		string(subType), keyword).Scan(&id)
	return id, err
}

// Unsubscribe removes a notification rule together with its push history.
func (s *Storage) Unsubscribe(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM push_records WHERE subscription_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM subscriptions WHERE id = ?`, id)
	return err
}

// Subscriptions returns all stored notification rules, oldest first.
func (s *Storage) Subscriptions() ([]Subscription, error) {
	rows, err := s.db.Query(`
		SELECT id, sub_type, keyword, created_at FROM subscriptions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		var subType string
		if err := rows.Scan(&sub.ID, &subType, &sub.Keyword, &sub.CreatedAt); err != nil {
			return nil, err
		}
		sub.Type = SubscriptionType(subType)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// MatchSubscriptions returns the rules the record satisfies. ALL rules
// always match; ACTRESS and TAG rules match by case-insensitive equality
// against the record's respective name lists.
func (s *Storage) MatchSubscriptions(video *source.Video) ([]Subscription, error) {
	subs, err := s.Subscriptions()
	if err != nil {
		return nil, err
	}

	var matched []Subscription
	for _, sub := range subs {
		switch sub.Type {
		case SubscribeAll:
			matched = append(matched, sub)
		case SubscribeActress:
			if containsFold(video.Actresses, sub.Keyword) {
				matched = append(matched, sub)
			}
		case SubscribeTag:
			if containsFold(video.Tags, sub.Keyword) {
				matched = append(matched, sub)
			}
		}
	}
	return matched, nil
}

// RecordPush stores the audit entry for a delivered notification. Repeat
// deliveries of the same record to the same rule collapse into one entry.
func (s *Storage) RecordPush(subscriptionID int64, code string) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO push_records (subscription_id, code) VALUES (?, ?)`,
		subscriptionID, source.NormalizeCode(code))
	return err
}

func containsFold(names []string, keyword string) bool {
	return lo.ContainsBy(names, func(name string) bool {
		return strings.EqualFold(name, keyword)
	})
}

func joinNames(names []string) string {
	return strings.Join(names, ",")
}

func splitNames(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

func scanVideos(rows *sql.Rows) ([]*source.Video, error) {
	var videos []*source.Video
	for rows.Next() {
		var video source.Video
		var actresses, tags string
		err := rows.Scan(&video.Code, &video.SourceID, &video.Title,
			&video.DetailURL, &video.CoverURL, &video.PreviewURL,
			&video.DurationMinutes, &actresses, &tags, &video.ReleaseDate)
		if err != nil {
			return nil, err
		}
		video.Actresses = splitNames(actresses)
		video.Tags = splitNames(tags)
		videos = append(videos, &video)
	}
	return videos, rows.Err()
}
