package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pbaille/diary/internal/diary"
)

//go:embed schema.sql
var schema string

// Store writes corpus snapshots to a SQLite file. Snapshots are an export
// format only; the corpus is never loaded back from it.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteSnapshot replaces the database contents with snap in one transaction.
func (s *Store) WriteSnapshot(ctx context.Context, snap diary.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"word_counts", "pages", "entries", "authors"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, a := range snap.Authors {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO authors (id, display_name, first_name, last_name, nickname, last_time_created, last_time_changed)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.DisplayName, nullString(a.Name.First), nullString(a.Name.Last), nullString(a.Name.Nickname),
			nullTime(a.LastTimeCreated), nullTime(a.LastTimeChanged),
		)
		if err != nil {
			return fmt.Errorf("insert author: %w", err)
		}
	}

	for _, e := range snap.Entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO entries (id, author_id, author_name, title, max_words_per_page, time_created, time_changed)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.AuthorID, e.Author, e.Title, e.MaxWordsPerPage, e.TimeCreated, e.TimeChanged,
		)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		for _, p := range e.Pages {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO pages (entry_id, number, title, text) VALUES (?, ?, ?, ?)",
				e.ID, p.Number, p.Title, p.Text,
			); err != nil {
				return fmt.Errorf("insert page: %w", err)
			}
		}
		for _, word := range e.WordCount.Words() {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO word_counts (entry_id, word, count) VALUES (?, ?, ?)",
				e.ID, word, e.WordCount[word],
			); err != nil {
				return fmt.Errorf("insert word count: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

// WordTotal is a word and its count summed over all exported entries.
type WordTotal struct {
	Word  string
	Count int
}

// TopWords returns the most frequent words of the exported corpus.
func (s *Store) TopWords(ctx context.Context, limit int) ([]WordTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT word, SUM(count) AS total FROM word_counts GROUP BY word ORDER BY total DESC, word LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top words: %w", err)
	}
	defer rows.Close()

	var totals []WordTotal
	for rows.Next() {
		var w WordTotal
		if err := rows.Scan(&w.Word, &w.Count); err != nil {
			return nil, fmt.Errorf("scan word total: %w", err)
		}
		totals = append(totals, w)
	}
	return totals, rows.Err()
}

// Counts returns the number of exported authors and entries.
func (s *Store) Counts(ctx context.Context) (authors, entries int, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM authors), (SELECT COUNT(*) FROM entries)",
	).Scan(&authors, &entries)
	if err != nil {
		return 0, 0, fmt.Errorf("count rows: %w", err)
	}
	return authors, entries, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
