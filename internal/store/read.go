package store

import (
	"context"
	"database/sql"
	"errors"
)

// Bigram is one row of raw counts with both word strings attached.
type Bigram struct {
	FirstID  int64  `json:"first_id" yaml:"first_id"`
	First    string `json:"first" yaml:"first"`
	SecondID int64  `json:"second_id" yaml:"second_id"`
	Second   string `json:"second" yaml:"second"`
	Count    int64  `json:"count" yaml:"count"`
}

// Stats summarizes the store contents.
type Stats struct {
	Words       int64 `json:"words" yaml:"words"`
	Bigrams     int64 `json:"bigrams" yaml:"bigrams"`
	Occurrences int64 `json:"occurrences" yaml:"occurrences"` // sum of all bigram counts
}

// LookupWord returns the id of word without inserting it.
func (s *Store) LookupWord(ctx context.Context, word string) (id int64, found bool, err error) {
	return lookupWord(ctx, s.db, word)
}

// WordByID returns the stored string for id.
// Returns a *StorageError wrapping ErrNotFound if no such word exists.
func (s *Store) WordByID(ctx context.Context, id int64) (string, error) {
	var word string
	err := s.db.QueryRowContext(ctx, `SELECT string FROM words WHERE id = ?`, id).Scan(&word)
	if errors.Is(err, sql.ErrNoRows) {
		return "", newError("word by id", KindQuery, ErrNotFound)
	}
	if err != nil {
		return "", newError("word by id", KindQuery, err)
	}
	return word, nil
}

// BigramCount returns the count for the ordered pair, or 0 if it was never
// accumulated.
func (s *Store) BigramCount(ctx context.Context, firstID, secondID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT count FROM bigrams
		WHERE first_id = ? AND second_id = ?
	`, firstID, secondID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, newError("bigram count", KindQuery, err)
	}
	return count, nil
}

// ListBigrams returns raw counts ordered by count descending, then by the
// pair's ids. limit <= 0 returns every row.
//
// Returns an empty slice (not nil) if the store holds no bigrams.
func (s *Store) ListBigrams(ctx context.Context, limit int) ([]Bigram, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.first_id, w1.string, b.second_id, w2.string, b.count
		FROM bigrams b
		JOIN words w1 ON w1.id = b.first_id
		JOIN words w2 ON w2.id = b.second_id
		ORDER BY b.count DESC, b.first_id ASC, b.second_id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, newError("list bigrams", KindQuery, err)
	}
	defer rows.Close()

	bigrams := []Bigram{}
	for rows.Next() {
		var b Bigram
		if err := rows.Scan(&b.FirstID, &b.First, &b.SecondID, &b.Second, &b.Count); err != nil {
			return nil, newError("list bigrams: scan", KindQuery, err)
		}
		bigrams = append(bigrams, b)
	}

	if err := rows.Err(); err != nil {
		return nil, newError("list bigrams: iterate", KindQuery, err)
	}

	return bigrams, nil
}

// Stats returns row counts for both tables and the total of all counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&st.Words); err != nil {
		return Stats{}, newError("stats: words", KindQuery, err)
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(count), 0) FROM bigrams
	`).Scan(&st.Bigrams, &st.Occurrences)
	if err != nil {
		return Stats{}, newError("stats: bigrams", KindQuery, err)
	}
	return st, nil
}

// ListIngestions returns ingestion records in the order they were written.
func (s *Store) ListIngestions(ctx context.Context) ([]Ingestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, source, tokens, pairs
		FROM ingestions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, newError("list ingestions", KindQuery, err)
	}
	defer rows.Close()

	ingestions := []Ingestion{}
	for rows.Next() {
		var ing Ingestion
		if err := rows.Scan(&ing.Seq, &ing.ID, &ing.Source, &ing.Tokens, &ing.Pairs); err != nil {
			return nil, newError("list ingestions: scan", KindQuery, err)
		}
		ingestions = append(ingestions, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, newError("list ingestions: iterate", KindQuery, err)
	}

	return ingestions, nil
}
