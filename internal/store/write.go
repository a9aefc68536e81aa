package store

import (
	"context"
	"database/sql"
	"errors"
)

// ResolveWord returns the id of word, inserting it if it has not been seen.
//
// The word is always bound as a query parameter, so it is stored byte for
// byte as given: quote characters are neither doubled nor stripped, and no
// word content can change the statement. Resolving the same word again
// returns the same id without writing.
func (s *Store) ResolveWord(ctx context.Context, word string) (int64, error) {
	return resolveWord(ctx, s.db, word)
}

func resolveWord(ctx context.Context, q querier, word string) (int64, error) {
	if word == "" {
		return 0, newError("resolve word", KindInvalid, ErrEmptyWord)
	}

	id, found, err := lookupWord(ctx, q, word)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}

	// ON CONFLICT DO NOTHING covers a row that appeared after the lookup.
	result, err := q.ExecContext(ctx, `
		INSERT INTO words (string)
		VALUES (?)
		ON CONFLICT(string) DO NOTHING
	`, word)
	if err != nil {
		return 0, newError("resolve word: insert", KindWrite, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, newError("resolve word: rows affected", KindWrite, err)
	}

	if rowsAffected > 0 {
		id, err = result.LastInsertId()
		if err != nil {
			return 0, newError("resolve word: last insert id", KindWrite, err)
		}
		return id, nil
	}

	id, found, err = lookupWord(ctx, q, word)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, newError("resolve word", KindWrite, errors.New("word vanished after insert conflict"))
	}
	return id, nil
}

// AccumulateBigram adds one occurrence of the ordered pair (firstID, secondID).
// A new pair starts at count 1. The pair is never reordered: (a, b) and
// (b, a) are counted separately.
//
// Both ids must reference existing words.
func (s *Store) AccumulateBigram(ctx context.Context, firstID, secondID int64) error {
	return accumulateBigram(ctx, s.db, firstID, secondID)
}

func accumulateBigram(ctx context.Context, q querier, firstID, secondID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO bigrams (first_id, second_id, count)
		VALUES (?, ?, 1)
		ON CONFLICT(first_id, second_id) DO UPDATE SET count = count + 1
	`, firstID, secondID)
	if err != nil {
		return newError("accumulate bigram", KindWrite, err)
	}
	return nil
}

// Ingestion is the record of one fully ingested source.
type Ingestion struct {
	Seq    int64  // assigned by the store, ignored on write
	ID     string // run id, unique per ingestion
	Source string
	Tokens int64
	Pairs  int64
}

// RecordIngestion appends an ingestion record.
func (s *Store) RecordIngestion(ctx context.Context, ing Ingestion) error {
	return recordIngestion(ctx, s.db, ing)
}

func recordIngestion(ctx context.Context, q querier, ing Ingestion) error {
	if ing.ID == "" {
		return newError("record ingestion", KindInvalid, errors.New("missing run id"))
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO ingestions (id, source, tokens, pairs)
		VALUES (?, ?, ?, ?)
	`, ing.ID, ing.Source, ing.Tokens, ing.Pairs)
	if err != nil {
		return newError("record ingestion", KindWrite, err)
	}
	return nil
}

func lookupWord(ctx context.Context, q querier, word string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM words WHERE string = ?`, word).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, newError("lookup word", KindQuery, err)
	}
	return id, true, nil
}
