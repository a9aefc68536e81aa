// Package store provides SQLite-backed storage for word bigram counts.
//
// The store holds three tables:
//   - words: one row per distinct token string, stored verbatim
//   - bigrams: a count per ordered (first_id, second_id) pair of word ids
//   - ingestions: one record per fully ingested source
//
// # Operations
//
// ResolveWord is get-or-create: an existing string returns its id, a new
// string is inserted. Strings are always bound as parameters, never spliced
// into SQL.
//
// AccumulateBigram is an atomic upsert. Pair order is positional and never
// normalized.
//
// Batch wraps a sequence of these operations in one transaction.
//
// # Database Configuration
//
//   - journal_mode=DELETE: the store is a single file between runs
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: bigram ids must reference existing words
//
// Every failure is returned as a *StorageError.
package store
