package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/bigram/internal/store"
)

// Sink receives resolved words and adjacent pairs.
// *store.Store and *store.Batch both implement it.
type Sink interface {
	ResolveWord(ctx context.Context, word string) (int64, error)
	AccumulateBigram(ctx context.Context, firstID, secondID int64) error
}

// Counts is what Feed did to a sink.
type Counts struct {
	Tokens int64 // ResolveWord calls
	Pairs  int64 // AccumulateBigram calls
}

// Feed tokenizes r and, for tokens t0..tn, resolves each token in order and
// accumulates (id(t[i]), id(t[i+1])) for every adjacent pair. An empty source
// makes no calls; a single token makes one resolve and no accumulate.
//
// The first sink error stops the feed and is returned unchanged. The counts
// reflect the calls that succeeded before it.
func Feed(ctx context.Context, sink Sink, tok *Tokenizer, r io.Reader) (Counts, error) {
	var (
		counts   Counts
		prev     int64
		havePrev bool
	)

	err := tok.Each(r, func(token string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		id, err := sink.ResolveWord(ctx, token)
		if err != nil {
			return err
		}
		counts.Tokens++

		if havePrev {
			if err := sink.AccumulateBigram(ctx, prev, id); err != nil {
				return err
			}
			counts.Pairs++
		}
		prev, havePrev = id, true
		return nil
	})

	return counts, err
}

// Result describes one ingested source.
type Result struct {
	RunID  string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Source string `json:"source" yaml:"source"`
	Tokens int64  `json:"tokens" yaml:"tokens"`
	Pairs  int64  `json:"pairs" yaml:"pairs"`
}

// Report collects the outcome of IngestFiles.
type Report struct {
	Results []Result
	Skipped []*MissingSourceError
}

// Ingester feeds sources into a store, one transaction per source.
type Ingester struct {
	store     *store.Store
	tokenizer *Tokenizer
	runIDs    RunIDGenerator
	logger    *slog.Logger
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(in *Ingester) { in.logger = logger }
}

// WithRunIDGenerator overrides the run id source (for testing).
// Defaults to UUIDv7Generator.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(in *Ingester) { in.runIDs = gen }
}

// WithTokenizer overrides the tokenizer.
func WithTokenizer(tok *Tokenizer) Option {
	return func(in *Ingester) { in.tokenizer = tok }
}

// NewIngester creates an Ingester writing to st.
func NewIngester(st *store.Store, opts ...Option) *Ingester {
	in := &Ingester{
		store:     st,
		tokenizer: NewTokenizer(),
		runIDs:    UUIDv7Generator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// IngestReader ingests r under the name source inside a single store batch.
// On success with at least one token, an ingestion record is written in the
// same batch. An empty source leaves the store untouched and returns a Result
// with no run id.
//
// A read failure is returned as a *ReadError; storage failures as a
// *store.StorageError. Either way nothing from this source is kept.
func (in *Ingester) IngestReader(ctx context.Context, source string, r io.Reader) (Result, error) {
	res := Result{Source: source}

	err := in.store.Batch(ctx, func(b *store.Batch) error {
		counts, err := Feed(ctx, b, in.tokenizer, r)
		if err != nil {
			return err
		}
		res.Tokens, res.Pairs = counts.Tokens, counts.Pairs

		if counts.Tokens == 0 {
			return nil
		}

		res.RunID = in.runIDs.Generate()
		return b.RecordIngestion(ctx, store.Ingestion{
			ID:     res.RunID,
			Source: source,
			Tokens: counts.Tokens,
			Pairs:  counts.Pairs,
		})
	})
	if err != nil {
		return Result{}, fmt.Errorf("ingest %s: %w", source, err)
	}

	if res.Tokens == 0 {
		in.logger.Debug("empty source", "source", source)
	} else {
		in.logger.Info("ingested source",
			"source", source,
			"run_id", res.RunID,
			"tokens", res.Tokens,
			"pairs", res.Pairs,
		)
	}
	return res, nil
}

// IngestFile opens path and ingests it. A path that cannot be opened, is a
// directory, or fails while being read returns a *MissingSourceError.
func (in *Ingester) IngestFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, &MissingSourceError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{}, &MissingSourceError{Path: path, Err: err}
	}
	if info.IsDir() {
		return Result{}, &MissingSourceError{Path: path, Err: errors.New("is a directory")}
	}

	res, err := in.IngestReader(ctx, path, f)
	var readErr *ReadError
	if errors.As(err, &readErr) {
		return Result{}, &MissingSourceError{Path: path, Err: readErr.Err}
	}
	return res, err
}

// IngestFiles ingests paths in order. Missing or unreadable files are logged,
// collected in Report.Skipped and do not stop the run. Any other error stops
// the run and is returned with the report so far.
func (in *Ingester) IngestFiles(ctx context.Context, paths []string) (Report, error) {
	report := Report{
		Results: []Result{},
		Skipped: []*MissingSourceError{},
	}

	for _, path := range paths {
		res, err := in.IngestFile(ctx, path)

		var missing *MissingSourceError
		if errors.As(err, &missing) {
			in.logger.Debug("skipping source", "source", path, "error", missing.Err)
			report.Skipped = append(report.Skipped, missing)
			continue
		}
		if err != nil {
			return report, err
		}

		report.Results = append(report.Results, res)
	}

	return report, nil
}
