package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/bigram/internal/config"
	"github.com/roach88/bigram/internal/ingest"
	"github.com/roach88/bigram/internal/store"
)

// ingestOutput is the result of an ingest and/or dump run.
type ingestOutput struct {
	Ingested []ingest.Result `json:"ingested" yaml:"ingested"`
	Skipped  []string        `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Bigrams  []store.Bigram  `json:"bigrams,omitempty" yaml:"bigrams,omitempty"`
}

// String renders one summary line per ingested source, then one
// "<count>\t<first> <second>" line per bigram.
func (o ingestOutput) String() string {
	var b strings.Builder
	for _, r := range o.Ingested {
		fmt.Fprintf(&b, "%s: %d tokens, %d bigrams\n", r.Source, r.Tokens, r.Pairs)
	}
	for _, bg := range o.Bigrams {
		fmt.Fprintf(&b, "%d\t%s %s\n", bg.Count, bg.First, bg.Second)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func runIngest(ctx context.Context, opts *RootOptions, paths []string, cfg config.Config, logger *slog.Logger, formatter *OutputFormatter) error {
	logger.Debug("opening store", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open store", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = ingest.UUIDv7Generator{}
	}
	in := ingest.NewIngester(st,
		ingest.WithLogger(logger),
		ingest.WithRunIDGenerator(runIDs),
	)

	out := ingestOutput{Ingested: []ingest.Result{}}

	if len(paths) > 0 {
		report, err := in.IngestFiles(ctx, paths)
		for _, missing := range report.Skipped {
			formatter.Notice("%v", missing)
			out.Skipped = append(out.Skipped, missing.Path)
		}
		if err != nil {
			return WrapExitError(ExitFailure, "ingestion failed", err)
		}
		out.Ingested = report.Results
	}

	if opts.Dump {
		bigrams, err := st.ListBigrams(ctx, opts.Limit)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to list bigrams", err)
		}
		out.Bigrams = bigrams
	}

	return formatter.Success(out)
}
