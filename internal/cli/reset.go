package cli

import (
	"log/slog"

	"github.com/roach88/bigram/internal/config"
	"github.com/roach88/bigram/internal/store"
)

type resetOutput struct {
	Reset string `json:"reset" yaml:"reset"`
}

func (o resetOutput) String() string {
	return "Deleted bigram store " + o.Reset
}

func runReset(cfg config.Config, logger *slog.Logger, formatter *OutputFormatter) error {
	logger.Debug("resetting store", "path", cfg.Database)
	if err := store.Reset(cfg.Database); err != nil {
		return WrapExitError(ExitFailure, "failed to reset store", err)
	}
	return formatter.Success(resetOutput{Reset: cfg.Database})
}
