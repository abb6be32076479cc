package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-title-fetcher/internal/app"
	"github.com/samvad-hq/samvad-title-fetcher/internal/config"
	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
	"github.com/samvad-hq/samvad-title-fetcher/internal/logger"
	"github.com/samvad-hq/samvad-title-fetcher/internal/storage"
)

// runtime is the part of app.App the commands use.
type runtime interface {
	Fetch(ctx context.Context, mode domain.Mode) domain.Outcome
	History(limit int) ([]storage.Entry, error)
	Close() error
}

var (
	loadConfig = config.Load
	newRuntime = func(ctx context.Context, cfg *config.Config, log logger.Logger) (runtime, error) {
		return app.New(ctx, cfg, log)
	}
)

// errReported marks failures already written to the command output.
var errReported = errors.New("failure already reported")

// IsReported reports whether err was already printed by a command.
func IsReported(err error) bool {
	return errors.Is(err, errReported)
}

// Execute runs the fetcher command tree.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fetcher",
		Short:         "Fetch a todo title from the live API or a bundled fixture",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(fetchCmd(), historyCmd())
	return root
}

// withRuntime loads config and the logger, builds the runtime, runs fn and
// closes everything afterwards.
func withRuntime(cmd *cobra.Command, fn func(rt runtime) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	rt, err := newRuntime(cmd.Context(), cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize fetcher", "error", err.Error())
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.ErrorObj("failed to close fetcher", "error", cerr.Error())
		}
	}()

	return fn(rt)
}
