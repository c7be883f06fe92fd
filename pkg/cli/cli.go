package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/WilderMartins/GRC-sub003/pkg/cli/config"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/errutil"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

// Run executes the grc command line. Logging and error reporting are set up
// once on the root command and shared by every subcommand.
func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	// Sentry flushes first so the final report still has a log sink
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	app := &cli.Command{
		Name:    "grc",
		Usage:   "Risk register with risk acceptance approval workflow",
		Version: version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			closeLogger, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, closeLogger)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Info("Starting grc",
				"version", version,
				"command", c.Args().First(),
				"logger", loggerCfg,
				"sentry", sentryCfg,
			)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdMigrate(),
			cmdPolicy(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return errutil.Handle(ctx, err, "failed to run app")
	}

	return nil
}
