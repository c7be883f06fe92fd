package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/WilderMartins/GRC-sub003/pkg/cli/config"
	httpctrl "github.com/WilderMartins/GRC-sub003/pkg/controller/http"
	"github.com/WilderMartins/GRC-sub003/pkg/service/worker"
	"github.com/WilderMartins/GRC-sub003/pkg/usecase"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/async"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/safe"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var enableMetrics bool
	var notifyTimeout time.Duration
	var memberSyncInterval time.Duration
	var repoCfg config.Repository
	var notifierCfg config.Notifier
	var authCfg config.Auth
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("GRC_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics on /metrics",
			Value:       true,
			Sources:     cli.EnvVars("GRC_METRICS"),
			Destination: &enableMetrics,
		},
		&cli.DurationFlag{
			Name:        "notify-timeout",
			Usage:       "Upper bound for delivering one workflow event",
			Category:    "Notifier",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("GRC_NOTIFY_TIMEOUT"),
			Destination: &notifyTimeout,
		},
		&cli.DurationFlag{
			Name:        "member-sync-interval",
			Usage:       "Reload --member-file periodically (0 loads it once at startup)",
			Category:    "Policy",
			Sources:     cli.EnvVars("GRC_MEMBER_SYNC_INTERVAL"),
			Destination: &memberSyncInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, notifierCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"repository", repoCfg,
				"notifier", notifierCfg,
				"auth", authCfg,
				"policy", policyCfg,
			)

			matrix, err := policyCfg.RiskMatrix()
			if err != nil {
				return goerr.Wrap(err, "failed to load risk matrix")
			}
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			notifier, err := notifierCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize notifier")
			}
			defer safe.Close(ctx, notifier)

			authn, err := authCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			uc := usecase.New(repo,
				usecase.WithRiskMatrix(matrix),
				usecase.WithNotifier(notifier),
				usecase.WithNotifyTimeout(notifyTimeout),
			)

			if memberSyncInterval > 0 && policyCfg.HasMemberFile() {
				memberWorker := worker.NewMemberSyncWorker(&policyCfg, uc.Member, memberSyncInterval)
				if err := memberWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start member sync worker")
				}
				defer memberWorker.Stop()
			} else if policyCfg.HasMemberFile() {
				members, err := policyCfg.Members()
				if err != nil {
					return goerr.Wrap(err, "failed to load members")
				}
				if err := uc.Member.Import(ctx, members); err != nil {
					return goerr.Wrap(err, "failed to import members")
				}
				logging.Default().Info("Imported members", "count", len(members))
			}

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(uc,
					httpctrl.WithAuthenticator(authn),
					httpctrl.WithMetrics(enableMetrics),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "metrics", enableMetrics)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				// Let in-flight event deliveries finish before the notifier closes
				if !async.Drain(shutdownCtx) {
					logging.Default().Warn("Workflow events still in flight at shutdown")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
