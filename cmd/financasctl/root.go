package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/services"
)

var version = "0.1.0"

// session is the ledger a command runs against. It is opened before RunE
// and closed by run.
type session struct {
	cfg     *config.Config
	logger  *applog.Logger
	ledger  *services.LedgerService
	closers []func() error
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("Close failed", "error", err)
		}
	}
	s.closers = nil
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "financasctl",
		Short: "Household ledger from the command line",
		Long: `financasctl works on the same ledger as the financas server.

The backend is chosen the same way, through DATA_BACKEND and the related
environment variables (a .env file in the working directory is read too).
When AMQP_URL is set, changes are announced so the sheet mirror catches up.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd.Context())
		},
	}

	root.AddCommand(
		newImportCmd(s),
		newBalancesCmd(s),
		newFeasibilityCmd(s),
		newExportCmd(s),
	)
	return root
}

func (s *session) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger = cli.SetupLogger(cfg, applog.ComponentCLI)

	store, err := cli.OpenBackend(ctx, cfg, s.logger.WithComponent(applog.ComponentBackend).Logger)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, store.Close)

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			s.logger.Warn("AMQP unavailable, the mirror will catch up on its schedule", "error", err)
		} else {
			publisher = client
			s.closers = append(s.closers, client.Close)
		}
	}

	s.ledger = services.NewLedgerService(store.Backend, publisher, cache.NewLRUCache[core.Snapshot](1, time.Minute))
	return nil
}

// monthsFlag reads --months, falling back to the configured window.
func (s *session) monthsFlag(cmd *cobra.Command) (int, error) {
	months, _ := cmd.Flags().GetInt("months")
	if months == 0 {
		months = s.cfg.ProjectionMonths
	}
	if months < 1 || months > 120 {
		return 0, fmt.Errorf("months must be between 1 and 120, got %d", months)
	}
	return months, nil
}
