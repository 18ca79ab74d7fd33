package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/okian/axcpt/internal/config"
	"github.com/okian/axcpt/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

// cli carries state shared by every subcommand once flags are parsed.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log logger.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:   "axcpt",
		Short: "Score AX-CPT sessions",
		Long: `axcpt scores merged E-Prime exports of the AX Continuous Performance Test.

It filters trials, computes per-trial-type counts and reaction-time statistics,
adds corrected hit and false-alarm rates and d', and drops subjects that fail
the protocol's data-quality thresholds.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default $AXCPT_CONFIG)")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(newScoreCommand(c))
	cmd.AddCommand(newReconcileCommand(c))
	cmd.AddCommand(newQCCommand(c))

	return cmd
}

// setup loads configuration and initializes logging. Flags override config.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Context(), c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.logFormat != "" {
		cfg.LogFormat = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.Named("axcpt")
	return nil
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}
