package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcdannyboy/bsmrisk/config"
	"github.com/bcdannyboy/bsmrisk/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	log        *zap.Logger
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.LogLevel = a.logLevel
	}
	log, _, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) sync(cmd *cobra.Command, args []string) {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "bsmrisk",
		Short:             "Black-Scholes-Merton pricing and risk analysis",
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
		PersistentPostRun: a.sync,
		Run: func(c *cobra.Command, args []string) {
			_ = c.Help()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./config.yaml if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.log_level")

	root.AddCommand(
		newAnalyzeCmd(a),
		newSurfaceCmd(a),
		newServeCmd(a),
		newSlackCmd(a),
	)
	return root
}

// Execute runs the command tree until it returns or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
