package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/visheshsingal/hitech/config"
	"github.com/visheshsingal/hitech/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hitech",
	Short: "Hi-Tech Homes property listing backend",
	Long: `Serves the property catalog, enquiries, analytics, admin dashboard and
the listing assistant chatbot over HTTP. Running without a subcommand starts
the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults to $CONFIG_PATH)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

type app struct {
	cfg    *config.Config
	log    *slog.Logger
	closer func()
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, closer, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	return &app{
		cfg: cfg,
		log: log,
		closer: func() {
			if err := closer.Close(); err != nil {
				fmt.Fprintln(os.Stderr, "close log sink:", err)
			}
		},
	}, nil
}

func (a *app) connect(ctx context.Context) (func(), error) {
	client, err := config.ConnectDB(ctx, a.cfg.Mongo)
	if err != nil {
		return nil, err
	}
	return func() { config.Disconnect(context.Background(), client) }, nil
}
