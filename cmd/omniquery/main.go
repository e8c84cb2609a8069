package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bububa/omniquery/app"
	"github.com/bububa/omniquery/config"
	"github.com/bububa/omniquery/logging"
)

var (
	version = "0.1.0"
	commit  = ""
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "omniquery",
		Short: "OmniQuery: one question, every company data source",
		Long:  "OmniQuery routes natural language questions to documents, databases, Confluence and the web, and merges the answers with citations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "config file (default ./config.yaml when present)")
	cmd.PersistentFlags().StringP("log-level", "l", "", "log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "", "log format: text or json")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newAgentsCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "omniquery %s (%s)\n", version, commit)
		},
	}
}

// loadConfig reads the config and sets up logging, flags win over the file
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	return cfg, nil
}

// newApp loads the configuration and builds the application
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	ctx := log.Logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)
	return app.New(ctx, cfg)
}

func main() {
	logging.Init("info", "text", os.Stderr)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	root := newRootCmd()
	root.SetContext(ctx)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
