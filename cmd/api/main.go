package main

import (
	"context"
	"fmt"
	"os"

	"taskManager/internal/app"
	"taskManager/internal/config"
	"taskManager/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "taskmanager",
	Short: "Task management REST API",
	Long: `Task management REST API.

Without a subcommand the HTTP server is started, same as 'taskmanager serve'.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file (default ./config.yml)")
	rootCmd.AddCommand(serveCmd)
}

// setup loads the configuration and initialises the global logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Development); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	a := app.New(cfg)
	defer func() {
		err = multierr.Append(err, a.Close())
	}()

	if err := a.Init(cmd.Context()); err != nil {
		logger.Error("App: initialisation failed", err)
		return err
	}
	return a.Run(cmd.Context())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
