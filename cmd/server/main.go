// Package main is the entry point of the custom field service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"customfields/internal/config"
	"customfields/pkg/logger"
)

const version = "0.1.0"

var (
	// configFile is set by the --config flag.
	configFile string

	cfg *config.Config
	log *logger.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "customfields",
	Short: "Custom field definitions and values for owning entities",
	Long: `customfields stores administrator-defined fields for business entities,
validates submitted values against each field's type and constraints, and
applies value batches per owning entity.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("customfields v" + version)
	},
}

// setup loads config and initializes the logger for every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err = logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	return nil
}
