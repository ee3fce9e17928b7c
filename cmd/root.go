package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zirakhr/zirak/internal/config"
	"github.com/zirakhr/zirak/internal/logging"
	"github.com/zirakhr/zirak/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "zirak",
	Short: "Skill assessment engine",
	Long:  "Zirak generates skill assessments, runs them against a time limit, scores submissions and verifies skills on candidate profiles.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides ZIRAK_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ZIRAK_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config once per process and applies flag
// overrides: --db beats store.dsn, which beats ZIRAK_DB.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.DSN = p
	}
	if cfg.Store.Driver == config.DriverSQLite && cfg.Store.DSN == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		cfg.Store.DSN = p
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	appConfig = cfg
	return cfg, nil
}

var appConfig *config.Config
