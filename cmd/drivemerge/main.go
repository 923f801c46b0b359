package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"drivemerge/internal/client"
	"drivemerge/internal/config"
	"drivemerge/internal/events"
)

// Version is set at build time.
var Version = "dev"

var (
	cfg       *config.Config
	logger    *events.Logger
	apiClient *client.Client

	configPath    string
	logLevel      string
	jsonLog       bool
	noUpdateCheck bool
)

var rootCmd = &cobra.Command{
	Use:   "drivemerge",
	Short: "Sync a Google Drive folder into merged text files",
	Long: `Drivemerge downloads the documents in a Google Drive folder,
extracts their text, and concatenates everything into size-bounded
merged output files. Runs are incremental: a per-folder ledger tracks
additions, updates, and deletions between runs, and only changed files
are downloaded again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.NewLoader(configPath).Load()
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if jsonLog {
			cfg.Log.Format = "json"
		}

		logger, err = events.NewLogger(&cfg.Log)
		if err != nil {
			return err
		}
		events.SetDefault(logger)

		if !noUpdateCheck {
			logger.WithField("version", Version).Debug("Running drivemerge")
		}

		apiClient, err = client.New(cfg, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if apiClient != nil {
			_ = apiClient.Close()
		}
	},
}

func init() {
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default: ./drivemerge.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false,
		"Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&noUpdateCheck, "no-update-check", false,
		"Skip the startup version notice")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
