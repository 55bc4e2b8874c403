package main

import (
	"fmt"
	"os"

	"github.com/sifan077/Rinku/internal/client"
	"github.com/sifan077/Rinku/internal/infra/logger"
	"github.com/sifan077/Rinku/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	apiURLFlag  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "rinku",
	Short:         "Personal bookmark manager",
	Long:          "Browse, add, edit and delete bookmarks stored by the Rinku API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := initLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		settings, err := client.SettingsPath()
		if err != nil {
			return err
		}
		pref, err := client.LoadThemePreference(settings)
		if err != nil {
			log.Warn("Ignoring unreadable settings", zap.String("path", settings), zap.Error(err))
			pref, _ = client.LoadThemePreference("")
		}

		return tui.New(newAPI(), pref, log).Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", defaultAPIURL(), "bookmark API base URL [$RINKU_API_URL]")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(listCmd, addCmd, removeCmd)
}

func defaultAPIURL() string {
	if v := os.Getenv("RINKU_API_URL"); v != "" {
		return v
	}
	return client.DefaultBaseURL
}

func newAPI() *client.API {
	return client.NewAPI(apiURLFlag, nil)
}

// initLogger sends logs to a file: the terminal belongs to the UI.
func initLogger() (*zap.Logger, error) {
	path, err := client.LogPath()
	if err != nil {
		return nil, fmt.Errorf("log path: %w", err)
	}

	level := "info"
	if verboseFlag {
		level = "debug"
	}

	log, err := logger.Init(logger.Config{
		Level:       level,
		Encoding:    "json",
		Service:     "rinku",
		OutputPaths: []string{path},
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}
