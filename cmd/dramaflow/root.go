package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/dramaflow/internal/cli"
	"github.com/aretw0/dramaflow/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dramaflow",
	Short: "Dramaflow is a conversational assistant for short-drama promotion",
	Long: `Dramaflow routes each user message to a specialised agent (ranking, platform advice,
script writing, video editing) and keeps a per-session promotion workflow.

Settings are read from the --config YAML file, .env and DRAMAFLOW_* variables.
The API key comes from OPENAI_API_KEY, GEMINI_API_KEY or DRAMAFLOW_API_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			loaded.Log.Format, _ = cmd.Flags().GetString("log-format")
		}
		l, err := cli.NewLogger(loaded.Log)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		slog.SetDefault(l)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}
