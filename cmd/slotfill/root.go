package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/slotfill/internal/config"
	"github.com/aretw0/slotfill/internal/logging"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "slotfill",
	Short: "Slotfill is a mixed-initiative form-filling dialogue engine",
	Long: `Slotfill collects structured data (dates, names, addresses, contacts) through a
conversation driven by a declarative template. Users may answer several fields at once,
confirm or correct values, and are re-prompted with escalating messages.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFiles, _ := cmd.Flags().GetStringSlice("env")
		loaded, err := config.Load(envFiles...)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("templates") {
			loaded.TemplatesDir, _ = cmd.Flags().GetString("templates")
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		cfg = loaded
		logger = logging.New(logging.ParseLevel(cfg.LogLevel))
		slog.SetDefault(logger)
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
	rootCmd.PersistentFlags().StringSlice("env", nil, "Dotenv files to load (default .env)")
	rootCmd.PersistentFlags().String("templates", ".", "Directory containing the templates")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}
