package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/slotfill/internal/cli"
	"github.com/aretw0/slotfill/pkg/adapters/file"
	"github.com/aretw0/slotfill/pkg/ports"
	"github.com/aretw0/slotfill/pkg/runner"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved sessions",
	Long:  `List, inspect, and remove sessions saved by chat (or kept in redis when configured).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if cfg.RedisAddr == "" && cfg.SessionsDir == "" {
			cfg.SessionsDir, _ = cmd.Flags().GetString("sessions-dir")
		}
		return nil
	},
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := sessionStore().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No saved sessions.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print a session's state and collected fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := sessionStore().Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", args[0], err)
		}
		if full, _ := cmd.Flags().GetBool("full"); full {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "session:  %s\ntemplate: %s\nmode:     %s\n", state.SessionID, state.TemplateID, state.Mode)
		for _, f := range runner.Summary(state) {
			mark := " "
			if f.Confirmed {
				mark = "✓"
			}
			fmt.Fprintf(out, "  %s %s: %s\n", mark, f.Label, f.Value)
		}
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := sessionStore()
		all, _ := cmd.Flags().GetBool("all")
		if all {
			ids, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			args = ids
		}
		if len(args) == 0 {
			return fmt.Errorf("no session ids given")
		}

		failed := 0
		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing %s: %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session %s\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d sessions could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.PersistentFlags().String("sessions-dir", file.DefaultDir, "Directory for saved sessions when redis is not configured")
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
	sessionInspectCmd.Flags().Bool("full", false, "Print the raw state as JSON")
	sessionRmCmd.Flags().Bool("all", false, "Remove every saved session")
}

func sessionStore() ports.StateStore {
	store, _ := cli.NewStore(cfg)
	return store
}
