package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/slotfill/internal/cli"
	"github.com/aretw0/slotfill/internal/presentation/graph"
	"github.com/aretw0/slotfill/pkg/adapters/file"
)

var graphCmd = &cobra.Command{
	Use:   "graph <template>",
	Short: "Export the template as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the template's asking order. With --session
the fields already filled, confirmed and currently asked are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := cli.ResolveTemplate(cmd.Context(), args[0], cfg.TemplatesDir)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			if cfg.RedisAddr == "" && cfg.SessionsDir == "" {
				cfg.SessionsDir, _ = cmd.Flags().GetString("sessions-dir")
			}
			store, _ := cli.NewStore(cfg)
			state, err := store.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", sessionID, err)
			}
			overlay = graph.OverlayOf(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(tpl.Plan(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the progress of a saved session")
	graphCmd.Flags().String("sessions-dir", file.DefaultDir, "Directory for saved sessions when redis is not configured")
}
