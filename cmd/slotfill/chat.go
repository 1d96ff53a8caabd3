package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/internal/cli"
	"github.com/aretw0/slotfill/internal/presentation/tui"
	"github.com/aretw0/slotfill/pkg/adapters/file"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/runner"
)

var chatCmd = &cobra.Command{
	Use:   "chat <template>",
	Short: "Fill a template interactively in the terminal",
	Long: `Runs a conversation over stdin/stdout. The template is a file path or a template id
from the templates directory. With --session the conversation is saved after every turn and
resumed when the same id is used again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")
		if cfg.RedisAddr == "" && cfg.SessionsDir == "" {
			cfg.SessionsDir, _ = cmd.Flags().GetString("sessions-dir")
		}
		return runChat(cmd.Context(), args[0], sessionID, jsonMode)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session id to create or resume")
	chatCmd.Flags().Bool("json", false, "Exchange JSON lines instead of text")
	chatCmd.Flags().String("sessions-dir", file.DefaultDir, "Directory for saved sessions when redis is not configured")
}

func runChat(ctx context.Context, ref, sessionID string, jsonMode bool) error {
	tpl, err := cli.ResolveTemplate(ctx, ref, cfg.TemplatesDir)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", ref, err)
	}
	eng, err := cli.NewEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	store, _ := cli.NewStore(cfg)

	var state *domain.State
	if sessionID != "" {
		state, err = store.Load(ctx, sessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			state = nil
		case err != nil:
			return fmt.Errorf("failed to load session %s: %w", sessionID, err)
		case state.TemplateID != "" && state.TemplateID != tpl.ID:
			return fmt.Errorf("session %s belongs to template %s", sessionID, state.TemplateID)
		}
	}

	var handler runner.IOHandler
	if jsonMode {
		handler = runner.NewJSONHandler(os.Stdin, os.Stdout)
	} else {
		var opts []runner.TextHandlerOption
		if tui.IsInteractive(os.Stdout) {
			tui.PrintBanner(os.Stdout, strings.TrimSpace(slotfill.Version))
			opts = append(opts, runner.WithTextHandlerRenderer(tui.NewRenderer(tui.Width(os.Stdout))))
		}
		handler = runner.NewTextHandler(os.Stdin, os.Stdout, opts...)
	}

	r := runner.NewRunner(
		runner.WithInputHandler(handler),
		runner.WithStore(store),
		runner.WithLogger(logger),
		runner.WithSessionID(sessionID),
		runner.WithMaxInputSize(cfg.MaxInputSize),
	)
	final, err := r.Run(ctx, eng, tpl, state)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if final != nil && !final.Terminal() && sessionID != "" {
		_ = handler.SystemOutput(ctx, fmt.Sprintf("Session %s saved. Resume with --session %s", sessionID, sessionID))
	}
	return nil
}
