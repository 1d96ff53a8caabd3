package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/slotfill/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path...]",
	Short: "Check templates for structural errors",
	Long: `Compiles each template file and reports every structural problem found: missing
prompt keys, wrong escalation lengths, unknown kinds, dangling or shared subs.
Directories are searched for .yaml, .yml and .json files. Defaults to the templates directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{cfg.TemplatesDir}
		}
		reports, err := cli.ValidatePaths(args...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, rep := range reports {
			switch {
			case rep.Valid():
				fmt.Fprintf(out, "ok    %s (%s)\n", rep.Path, rep.ID)
			case rep.Err != nil:
				failed++
				fmt.Fprintf(out, "FAIL  %s: %v\n", rep.Path, rep.Err)
			default:
				failed++
				fmt.Fprintf(out, "FAIL  %s\n", rep.Path)
				for _, issue := range rep.Issues {
					fmt.Fprintf(out, "      %s\n", issue)
				}
			}
		}
		if len(reports) == 0 {
			return fmt.Errorf("no templates found")
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d templates invalid", failed, len(reports))
		}
		fmt.Fprintf(out, "%d templates valid\n", len(reports))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
