package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/slotfill"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of slotfill",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "slotfill version %s\n", strings.TrimSpace(slotfill.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
