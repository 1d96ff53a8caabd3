package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/internal/cli"
	"github.com/aretw0/slotfill/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes slotfill sessions as MCP tools so agents can drive a form-filling
conversation on behalf of a user.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		baseURL, _ := cmd.Flags().GetString("base-url")
		return runMCP(transport, addr, baseURL)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().String("addr", ":8081", "Listen address for the sse transport")
	mcpCmd.Flags().String("base-url", "", "Public base URL announced by the sse transport")
}

func runMCP(transport, addr, baseURL string) error {
	templates, err := cli.OpenTemplates(cfg.TemplatesDir)
	if err != nil {
		return err
	}
	eng, err := cli.NewEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(eng, templates,
		mcp.WithSessions(cli.NewSessions(cfg, logger)),
		mcp.WithLogger(logger),
		mcp.WithVersion(strings.TrimSpace(slotfill.Version)),
	)

	switch transport {
	case "stdio":
		// Stdout carries JSON-RPC.
		log.SetOutput(os.Stderr)
		logger.Info("starting slotfill MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		if baseURL == "" {
			baseURL = "http://localhost" + addr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.ServeSSE(ctx, addr, baseURL); err != nil {
			return err
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
	}
}
