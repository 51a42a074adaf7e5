package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"sift/internal/fetch"
	"sift/internal/logging"
	"sift/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts a Model Context Protocol server over stdin/stdout exposing the
list_candidates, analyze_failures, and get_run tools, so coding agents
can drive the pipeline directly.

The server watches for parent process death and self-terminates when the
client disconnects, to avoid accumulating orphaned processes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	client, err := newRPClient(cfg)
	if err != nil {
		return err
	}
	scheduler, err := newScheduler(cfg)
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	p := &pipeline{
		fetcher:   fetch.NewFetcher(client, cfg.RP.Project),
		scheduler: scheduler,
	}
	srv := mcpserver.NewServer(p, store, cfg.RP.Project)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, cancel)

	logging.New("serve").Info("starting sift MCP server over stdio")
	return srv.Run(ctx, &sdkmcp.StdioTransport{})
}
