package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	liftmcp "github.com/claude/liftlog/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("LIFTLOG_AUTH_API_KEY"), "API key for state changes (default $LIFTLOG_AUTH_API_KEY)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-mcp", Version)
		return
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-mcp -server <URL> [-api-key KEY]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	client := liftmcp.NewHTTPClient(*serverURL, *apiKey)
	s := liftmcp.New(client, Version, log)

	log.Info("liftlog-mcp serving on stdio", "server", *serverURL, "version", Version)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
