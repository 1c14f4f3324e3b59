package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/image-pad-mcp/internal/config"
	"github.com/ironsheep/image-pad-mcp/internal/logging"
	"github.com/ironsheep/image-pad-mcp/internal/object"
	"github.com/ironsheep/image-pad-mcp/internal/server"
	"github.com/ironsheep/image-pad-mcp/internal/workerpool"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-pad-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("image-pad-mcp - MCP server for edge-replicating image padding")
			fmt.Println()
			fmt.Println("Usage: image-pad-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  IMAGE_PAD_LOG_LEVEL=debug       debug, info, warn or error (default info)")
			fmt.Println("  IMAGE_PAD_LOG_JSON=true         Log JSON to stderr instead of text")
			fmt.Println("  IMAGE_PAD_LOG_FILE=path         Also log to a rotated file")
			fmt.Println("  IMAGE_PAD_WORKERS=n             Worker pool size (default: one per CPU)")
			fmt.Println("  IMAGE_PAD_WARNINGS=false        Silence object lifecycle warnings")
			fmt.Println("  IMAGE_PAD_DEBUG_OBJECTS=true    Debug-log pad filter updates")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	os.Exit(run(os.Stdin, os.Stdout))
}

// run serves MCP on in/out until in is exhausted and returns the process exit
// code. Deferred cleanup, including the final log flush, happens before main
// exits.
func run(in io.Reader, out io.Writer) int {
	cfg, err := config.Load("")
	if err != nil {
		// Logger isn't initialized yet; stdout is for MCP protocol
		fmt.Fprintf(os.Stderr, "image-pad-mcp: %v\n", err)
		return 1
	}

	logger := logging.New(cfg.LoggingOptions())
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	object.SetGlobalWarningDisplay(cfg.WarningDisplay)

	logger.Debug("starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.Int("workers", cfg.Workers))

	pool := workerpool.New(cfg.Workers)
	defer pool.Close()

	srv := server.New(server.Options{
		Pool:         pool,
		Workers:      cfg.Workers,
		DebugObjects: cfg.DebugObjects,
	})
	defer srv.Close()

	if err := srv.Serve(in, out); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}
