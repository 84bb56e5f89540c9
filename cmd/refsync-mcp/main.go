package main

import (
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/viper"

	mcpadapter "refsync/internal/adapters/mcp"
	"refsync/internal/bootstrap"
	"refsync/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "config file (default ~/.refsync.yaml)")
	flag.Parse()

	cfg, err := config.Load(viper.New(), *configFlag)
	if err != nil {
		log.Fatalf("refsync-mcp: %v", err)
	}
	// stdout carries the MCP protocol
	if cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}

	rt, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatalf("refsync-mcp: %v", err)
	}
	defer rt.Close()

	mcpServer := server.NewMCPServer(
		"refsync-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpadapter.RegisterReadTools(mcpServer, rt.Adapters, rt.Links)
	mcpadapter.RegisterWriteTools(mcpServer, rt.Adapters, rt.Links, rt.Diffs)

	if err := server.ServeStdio(mcpServer); err != nil {
		rt.Logger.Error().Err(err).Msg("mcp server stopped")
	}
}
