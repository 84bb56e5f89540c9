package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"refsync/internal/adapters/tui"
	"refsync/internal/bootstrap"
	"refsync/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "config file (default ~/.refsync.yaml)")
	flag.Parse()

	cfg, err := config.Load(viper.New(), *configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// The alt screen owns the terminal
	if cfg.Log.Output == "" || cfg.Log.Output == "stderr" || cfg.Log.Output == "stdout" {
		cfg.Log.Output = "discard"
	}

	rt, err := bootstrap.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	app := tui.NewApp(rt.Context(context.Background()), rt.Adapters, rt.Links, rt.Diffs)

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
