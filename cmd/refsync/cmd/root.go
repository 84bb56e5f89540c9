package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"refsync/internal/bootstrap"
	"refsync/internal/config"
)

var (
	cfgFile string
	v       = viper.New()
	rt      *bootstrap.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "refsync",
	Short: "Sync collections and references between reference managers",
	Long: `refsync copies collections and their references between Zotero and
Citavi libraries, translating every item through a common schema and
remembering which source item became which target item.

Libraries are addressed as application:type:id, collections as
application:type:id:collection (e.g. zotero:user:4711:ABCD2345).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "translate" {
			return nil
		}
		cfg, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		rt, err = bootstrap.Open(cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if rt == nil {
			return nil
		}
		return rt.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorText(err.Error()))
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.refsync.yaml)")
	flags.String("links", "", "path to the link database")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "auto", "log format (auto, console, json)")

	for key, flag := range map[string]string{
		"links.path": "links",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// runtimeContext returns the command context carrying the logger
func runtimeContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return rt.Context(ctx)
}
