package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"refsync/internal/adapters/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sync workflow over HTTP",
	Long: `Serve libraries, collections, links and the sync workflow as a JSON
API. Listens on server.addr unless --addr is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := rt.Config.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(runtimeContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := httpapi.New(httpapi.Deps{
			Adapters: rt.Adapters,
			Links:    rt.Links,
			Diffs:    rt.Diffs,
		}, &rt.Logger)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
}
