package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"refsync/internal/application/commands"
	"refsync/internal/domain"
)

var librariesOutput = outputTable

var librariesCmd = &cobra.Command{
	Use:   "libraries [application]",
	Short: "List the libraries of every configured application",
	Long: `List libraries across all configured applications, or only those of
one application.

Examples:
  refsync libraries
  refsync libraries zotero --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := ""
		if len(args) == 1 {
			app = args[0]
		}
		libs, err := commands.NewListLibrariesCommand(rt.Adapters, app).Execute(runtimeContext(cmd))
		if err != nil {
			return err
		}
		if libs == nil {
			libs = []domain.Library{}
		}

		return render(stdout(), librariesOutput, libs, func(t table.Writer) {
			t.AppendHeader(table.Row{"Reference", "Name", "Application", "Type"})
			for _, l := range libs {
				t.AppendRow(table.Row{l.Ref().String(), l.Name, l.Application, l.Type})
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(librariesCmd)
	librariesCmd.Flags().VarP(&librariesOutput, "output", "o", "output format (table, json, yaml)")
}
