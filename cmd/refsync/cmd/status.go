package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"refsync/internal/application/commands"
	"refsync/internal/domain"
)

var statusOutput = outputTable

var statusCmd = &cobra.Command{
	Use:   "status <application:type:id:collection>",
	Short: "Show item count and last change of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := domain.ParseLibraryRef(args[0])
		if err != nil {
			return err
		}
		st, err := commands.NewCollectionStatusCommand(rt.Adapters, lib).Execute(runtimeContext(cmd))
		if err != nil {
			return err
		}
		return render(stdout(), statusOutput, st, func(t table.Writer) {
			last := dimText("never")
			if !st.LastModified.IsZero() {
				last = st.LastModified.Local().Format("2006-01-02 15:04") + " (" + st.LastItem + ")"
			}
			t.AppendRow(table.Row{"Collection", st.Library.String()})
			t.AppendRow(table.Row{"Items", st.ItemCount})
			t.AppendRow(table.Row{"Last modified", last})
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().VarP(&statusOutput, "output", "o", "output format (table, json, yaml)")
}
