package cmd

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"refsync/internal/application/commands"
	"refsync/internal/domain"
)

var (
	collectionsOutput = outputTable
	collectionsFind   string
)

var collectionsCmd = &cobra.Command{
	Use:   "collections <application:type:id>",
	Short: "Show the collection tree of a library",
	Long: `Show the collection tree of a library, or search it by name.

Examples:
  refsync collections zotero:user:4711
  refsync collections citavi:project:thesis --find "methods"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := domain.ParseLibraryRef(args[0])
		if err != nil {
			return err
		}
		ctx := runtimeContext(cmd)

		if collectionsFind != "" {
			matches, err := commands.NewFindCollectionsCommand(rt.Adapters, lib, collectionsFind).Execute(ctx)
			if err != nil {
				return err
			}
			return render(stdout(), collectionsOutput, matches, func(t table.Writer) {
				t.AppendHeader(table.Row{"Key", "Path", "Score"})
				for _, m := range matches {
					t.AppendRow(table.Row{m.Key, m.Path, m.Score})
				}
			})
		}

		tree, err := commands.NewListCollectionsCommand(rt.Adapters, lib).Execute(ctx)
		if err != nil {
			return err
		}
		nodes := tree.Flatten()
		return render(stdout(), collectionsOutput, nodes, func(t table.Writer) {
			t.AppendHeader(table.Row{"Key", "Collection"})
			for _, n := range nodes {
				t.AppendRow(table.Row{n.Key, strings.Repeat("  ", n.Depth) + n.Name})
			}
			t.AppendFooter(table.Row{"", dimText(len(nodes), " collections")})
		})
	},
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
	collectionsCmd.Flags().VarP(&collectionsOutput, "output", "o", "output format (table, json, yaml)")
	collectionsCmd.Flags().StringVarP(&collectionsFind, "find", "f", "", "rank collections by fuzzy match on name or path")
}
