package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"refsync/internal/application/commands"
	"refsync/internal/domain"
)

var (
	translateFrom   string
	translateTo     string
	translateOutput = outputJSON
)

var translateCmd = &cobra.Command{
	Use:   "translate [file]",
	Short: "Translate one item between schemas",
	Long: `Translate a JSON item between the zotero, citavi and global schemas
and print the result. Reads standard input when no file is given.
Merge conflicts are reported as warnings on stderr.

Examples:
  refsync translate --from zotero --to citavi item.json
  cat item.json | refsync translate --from zotero --to global -o yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		var item domain.Item
		if err := json.NewDecoder(in).Decode(&item); err != nil {
			return fmt.Errorf("decode item: %w", err)
		}

		res, err := commands.NewTranslateCommand(translateFrom, translateTo, item).Execute(context.Background())
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			fmt.Fprintln(os.Stderr, alertText("warning: "+w.String()))
		}
		if translateOutput == outputTable {
			translateOutput = outputJSON
		}
		return render(stdout(), translateOutput, res.Output, nil)
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().StringVar(&translateFrom, "from", commands.Global, "schema of the input (zotero, citavi, global)")
	translateCmd.Flags().StringVar(&translateTo, "to", commands.Global, "schema of the output (zotero, citavi, global)")
	translateCmd.Flags().VarP(&translateOutput, "output", "o", "output format (json, yaml)")
}
