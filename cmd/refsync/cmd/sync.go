package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"refsync/internal/application/commands"
	"refsync/internal/domain"
)

var syncYes bool

var syncCmd = &cobra.Command{
	Use:   "sync <source> <target>",
	Short: "Sync a source collection into a target collection",
	Long: `Sync the subcollections and references of a source collection into a
target collection. Every step that changes the target asks for
confirmation first; --yes answers all of them.

Collections are addressed as application:type:id:collection.

Examples:
  refsync sync zotero:user:4711:ABCD2345 citavi:project:thesis:7
  refsync sync zotero:group:99:XYZ citavi:project:thesis:7 --yes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := domain.ParseLibraryRef(args[0])
		if err != nil {
			return err
		}
		target, err := domain.ParseLibraryRef(args[1])
		if err != nil {
			return err
		}

		req := commands.SyncRequest{Source: source, Target: target}
		return runSync(cmd, req, bufio.NewReader(os.Stdin), stdout())
	},
}

// runSync drives the workflow until a terminal response, asking in
// before every confirmation unless --yes is set
func runSync(cmd *cobra.Command, req commands.SyncRequest, in *bufio.Reader, out io.Writer) error {
	ctx := runtimeContext(cmd)
	for {
		var bar *progressbar.ProgressBar
		sc := commands.NewSyncCommand(rt.Adapters, rt.Links, rt.Diffs, req)
		sc.Progress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Copying items"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(30),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}

		resp, err := sc.Execute(ctx)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return err
		}

		if resp.IsTerminal() {
			printResponse(out, resp)
			if resp.ResponseAction == domain.ResponseError {
				return fmt.Errorf("sync failed")
			}
			return nil
		}

		ok, err := confirm(in, out, resp.ResponseData)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, alertText("Sync cancelled"))
			return nil
		}
		req.Action = resp.Action
	}
}

func confirm(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	if syncYes {
		fmt.Fprintf(out, "%s %s\n", promptText(question), dimText("yes"))
		return true, nil
	}
	fmt.Fprintf(out, "%s [y/N] ", promptText(question))
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func printResponse(out io.Writer, resp *domain.SyncResponse) {
	switch resp.ResponseAction {
	case domain.ResponseError:
		fmt.Fprintln(out, errorText("Error: "+resp.ResponseData))
	case domain.ResponseAlert:
		fmt.Fprintln(out, alertText(resp.ResponseData))
	default:
		fmt.Fprintln(out, successText(resp.ResponseData))
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "confirm every step")
}
