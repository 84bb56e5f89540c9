package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"refsync/internal/adapters/desktop"
	"refsync/internal/adapters/s3export"
	"refsync/internal/application"
	"refsync/internal/application/commands"
	"refsync/internal/config"
	"refsync/internal/domain"
)

var (
	linksOutput  = outputTable
	linksCopy    bool
	linksOpen    bool
	linksFilter  domain.LinkFilter
	exportBucket string
	exportPrefix string
	exportRegion string
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Inspect and maintain source to target item links",
	Long: `Links record which target item a source item was copied to. Library
URIs have the form application://type/id (e.g. zotero://user/4711).`,
}

var linksGetCmd = &cobra.Command{
	Use:   "get <source-lib-uri> <source-key> <target-lib-uri>",
	Short: "Print the target key linked to a source item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := commands.NewGetLinkCommand(rt.Links, args[0], args[1], args[2]).Execute(runtimeContext(cmd))
		if err != nil {
			return err
		}
		if !res.Found {
			fmt.Println(alertText("No link found"))
			return nil
		}
		fmt.Println(res.TargetKey)
		if linksCopy {
			if err := clipboard.WriteAll(res.TargetKey); err != nil {
				return fmt.Errorf("copy to clipboard: %w", err)
			}
			fmt.Println(dimText("copied to clipboard"))
		}
		if linksOpen {
			lib, err := domain.ParseLibraryURI(args[2])
			if err != nil {
				return err
			}
			return desktop.NewOpener().Open(lib, res.TargetKey)
		}
		return nil
	},
}

var linksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List links, optionally filtered by library or key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := commands.NewListLinksCommand(rt.Links, linksFilter).Execute(runtimeContext(cmd))
		if err != nil {
			return err
		}
		if links == nil {
			links = []domain.Link{}
		}
		return render(stdout(), linksOutput, links, func(t table.Writer) {
			t.AppendHeader(table.Row{"Source library", "Source key", "Target library", "Target key", "Created"})
			for _, l := range links {
				t.AppendRow(table.Row{l.SourceLibURI, l.SourceKey, l.TargetLibURI, l.TargetKey, l.CreatedAt.Local().Format("2006-01-02 15:04")})
			}
		})
	},
}

var linksRemoveCmd = &cobra.Command{
	Use:   "remove <source-lib-uri> <source-key> <target-lib-uri> [target-key]",
	Short: "Remove a link",
	Long: `Remove a link. Without a target key every link of the source item
into the target library is removed.`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		link := domain.Link{SourceLibURI: args[0], SourceKey: args[1], TargetLibURI: args[2]}
		if len(args) == 4 {
			link.TargetKey = args[3]
		}
		if err := commands.NewRemoveLinkCommand(rt.Links, link).Execute(runtimeContext(cmd)); err != nil {
			return err
		}
		fmt.Println(successText("Link removed"))
		return nil
	},
}

var linksExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload a YAML snapshot of the links to S3",
	Long: `Upload every link, or the filtered ones, to S3 as a YAML document.
Bucket, prefix and region default to the export.* config keys; AWS
credentials come from the default credential chain.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := runtimeContext(cmd)
		cfg := rt.Config.Export
		if cmd.Flags().Changed("bucket") {
			cfg.Bucket = exportBucket
		}
		if cmd.Flags().Changed("prefix") {
			cfg.Prefix = exportPrefix
		}
		if cmd.Flags().Changed("region") {
			cfg.Region = exportRegion
		}

		key, n, err := exportLinks(ctx, cfg, func(ctx context.Context, region string) (s3export.Uploader, error) {
			return s3export.NewClient(ctx, region)
		})
		if err != nil {
			return err
		}
		fmt.Println(successText(fmt.Sprintf("Exported %d links to s3://%s/%s", n, cfg.Bucket, key)))
		return nil
	},
}

var linksImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore links from a YAML snapshot",
	Long: `Restore links from a YAML document written by "links export". Use "-"
to read from stdin. The links are stored in a single transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		n, err := importLinks(runtimeContext(cmd), in)
		if err != nil {
			return err
		}
		fmt.Println(successText(fmt.Sprintf("Imported %d links", n)))
		return nil
	},
}

// exportLinks checks the destination before any AWS configuration is
// loaded, then uploads the filtered links
func exportLinks(ctx context.Context, cfg config.ExportConfig, newClient func(context.Context, string) (s3export.Uploader, error)) (string, int, error) {
	if err := application.ValidateRequired("bucket", cfg.Bucket); err != nil {
		return "", 0, err
	}
	links, err := commands.NewListLinksCommand(rt.Links, linksFilter).Execute(ctx)
	if err != nil {
		return "", 0, err
	}
	client, err := newClient(ctx, cfg.Region)
	if err != nil {
		return "", 0, err
	}
	key, err := s3export.New(client, cfg.Bucket, cfg.Prefix).Export(ctx, links)
	if err != nil {
		return "", 0, err
	}
	return key, len(links), nil
}

func importLinks(ctx context.Context, in io.Reader) (int, error) {
	doc, err := s3export.Decode(in)
	if err != nil {
		return 0, err
	}
	return commands.NewImportLinksCommand(rt.Links, doc.Links).Execute(ctx)
}

func init() {
	rootCmd.AddCommand(linksCmd)
	linksCmd.AddCommand(linksGetCmd, linksListCmd, linksRemoveCmd, linksExportCmd, linksImportCmd)

	linksGetCmd.Flags().BoolVarP(&linksCopy, "copy", "c", false, "copy the target key to the clipboard")
	linksGetCmd.Flags().BoolVar(&linksOpen, "open", false, "show the target item in its application")

	for _, c := range []*cobra.Command{linksListCmd, linksExportCmd} {
		c.Flags().StringVar(&linksFilter.SourceLibURI, "source", "", "only links from this library URI")
		c.Flags().StringVar(&linksFilter.TargetLibURI, "target", "", "only links into this library URI")
		c.Flags().StringVar(&linksFilter.SourceKey, "source-key", "", "only links of this source item")
	}
	linksListCmd.Flags().VarP(&linksOutput, "output", "o", "output format (table, json, yaml)")

	linksExportCmd.Flags().StringVar(&exportBucket, "bucket", "", "S3 bucket (default export.bucket)")
	linksExportCmd.Flags().StringVar(&exportPrefix, "prefix", "", "object key prefix (default export.prefix)")
	linksExportCmd.Flags().StringVar(&exportRegion, "region", "", "AWS region (default export.region)")
}
