// Package mcp exposes the sync engine as MCP tools. Libraries are
// addressed as "application:type:id[:collection]".
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"refsync/internal/application/commands"
	"refsync/internal/domain"
	"refsync/internal/ports"
)

// RegisterReadTools adds the read-only tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, adapters ports.AdapterResolver, links ports.LinkStore) {
	s.AddTool(pingTool(), pingHandler)
	s.AddTool(listLibrariesTool(), listLibrariesHandler(adapters))
	s.AddTool(listCollectionsTool(), listCollectionsHandler(adapters))
	s.AddTool(collectionStatusTool(), collectionStatusHandler(adapters))
	s.AddTool(getLinkTool(), getLinkHandler(links))
}

// --- ping ---

func pingTool() mcp.Tool {
	return mcp.NewTool("ping",
		mcp.WithDescription("Health check, returns pong"),
	)
}

func pingHandler(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong"), nil
}

// --- list_libraries ---

func listLibrariesTool() mcp.Tool {
	return mcp.NewTool("list_libraries",
		mcp.WithDescription("List the reference libraries of every configured application, with the reference to use in other tools."),
		mcp.WithString("application",
			mcp.Description("Only list libraries of this application (e.g. zotero, citavi)"),
		),
	)
}

func listLibrariesHandler(adapters ports.AdapterResolver) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		libs, err := commands.NewListLibrariesCommand(adapters, req.GetString("application", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(libs, formatLibrary)
	}
}

// --- list_collections ---

func listCollectionsTool() mcp.Tool {
	return mcp.NewTool("list_collections",
		mcp.WithDescription("Show the collection tree of a library."),
		mcp.WithString("library",
			mcp.Description("Library reference application:type:id (e.g. zotero:user:123)"),
			mcp.Required(),
		),
	)
}

func listCollectionsHandler(adapters ports.AdapterResolver) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lib, err := libraryArg(req, "library")
		if err != nil {
			return toolError(err)
		}
		lib.CollectionKey = ""

		tree, err := commands.NewListCollectionsCommand(adapters, lib).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if tree.Len() == 0 {
			return mcp.NewToolResultText("No collections."), nil
		}
		var sb strings.Builder
		tree.Walk(func(c domain.Collection, depth int) {
			fmt.Fprintf(&sb, "%s%s  %s\n", strings.Repeat("  ", depth), c.Key, c.Name)
		})
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- collection_status ---

func collectionStatusTool() mcp.Tool {
	return mcp.NewTool("collection_status",
		mcp.WithDescription("Count the items of a collection and report the most recently modified one."),
		mcp.WithString("collection",
			mcp.Description("Collection reference application:type:id:collection (e.g. zotero:user:123:ABCD1234)"),
			mcp.Required(),
		),
	)
}

func collectionStatusHandler(adapters ports.AdapterResolver) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lib, err := libraryArg(req, "collection")
		if err != nil {
			return toolError(err)
		}
		st, err := commands.NewCollectionStatusCommand(adapters, lib).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if st.ItemCount == 0 {
			return mcp.NewToolResultText("0 items."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d items, last modified %s (%s)",
			st.ItemCount, st.LastModified.UTC().Format(time.RFC3339), st.LastItem)), nil
	}
}

// --- get_link ---

func getLinkTool() mcp.Tool {
	return mcp.NewTool("get_link",
		mcp.WithDescription("Look up the target item a source item was copied to."),
		mcp.WithString("source_library",
			mcp.Description("Source library URI (e.g. zotero://user/123)"),
			mcp.Required(),
		),
		mcp.WithString("source_key",
			mcp.Description("Item key in the source library"),
			mcp.Required(),
		),
		mcp.WithString("target_library",
			mcp.Description("Target library URI (e.g. citavi://project/abc)"),
			mcp.Required(),
		),
	)
}

func getLinkHandler(links ports.LinkStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := commands.NewGetLinkCommand(links,
			req.GetString("source_library", ""),
			req.GetString("source_key", ""),
			req.GetString("target_library", ""),
		).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if !res.Found {
			return mcp.NewToolResultText("No link found."), nil
		}
		return mcp.NewToolResultText(res.TargetKey), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func libraryArg(req mcp.CallToolRequest, name string) (domain.LibraryRef, error) {
	raw := req.GetString(name, "")
	if raw == "" {
		return domain.LibraryRef{}, fmt.Errorf("%s is required", name)
	}
	return domain.ParseLibraryRef(raw)
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatLibrary(l domain.Library) string {
	return fmt.Sprintf("%s  %s", l.Ref(), l.Name)
}
