package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"refsync/internal/application"
	"refsync/internal/application/commands"
	"refsync/internal/domain"
	"refsync/internal/ports"
)

// RegisterWriteTools adds the tools that change libraries or links.
func RegisterWriteTools(s *server.MCPServer, adapters ports.AdapterResolver, links ports.LinkStore, diffs *application.DiffCache) {
	s.AddTool(syncTool(), syncHandler(adapters, links, diffs))
	s.AddTool(removeLinkTool(), removeLinkHandler(links))
}

// --- sync ---

func syncTool() mcp.Tool {
	return mcp.NewTool("sync",
		mcp.WithDescription("Run one step of a collection sync. Start without an action. "+
			"When the result asks for confirmation, call again with the returned action to continue."),
		mcp.WithString("source",
			mcp.Description("Source collection application:type:id:collection (e.g. zotero:user:123:ABCD1234)"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Target collection application:type:id:collection"),
			mcp.Required(),
		),
		mcp.WithString("action",
			mcp.Description("Workflow action returned by the previous call"),
		),
	)
}

func syncHandler(adapters ports.AdapterResolver, links ports.LinkStore, diffs *application.DiffCache) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := libraryArg(req, "source")
		if err != nil {
			return toolError(err)
		}
		target, err := libraryArg(req, "target")
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewSyncCommand(adapters, links, diffs, commands.SyncRequest{
			Source: source,
			Target: target,
			Action: domain.Action(req.GetString("action", "")),
		})
		resp, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatSyncResponse(resp)), nil
	}
}

func formatSyncResponse(resp *domain.SyncResponse) string {
	if resp.ResponseAction == domain.ResponseConfirm {
		return fmt.Sprintf("confirm: %s\nnext action: %s", resp.ResponseData, resp.Action)
	}
	return fmt.Sprintf("%s: %s", resp.ResponseAction, resp.ResponseData)
}

// --- remove_link ---

func removeLinkTool() mcp.Tool {
	return mcp.NewTool("remove_link",
		mcp.WithDescription("Forget that a source item was copied to a target library, so the next sync copies it again."),
		mcp.WithString("source_library",
			mcp.Description("Source library URI (e.g. zotero://user/123)"),
			mcp.Required(),
		),
		mcp.WithString("source_key",
			mcp.Description("Item key in the source library"),
			mcp.Required(),
		),
		mcp.WithString("target_library",
			mcp.Description("Target library URI"),
			mcp.Required(),
		),
		mcp.WithString("target_key",
			mcp.Description("Only remove the link to this target key"),
		),
	)
}

func removeLinkHandler(links ports.LinkStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		link := domain.Link{
			SourceLibURI: req.GetString("source_library", ""),
			SourceKey:    req.GetString("source_key", ""),
			TargetLibURI: req.GetString("target_library", ""),
			TargetKey:    req.GetString("target_key", ""),
		}
		if err := commands.NewRemoveLinkCommand(links, link).Execute(ctx); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Removed link %s %s -> %s", link.SourceLibURI, link.SourceKey, link.TargetLibURI)), nil
	}
}
