package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Sections lists the top-level keys of the content document.
var Sections = []string{"meta", "hero", "company", "support", "developer", "sales", "services", "banners", "products", "testimonials"}

// getContentTool defines the get_content MCP tool.
var getContentTool = mcp.NewTool("get_content",
	mcp.WithDescription("Get the complete site content document as JSON."),
)

// getSectionTool defines the get_section MCP tool.
var getSectionTool = mcp.NewTool("get_section",
	mcp.WithDescription("Get one section of the site content document as JSON."),
	mcp.WithString("section",
		mcp.Required(),
		mcp.Description("Top-level section of the content document"),
		mcp.Enum(Sections...),
	),
)

// listProductsTool defines the list_products MCP tool.
var listProductsTool = mcp.NewTool("list_products",
	mcp.WithDescription("List the products of the catalog with their download and online links."),
	mcp.WithBoolean("visible_only",
		mcp.Description("Only list products shown on the public site (default true)"),
	),
)

// checkPublishableTool defines the check_publishable MCP tool.
var checkPublishableTool = mcp.NewTool("check_publishable",
	mcp.WithDescription("Report whether the content has enough data to be shown publicly, and what is missing."),
)
