package mcp

import "github.com/mark3labs/mcp-go/mcp"

const defaultFilename = "component.jsx"

func lintSourceTool() mcp.Tool {
	return mcp.NewTool("lint_source",
		mcp.WithDescription("Lint JavaScript or TypeScript source text with the configured rules. "+
			"Returns diagnostics with 1-based positions."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Source text of one module."),
		),
		mcp.WithString("filename",
			mcp.Description("File name used to pick the grammar (.js, .jsx, .ts, .tsx) and for "+
				"filename-sensitive rules. Defaults to "+defaultFilename+"."),
		),
	)
}

func lintPathTool() mcp.Tool {
	return mcp.NewTool("lint_path",
		mcp.WithDescription("Lint a file or directory on disk. Directories are walked with the "+
			"configured include and exclude globs."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File or directory, relative to the server root."),
		),
	)
}

func listComponentsTool() mcp.Tool {
	return mcp.NewTool("list_components",
		mcp.WithDescription("Detect React components and summarize their declared, used and "+
			"default props. Pass either source text or a path."),
		mcp.WithString("source",
			mcp.Description("Source text of one module."),
		),
		mcp.WithString("filename",
			mcp.Description("File name for source text. Defaults to "+defaultFilename+"."),
		),
		mcp.WithString("path",
			mcp.Description("File or directory, relative to the server root."),
		),
	)
}

func listRulesTool() mcp.Tool {
	return mcp.NewTool("list_rules",
		mcp.WithDescription("List the available rules with their configured severity and options."),
	)
}
