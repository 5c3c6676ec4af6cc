package analysis

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Static prompt templates returned verbatim to the calling agent.
var prompts = map[string]struct {
	description string
	text        string
}{
	"explore": {
		description: "Explore a dataset - list tables and show key schemas",
		text: `Explore the dataset and tell me:
1. What tables are available
2. Key tables and their schemas
3. Relationships between tables (if visible)
4. Suggested queries to start with`,
	},
	"profile": {
		description: "Profile a table - data quality summary",
		text: `Profile this table and tell me:
1. Row count and column count
2. Data types for each column
3. Null percentages
4. Unique value counts
5. Any data quality issues spotted`,
	},
	"quick_stats": {
		description: "Quick statistics on a table or query result",
		text: `Give me quick stats:
1. Total rows
2. Key aggregations (sum, avg, min, max for numeric columns)
3. Date range (if date columns exist)
4. Top categories (if categorical columns exist)`,
	},
}

func (d *Domain) registerPrompts(s *server.MCPServer) {
	for name, p := range prompts {
		text := p.text
		s.AddPrompt(
			mcp.NewPrompt(name, mcp.WithPromptDescription(p.description)),
			func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
				return mcp.NewGetPromptResult("", []mcp.PromptMessage{
					mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
				}), nil
			},
		)
	}
}
