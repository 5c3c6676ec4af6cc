package onboarding

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var prompts = map[string]struct {
	description string
	text        string
}{
	"onboarding_report": {
		description: "Summarize onboarding funnel health",
		text: `Generate the onboarding report with onboarding_report, then summarize:
1. Overall conversion from first step to completion
2. The single worst dropoff step and its likely cause
3. One experiment to run this week to improve it`,
	},
	"onboarding_dropoff": {
		description: "Diagnose a specific dropoff step",
		text: `Use onboarding_dropoff for the step in question and diagnose:
1. How many users abandon there and what share of total dropoff that is
2. The top exit reason, if recorded
3. Whether the step is worse than the funnel average`,
	},
	"onboarding_compare": {
		description: "Compare two onboarding cohorts",
		text: `Use onboarding_cohort to compare the two cohorts and report:
1. Conversion rate of each cohort
2. The gap in percentage points and which cohort leads
3. What changed between the cohorts that could explain the gap`,
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
