package forecast

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scqaTemplate is the analyst persona prompt for the narrative report. The
// forecast_mrr tool appends the live data block to it; the prompt of the same
// name returns the template alone.
const scqaTemplate = `You are a senior revenue analyst. Write this week's MRR forecast report
for the executive team using the SCQA structure:

SITUATION  - Where MRR stands today: current level, week-over-week change,
             and trajectory toward the $2,000,000 end-of-cycle target.
COMPLICATION - What threatens the trajectory: win rate, at-risk deals,
             pipeline movement. Use the feature importance to say which
             lever matters most right now.
QUESTION   - The single decision the team must make this week.
ANSWER     - Concrete recommendation: which deals to win, which to save,
             and the expected MRR impact of each action.

Rules:
- Every number must come from the DATA section below. Never invent figures.
- Lead with the forecast, not the methodology.
- Keep it under 400 words. Executives skim.
- End with the three focus areas ranked by expected MRR impact.`

var prompts = map[string]struct {
	description string
	text        string
}{
	"forecast_mrr": {
		description: "SCQA analyst template for the weekly MRR forecast narrative",
		text:        scqaTemplate,
	},
	"forecast_drivers": {
		description: "Explain what is driving the MRR forecast",
		text: `Using the forecast_trend tool and the forecast://feature_importance
resource, explain what is driving MRR right now:
1. Which lever carries the most model importance and why that is plausible
2. How the last 4 weeks of deltas shaped the trend
3. Which single metric, if improved, would move the forecast most`,
	},
	"forecast_actions": {
		description: "Turn the forecast into a ranked action list",
		text: `Generate the weekly report with forecast_report, then turn it into
a ranked action list:
1. For each WIN deal: owner question to ask, expected close impact on MRR
2. For each SAVE deal: the retention play and MRR at stake
3. One pipeline action that improves next week's trend`,
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
