package onboarding

import (
	"context"
	"fmt"
	"strings"
)

// textReport builds the consolidated onboarding health report. Each section
// queries independently; a missing view degrades that section to a
// placeholder note rather than failing the report.
func (d *Domain) textReport(ctx context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("\n🚀 ONBOARDING HEALTH REPORT\n")
	b.WriteString("===========================\n\n")

	b.WriteString("1. FUNNEL CONVERSION\n")
	funnel, err := d.wh.Query(ctx, fmt.Sprintf("SELECT * FROM `%s` ORDER BY step_order", d.funnel))
	if err != nil {
		d.log.Warn().Err(err).Msg("funnel view unavailable for report")
		fmt.Fprintf(&b, "   (no data: %s is not available yet)\n", d.funnel)
	} else {
		for _, row := range funnel.Rows {
			fmt.Fprintf(&b, "   %-20s %6d in  %6d out  %5.1f%%\n",
				row.Str("step"), row.Int("entered"), row.Int("completed"), row.Float("conversion_pct"))
		}
		if funnel.Len() == 0 {
			b.WriteString("   (funnel view is empty)\n")
		}
	}

	b.WriteString("\n2. TOP DROPOFF POINTS\n")
	dropoff, err := d.wh.Query(ctx, fmt.Sprintf("SELECT * FROM `%s` ORDER BY dropoff_pct DESC LIMIT 3", d.dropoff))
	if err != nil {
		d.log.Warn().Err(err).Msg("dropoff view unavailable for report")
		fmt.Fprintf(&b, "   (no data: %s is not available yet)\n", d.dropoff)
	} else {
		for i, row := range dropoff.Rows {
			fmt.Fprintf(&b, "   #%d %-20s %5.1f%% dropoff  (%d users)\n",
				i+1, row.Str("step"), row.Float("dropoff_pct"), row.Int("abandoned_users"))
		}
		if dropoff.Len() == 0 {
			b.WriteString("   (dropoff view is empty)\n")
		}
	}

	return b.String(), nil
}
