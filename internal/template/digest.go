package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/leads"
)

// Digest renders a lead list as markdown, newest first, with each lead's
// age relative to now.
func Digest(list []leads.Lead, serviceLabels []string, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Leads (%d)\n\n", len(list))
	if len(list) == 0 {
		sb.WriteString("_No leads yet._\n")
		return sb.String()
	}

	for i := len(list) - 1; i >= 0; i-- {
		lead := list[i]

		fmt.Fprintf(&sb, "## %s\n\n", orDash(lead.Name))
		fmt.Fprintf(&sb, "- **Contact:** %s\n", orDash(lead.ContactSummary()))
		fmt.Fprintf(&sb, "- **Received:** %s (%s)\n",
			lead.Timestamp.In(now.Location()).Format("2006-01-02 15:04"), TimeAgo(now.Sub(lead.Timestamp)))

		labels := make([]string, 0, len(lead.Services))
		for _, s := range lead.Services {
			labels = append(labels, ServiceLabel(s, serviceLabels))
		}
		fmt.Fprintf(&sb, "- **Services:** %s\n", orDash(strings.Join(labels, ", ")))
		fmt.Fprintf(&sb, "- **Budget:** %s\n", orDash(form.BudgetLabel(lead.Budget)))

		if lead.NotifiedAt != nil {
			fmt.Fprintf(&sb, "- **Notified:** %s\n", lead.NotifiedAt.In(now.Location()).Format("15:04"))
		} else {
			sb.WriteString("- **Notified:** no\n")
		}

		if d := strings.TrimSpace(lead.Description); d != "" {
			sb.WriteString("\n")
			for _, line := range strings.Split(d, "\n") {
				sb.WriteString("> " + line + "\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
