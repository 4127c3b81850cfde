package template

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/leads"
	"github.com/terrasite/leadform/internal/logger"
)

// Variables holds the data to be injected into template placeholders.
type Variables struct {
	ID          string // Lead ID
	Received    string // Arrival time
	Name        string // Submitter name
	Method      string // Contact method label
	Contact     string // Contact summary line
	Services    string // Formatted service list
	Budget      string // Budget label
	Description string // Project description
}

// Render replaces {{variable}} placeholders in template with actual values.
// Supports the following variables:
// - {{id}} - Lead ID
// - {{received}} - Arrival time
// - {{name}} - Submitter name
// - {{method}} - Contact method label
// - {{contact}} - Contact summary line
// - {{services}} - Bulleted service list
// - {{budget}} - Budget label
// - {{description}} - Project description
func Render(template string, vars Variables) string {
	result := template

	replacements := map[string]string{
		"{{id}}":          vars.ID,
		"{{received}}":    vars.Received,
		"{{name}}":        vars.Name,
		"{{method}}":      vars.Method,
		"{{contact}}":     vars.Contact,
		"{{services}}":    vars.Services,
		"{{budget}}":      vars.Budget,
		"{{description}}": vars.Description,
	}

	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// LoadFromFile loads a template from a file.
// If the file doesn't exist or can't be read, returns an error.
func LoadFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return string(data), nil
}

// GetTemplate returns the body template.
// If customPath is non-empty, loads from that file.
// Otherwise returns the default embedded template.
func GetTemplate(customPath string) (string, error) {
	if customPath == "" {
		return DefaultTemplate, nil
	}
	return LoadFromFile(customPath)
}

// BuildConfig holds configuration for building a notification.
type BuildConfig struct {
	Lead          leads.Lead // Lead to announce
	TemplatePath  string     // Path to custom body template (optional)
	ServiceLabels []string   // Configured service labels, matched by slug
	Location      *time.Location
}

// Message is a rendered notification.
type Message struct {
	Subject string
	Body    string
}

// BuildMessage formats the lead and injects it into the subject and body
// templates.
func BuildMessage(cfg BuildConfig) (Message, error) {
	logger.Debug("Building notification for lead: %s", cfg.Lead.ID)

	if cfg.TemplatePath != "" {
		logger.Debug("Using custom template: %s", cfg.TemplatePath)
	}
	body, err := GetTemplate(cfg.TemplatePath)
	if err != nil {
		logger.Error("Failed to get template: %v", err)
		return Message{}, fmt.Errorf("failed to get template: %w", err)
	}

	vars := VariablesFor(cfg.Lead, cfg.ServiceLabels, cfg.Location)
	msg := Message{
		Subject: Render(DefaultSubject, vars),
		Body:    Render(body, vars),
	}
	logger.Debug("Notification rendered: %d characters", len(msg.Body))
	return msg, nil
}

// VariablesFor formats the fields of a lead for template injection.
func VariablesFor(lead leads.Lead, serviceLabels []string, loc *time.Location) Variables {
	if loc == nil {
		loc = time.Local
	}
	return Variables{
		ID:          lead.ID,
		Received:    lead.Timestamp.In(loc).Format("2006-01-02 15:04 MST"),
		Name:        orDash(lead.Name),
		Method:      orDash(lead.ContactMethod.Label()),
		Contact:     orDash(lead.ContactSummary()),
		Services:    formatServices(lead.Services, serviceLabels),
		Budget:      orDash(form.BudgetLabel(lead.Budget)),
		Description: orDash(lead.Description),
	}
}

// ServiceLabel returns the configured label whose slug is value, or value
// itself when none matches.
func ServiceLabel(value string, labels []string) string {
	for _, label := range labels {
		if slug.Make(label) == value {
			return label
		}
	}
	return value
}

// formatServices renders one bullet per service.
func formatServices(values, labels []string) string {
	if len(values) == 0 {
		return "  - none\n"
	}
	var sb strings.Builder
	for _, v := range values {
		sb.WriteString(fmt.Sprintf("  - %s\n", ServiceLabel(v, labels)))
	}
	return sb.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// TimeAgo formats a duration into a human-readable "time ago" string.
func TimeAgo(d time.Duration) string {
	if d < time.Minute {
		return "just now"
	} else if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1min ago"
		}
		return fmt.Sprintf("%dmin ago", mins)
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1hr ago"
		}
		return fmt.Sprintf("%dhr ago", hours)
	} else {
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
