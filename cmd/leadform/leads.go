package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terrasite/leadform/internal/intake"
	"github.com/terrasite/leadform/internal/submit"
	"github.com/terrasite/leadform/internal/template"
)

var leadsFlags struct {
	adminURL string
	adminKey string
	json     bool
	width    int
}

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List the requests stored by an intake server",
	Long: `List the requests stored by a running intake server, newest first.

Each request shows its contact, age, services, budget and whether the
notification was sent. Use --json for the raw list.`,
	RunE: runLeads,
}

func init() {
	leadsCmd.Flags().StringVar(&leadsFlags.adminURL, "admin-url", "", "Base URL of the intake server (overrides config)")
	leadsCmd.Flags().StringVar(&leadsFlags.adminKey, "admin-key", "", "Admin key (overrides config)")
	leadsCmd.Flags().BoolVar(&leadsFlags.json, "json", false, "Print the raw JSON list")
	leadsCmd.Flags().IntVarP(&leadsFlags.width, "width", "w", 100, "Wrap width for rendered output")
}

func runLeads(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("admin-url") {
		cfg.AdminURL = leadsFlags.adminURL
	}
	if cmd.Flags().Changed("admin-key") {
		cfg.AdminKey = leadsFlags.adminKey
	}
	if cfg.AdminURL == "" {
		return fmt.Errorf("admin_url not configured\n\nSet it via --admin-url or LEADFORM_ADMIN_URL")
	}

	client := intake.NewClient(
		submit.NewClient(cfg.SubmitTimeout, cfg.Retries, version),
		cfg.AdminURL,
		cfg.AdminKey,
	)
	list, err := client.Leads(cmd.Context())
	if err != nil {
		return err
	}

	if leadsFlags.json {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding leads: %w", err)
		}
		return highlightJSON(os.Stdout, data)
	}

	fmt.Println(renderMarkdown(template.Digest(list, cfg.Services, time.Now()), leadsFlags.width))
	return nil
}
