package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/submit"
	"github.com/terrasite/leadform/internal/tui/leadwizard"
)

var wizardFlags struct {
	endpoint string
}

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Fill in a request in the interactive wizard",
	Long: `Fill in a request in the interactive wizard.

The wizard walks through four steps. Each step is validated before the next
one opens; the last step sends the request to the configured endpoint.
After a successful submission the form resets so another request can be
entered. Press esc on the first step or ctrl+c to leave.`,
	RunE: runWizard,
}

func init() {
	wizardCmd.Flags().StringVarP(&wizardFlags.endpoint, "endpoint", "e", "", "Submission endpoint (overrides config)")
}

func runWizard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Endpoint = wizardFlags.endpoint
	}
	if err := validate(cfg); err != nil {
		return err
	}

	transport := submit.NewHTTPTransport(submit.HTTPConfig{
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.SubmitTimeout,
		Retries:  cfg.Retries,
		Version:  version,
	})

	result, err := leadwizard.Run(leadwizard.Config{
		Services:   cfg.Services,
		Rules:      form.Rules{MinDescription: cfg.MinDescription, MaxDescription: cfg.MaxDescription},
		Transport:  transport,
		NoticeTTL:  cfg.NoticeTTL,
		ResetDelay: cfg.ResetDelay,
		Timeout:    cfg.SubmitTimeout,
	})
	if err != nil {
		return err
	}

	if result.Submitted > 0 {
		fmt.Printf("Requests sent: %d\n", result.Submitted)
	}
	return nil
}
