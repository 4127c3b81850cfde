package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/notice"
	"github.com/terrasite/leadform/internal/submit"
)

var submitFlags struct {
	file     string
	endpoint string
	dryRun   bool
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Send a request from a YAML answer file",
	Long: `Send a request from a YAML answer file without the interactive wizard.

The answers go through the same steps and validation rules as the wizard.
Services may be listed by label or by slug. With --dry-run the payload is
printed instead of sent.

Example answer file:

  services: [Landing page]
  description: Landing page for a dental clinic with online booking and prices
  budget: 50-150k
  name: Anna
  contact_method: telegram
  telegram: "@anna_k"`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitFlags.file, "file", "f", "", "Answer file (YAML)")
	submitCmd.Flags().StringVarP(&submitFlags.endpoint, "endpoint", "e", "", "Submission endpoint (overrides config)")
	submitCmd.Flags().BoolVar(&submitFlags.dryRun, "dry-run", false, "Print the payload instead of sending it")
	_ = submitCmd.MarkFlagRequired("file")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Endpoint = submitFlags.endpoint
	}
	if err := validate(cfg); err != nil {
		return err
	}

	answers, err := submit.LoadAnswers(submitFlags.file)
	if err != nil {
		return err
	}

	fields := form.NewMapFields()
	answers.Fill(fields)
	state := form.NewWizardState(fields, form.Rules{
		MinDescription: cfg.MinDescription,
		MaxDescription: cfg.MaxDescription,
	})

	if err := submit.Walk(state); err != nil {
		return fmt.Errorf("step %d (%s): %w", int(state.Current()), state.Current(), err)
	}

	if submitFlags.dryRun {
		state.Sync()
		data, err := json.MarshalIndent(form.BuildPayload(state.Data()), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding payload: %w", err)
		}
		return highlightJSON(os.Stdout, data)
	}

	transport := submit.NewHTTPTransport(submit.HTTPConfig{
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.SubmitTimeout,
		Retries:  cfg.Retries,
		Version:  version,
	})
	ctrl := submit.NewController(state, transport, consolePresenter{w: os.Stderr}, submit.Options{
		Timeout: cfg.SubmitTimeout,
	})

	out, err := ctrl.Submit(cmd.Context())
	if err != nil {
		return err
	}
	if !out.Succeeded {
		return fmt.Errorf("submission failed: %s", out.Message)
	}
	ctrl.ApplyReset()
	return nil
}

// consolePresenter prints controller notices as single lines.
type consolePresenter struct {
	w *os.File
}

func (p consolePresenter) Show(kind notice.Kind, text string) uint64 {
	fmt.Fprintln(p.w, renderNotice(kind, text))
	return 0
}
