package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/terrasite/leadform/internal/hooks"
	"github.com/terrasite/leadform/internal/intake"
	"github.com/terrasite/leadform/internal/leads"
	"github.com/terrasite/leadform/internal/logger"
	"github.com/terrasite/leadform/internal/nats"
	"github.com/terrasite/leadform/internal/notify"
)

var serveFlags struct {
	listen  string
	dataDir string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the intake endpoint",
	Long: `Run the intake endpoint that receives requests from the wizard.

Endpoints:
  POST /submit-form   accept a request
  GET  /admin/leads   list stored requests (X-Admin-Key when admin_key is set)
  GET  /health        liveness

Leads are stored in an embedded NATS JetStream log under --data-dir.
When smtp.host is configured each new lead is mailed to smtp.to;
otherwise the notification is written to the log. Commands listed under
hooks.on_lead in ./.leadform.hooks.yml also run for every lead, with the
lead as JSON on stdin.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.listen, "listen", "l", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.dataDir, "data-dir", "", "Data directory for NATS storage (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Listen = serveFlags.listen
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = serveFlags.dataDir
	}
	if err := validate(cfg); err != nil {
		return err
	}

	// The server has no TUI to protect; log to stderr unless a file is set.
	if cfg.LogFile == "" {
		logger.SetOutput(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := nats.Open(ctx, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing lead store: %v", err)
		}
	}()

	notifier, err := notify.FromConfig(cfg)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	hookCfg, err := hooks.LoadConfig(workDir)
	if err != nil {
		return err
	}
	if hookCfg != nil && len(hookCfg.Hooks.OnLead) > 0 {
		logger.Info("Running %d on_lead hook(s) from %s", len(hookCfg.Hooks.OnLead), hooks.ConfigFileName)
		notifier = notify.Chain{notifier, hooks.NewNotifier(hookCfg.Hooks.OnLead, workDir)}
	}

	svc := leads.NewService(leads.NewStore(store.JS, store.Stream), notifier, cfg.DuplicateWindow)
	handler := intake.NewRouter(intake.NewHandler(svc, cfg.AdminKey))

	if cfg.AdminKey == "" {
		logger.Warn("admin_key not set, /admin/leads is open")
	}
	return intake.Serve(ctx, cfg.Listen, handler)
}
