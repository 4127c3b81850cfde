package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/terrasite/leadform/internal/config"
	"github.com/terrasite/leadform/internal/logger"
	"github.com/terrasite/leadform/internal/tui/theme"
)

const (
	logoText1 = "█   █▀▀ ▄▀█ █▀▄ █▀▀ █▀█ █▀█ █▀▄▀█"
	logoText2 = "█▄▄ ██▄ █▀█ █▄▀ █▀  █▄█ █▀▄ █ ▀ █"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "leadform",
	Short: "Multi-step lead intake wizard and its intake endpoint",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

leadform collects website project requests in four steps: services,
project description, budget and contacts. Each step is validated before
the next one opens, and the finished request is posted as JSON to an
intake endpoint.

The same binary runs that endpoint (leadform serve), which stores leads in
an embedded NATS JetStream log and sends an email notification.

Configuration is loaded from multiple sources with the following precedence:
  CLI flags > Environment variables (LEADFORM_*) > Project config > Global config > Defaults

Project config: ./leadform.yml
Global config: ~/.config/leadform/leadform.yml`

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(setupCmd)
}

// loadConfig loads and validates the configuration and applies its
// logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

// validate runs config.Validate after flag overrides were applied.
func validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	return nil
}
