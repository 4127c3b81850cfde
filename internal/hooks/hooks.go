// Package hooks runs user-configured shell commands when a lead arrives.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/terrasite/leadform/internal/leads"
	"github.com/terrasite/leadform/internal/logger"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".leadform.hooks.yml"

// LoadConfig loads the hooks configuration from the working directory.
// Returns nil if the config file doesn't exist (hooks are optional).
// Returns an error only if the file exists but cannot be parsed.
func LoadConfig(workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No hooks config found at %s", configPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config from %s (version: %d)", configPath, cfg.Version)
	return &cfg, nil
}

// Variables holds the values exposed to a hook. Only ID and Method are
// expanded inside the command; everything else travels through the
// environment and stdin so user input never reaches the shell parser.
type Variables struct {
	ID      string
	Method  string
	Name    string
	Contact string
}

// VariablesFor extracts hook variables from a lead.
func VariablesFor(lead leads.Lead) Variables {
	return Variables{
		ID:      lead.ID,
		Method:  string(lead.ContactMethod),
		Name:    lead.Name,
		Contact: lead.ContactValue(),
	}
}

// Execute runs a hook command with input on stdin and returns its stdout.
// A failing or timed-out command is an error.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables, input []byte) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.WaitDelay = time.Second
	cmd.Stdin = bytes.NewReader(input)
	cmd.Env = append(os.Environ(),
		"LEADFORM_LEAD_ID="+vars.ID,
		"LEADFORM_LEAD_METHOD="+vars.Method,
		"LEADFORM_LEAD_NAME="+vars.Name,
		"LEADFORM_LEAD_CONTACT="+vars.Contact,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return stdout.String(), fmt.Errorf("hook timed out after %ds: %s", timeout, command)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return stdout.String(), fmt.Errorf("hook %q failed: %w: %s", command, err, msg)
		}
		return stdout.String(), fmt.Errorf("hook %q failed: %w", command, err)
	}

	if stderr.Len() > 0 {
		logger.Debug("Hook stderr: %s", stderr.String())
	}
	logger.Debug("Hook executed successfully, output length: %d bytes", stdout.Len())
	return stdout.String(), nil
}

// expandVariables replaces {{variable}} placeholders in the command string.
func expandVariables(command string, vars Variables) string {
	replacements := map[string]string{
		"{{id}}":     vars.ID,
		"{{method}}": vars.Method,
	}

	result := command
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// Notifier runs every on_lead hook for each new lead, passing the lead as
// JSON on stdin. All hooks run; their errors are joined.
type Notifier struct {
	hooks   []*HookConfig
	workDir string
}

// NewNotifier creates a notifier for the given hooks.
func NewNotifier(hooks []*HookConfig, workDir string) *Notifier {
	return &Notifier{hooks: hooks, workDir: workDir}
}

// Notify implements leads.Notifier.
func (n *Notifier) Notify(ctx context.Context, lead leads.Lead) error {
	input, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encoding lead for hooks: %w", err)
	}

	vars := VariablesFor(lead)
	var errs []error
	for _, hook := range n.hooks {
		if _, err := Execute(ctx, hook, n.workDir, vars, input); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("on_lead hook failed for %s: %v", lead.ID, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
