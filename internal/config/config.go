// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SMTPConfig holds the notification mailbox settings. An empty Host
// disables email notification.
type SMTPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	From     string `mapstructure:"from" yaml:"from"`
	To       string `mapstructure:"to" yaml:"to"`
}

// Config holds all configuration values for leadform.
type Config struct {
	// Wizard and submission
	Endpoint       string        `mapstructure:"endpoint"`
	AdminURL       string        `mapstructure:"admin_url"`
	MinDescription int           `mapstructure:"min_description"`
	MaxDescription int           `mapstructure:"max_description"`
	SubmitTimeout  time.Duration `mapstructure:"submit_timeout"`
	Retries        int           `mapstructure:"retries"`
	NoticeTTL      time.Duration `mapstructure:"notice_ttl"`
	ResetDelay     time.Duration `mapstructure:"reset_delay"`
	Services       []string      `mapstructure:"services"`

	// Intake server
	Listen          string        `mapstructure:"listen"`
	DataDir         string        `mapstructure:"data_dir"`
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
	AdminKey        string        `mapstructure:"admin_key"`
	SMTP            SMTPConfig    `mapstructure:"smtp"`
	NotifyTemplate  string        `mapstructure:"notify_template"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// DefaultServices is the service catalog offered on the first step.
var DefaultServices = []string{
	"Landing page",
	"Corporate website",
	"Online store",
	"Web application",
	"Redesign",
	"SEO promotion",
	"Support and maintenance",
}

// envKeys lists every key bound to a LEADFORM_ variable.
var envKeys = []string{
	"endpoint",
	"admin_url",
	"min_description",
	"max_description",
	"submit_timeout",
	"retries",
	"notice_ttl",
	"reset_delay",
	"services",
	"listen",
	"data_dir",
	"duplicate_window",
	"admin_key",
	"smtp.host",
	"smtp.port",
	"smtp.user",
	"smtp.password",
	"smtp.from",
	"smtp.to",
	"notify_template",
	"log_level",
	"log_file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", "http://localhost:8080/submit-form")
	v.SetDefault("admin_url", "http://localhost:8080")
	v.SetDefault("min_description", 50)
	v.SetDefault("max_description", 2000)
	v.SetDefault("submit_timeout", 15*time.Second)
	v.SetDefault("retries", 2)
	v.SetDefault("notice_ttl", 5*time.Second)
	v.SetDefault("reset_delay", time.Second)
	v.SetDefault("services", DefaultServices)
	v.SetDefault("listen", ":8080")
	v.SetDefault("data_dir", ".leadform")
	v.SetDefault("duplicate_window", 5*time.Minute)
	v.SetDefault("admin_key", "")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.to", "")
	v.SetDefault("notify_template", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Defaults returns the configuration used when no file or env is present.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are static; decoding them cannot fail.
	_ = v.Unmarshal(&cfg)
	cfg.Services = splitServices(cfg.Services)
	return &cfg
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("leadform")

	setDefaults(v)

	// Setup ENV binding with LEADFORM_ prefix
	v.SetEnvPrefix("LEADFORM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings so nested and typed keys resolve during Unmarshal
	for _, key := range envKeys {
		env := "LEADFORM_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Services = splitServices(cfg.Services)

	return &cfg, nil
}

// splitServices accepts both a YAML list and a comma-separated env value.
func splitServices(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate rejects settings the wizard or server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, errors.New("endpoint must not be empty"))
	}
	if c.MinDescription <= 0 {
		errs = append(errs, fmt.Errorf("min_description must be positive, got %d", c.MinDescription))
	}
	if c.MaxDescription < c.MinDescription {
		errs = append(errs, fmt.Errorf("max_description (%d) is below min_description (%d)", c.MaxDescription, c.MinDescription))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	for name, d := range map[string]time.Duration{
		"submit_timeout":   c.SubmitTimeout,
		"notice_ttl":       c.NoticeTTL,
		"reset_delay":      c.ResetDelay,
		"duplicate_window": c.DuplicateWindow,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if len(c.Services) == 0 {
		errs = append(errs, errors.New("services must list at least one service"))
	}
	if c.SMTP.Host != "" && (c.SMTP.Port <= 0 || c.SMTP.Port > 65535) {
		errs = append(errs, fmt.Errorf("smtp.port out of range: %d", c.SMTP.Port))
	}
	return errors.Join(errs...)
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/leadform/leadform.yml or $XDG_CONFIG_HOME/leadform/leadform.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "leadform", "leadform.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "leadform", "leadform.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./leadform.yml in the current working directory.
func ProjectPath() string {
	return "leadform.yml"
}

// fileDoc is the on-disk shape of a config file. Durations are written
// as strings such as "5s" so the file stays hand-editable.
type fileDoc struct {
	Endpoint        string     `yaml:"endpoint"`
	AdminURL        string     `yaml:"admin_url"`
	MinDescription  int        `yaml:"min_description"`
	MaxDescription  int        `yaml:"max_description"`
	SubmitTimeout   string     `yaml:"submit_timeout"`
	Retries         int        `yaml:"retries"`
	NoticeTTL       string     `yaml:"notice_ttl"`
	ResetDelay      string     `yaml:"reset_delay"`
	Services        []string   `yaml:"services"`
	Listen          string     `yaml:"listen"`
	DataDir         string     `yaml:"data_dir"`
	DuplicateWindow string     `yaml:"duplicate_window"`
	AdminKey        string     `yaml:"admin_key,omitempty"`
	SMTP            SMTPConfig `yaml:"smtp"`
	NotifyTemplate  string     `yaml:"notify_template,omitempty"`
	LogLevel        string     `yaml:"log_level"`
	LogFile         string     `yaml:"log_file,omitempty"`
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	doc := fileDoc{
		Endpoint:        cfg.Endpoint,
		AdminURL:        cfg.AdminURL,
		MinDescription:  cfg.MinDescription,
		MaxDescription:  cfg.MaxDescription,
		SubmitTimeout:   cfg.SubmitTimeout.String(),
		Retries:         cfg.Retries,
		NoticeTTL:       cfg.NoticeTTL.String(),
		ResetDelay:      cfg.ResetDelay.String(),
		Services:        cfg.Services,
		Listen:          cfg.Listen,
		DataDir:         cfg.DataDir,
		DuplicateWindow: cfg.DuplicateWindow.String(),
		AdminKey:        cfg.AdminKey,
		SMTP:            cfg.SMTP,
		NotifyTemplate:  cfg.NotifyTemplate,
		LogLevel:        cfg.LogLevel,
		LogFile:         cfg.LogFile,
	}
	return yaml.Marshal(doc)
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return writeFile(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return writeFile(ProjectPath(), cfg)
}

func writeFile(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	// The file may carry SMTP and admin secrets.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
