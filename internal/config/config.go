// Package config loads the reminder daemon configuration from YAML, with
// secrets taken from a .env file, the environment, or the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
)

const (
	// FileName is the config file looked up next to the database
	FileName = "reminders.yaml"

	// EnvSMTPPassword overrides the keyring SMTP password
	EnvSMTPPassword = "HABITUAL_SMTP_PASSWORD"

	DefaultMessage  = "Time for your habit: {{.Title}}"
	DefaultSubject  = "Habit Reminder"
	DefaultSMTPPort = 587
)

// Config is the reminder daemon configuration
type Config struct {
	// Message is the reminder text. {{.Title}}, {{.Time}}, {{.Target}} and
	// {{.Units}} are replaced per habit.
	Message string      `yaml:"message"`
	Command string      `yaml:"command"` // shell template for the command channel
	EnvFile string      `yaml:"env_file"`
	Email   EmailConfig `yaml:"email"`
}

// EmailConfig holds SMTP settings. The password is never read from YAML.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	Subject  string   `yaml:"subject"`
	Password string   `yaml:"-"`
}

// Addr returns host:port for net/smtp.
func (e EmailConfig) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// DefaultPath returns the config path in the directory of the database.
func DefaultPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), FileName)
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Parse(nil)
	}
	return cfg, err
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Message) == "" {
		c.Message = DefaultMessage
	}
	if c.Email.Port == 0 {
		c.Email.Port = DefaultSMTPPort
	}
	if c.Email.Subject == "" {
		c.Email.Subject = DefaultSubject
	}
	if c.Email.From == "" {
		c.Email.From = c.Email.Username
	}
}

func (c *Config) validate() error {
	var errs []string
	if c.Email.Port < 1 || c.Email.Port > 65535 {
		errs = append(errs, fmt.Sprintf("email.port %d is out of range", c.Email.Port))
	}
	for i, to := range c.Email.To {
		if !strings.Contains(to, "@") {
			errs = append(errs, fmt.Sprintf("email.to[%d] %q is not an address", i, to))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RequireChannel checks that the settings a delivery channel needs are
// present. Call it after LoadSecrets.
func (c *Config) RequireChannel(channel string) error {
	var errs []string
	switch channel {
	case constants.ChannelTray:
	case constants.ChannelCommand:
		if strings.TrimSpace(c.Command) == "" {
			errs = append(errs, "command is required for the command channel")
		}
	case constants.ChannelEmail:
		if c.Email.Host == "" {
			errs = append(errs, "email.host is required")
		}
		if c.Email.From == "" {
			errs = append(errs, "email.from or email.username is required")
		}
		if len(c.Email.To) == 0 {
			errs = append(errs, "at least one email.to address is required")
		}
		if c.Email.Username != "" && c.Email.Password == "" {
			errs = append(errs, fmt.Sprintf("no SMTP password: set %s or run 'habitual keyring set-smtp'", EnvSMTPPassword))
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown channel %q", channel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadSecrets fills in the SMTP password. A .env file (env_file, or .env in
// dir) is loaded first without overriding variables already set; then the
// environment is consulted, then the OS keyring.
func (c *Config) LoadSecrets(dir string) error {
	envFile := c.EnvFile
	if envFile == "" {
		envFile = filepath.Join(dir, ".env")
	} else if !filepath.IsAbs(envFile) {
		envFile = filepath.Join(dir, envFile)
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", envFile, err)
	}

	if pw := os.Getenv(EnvSMTPPassword); pw != "" {
		c.Email.Password = pw
		return nil
	}
	if c.Email.Username == "" {
		return nil
	}
	pw, err := keyring.GetSMTPPassword()
	switch {
	case err == nil:
		c.Email.Password = pw
	case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrKeyringUnavailable):
	default:
		return err
	}
	return nil
}
