package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
)

const fullYAML = `
message: "Go do {{.Title}}"
command: "notify-send habitual '{{.Message}}'"
email:
  host: smtp.example.com
  port: 2525
  username: me@example.com
  to: [me@example.com, you@example.com]
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Message != "Go do {{.Title}}" {
		t.Errorf("Message = %q", cfg.Message)
	}
	if cfg.Email.Addr() != "smtp.example.com:2525" {
		t.Errorf("Addr() = %q", cfg.Email.Addr())
	}
	if cfg.Email.From != "me@example.com" {
		t.Errorf("expected From to default to username, got %q", cfg.Email.From)
	}
	if len(cfg.Email.To) != 2 {
		t.Errorf("expected 2 recipients, got %v", cfg.Email.To)
	}
}

func TestParse_EmptyAppliesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Message != DefaultMessage || cfg.Email.Port != DefaultSMTPPort || cfg.Email.Subject != DefaultSubject {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestParse_MultipleValidationErrors(t *testing.T) {
	_, err := Parse([]byte("email:\n  port: 99999\n  to: [nobody]\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"email.port", "email.to[0]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("message: [unclosed")); err == nil {
		t.Error("expected parse error")
	}
}

func TestParse_PasswordNotReadFromYAML(t *testing.T) {
	cfg, err := Parse([]byte("email:\n  password: leaked\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Email.Password != "" {
		t.Error("password must not be read from YAML")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Message != DefaultMessage {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(fullYAML), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Email.Host != "smtp.example.com" {
		t.Errorf("Host = %q", cfg.Email.Host)
	}
}

func TestRequireChannel(t *testing.T) {
	full, _ := Parse([]byte(fullYAML))
	full.Email.Password = "pw"
	empty, _ := Parse(nil)

	tests := []struct {
		name    string
		cfg     *Config
		channel string
		wantErr bool
	}{
		{"tray needs nothing", empty, constants.ChannelTray, false},
		{"command configured", full, constants.ChannelCommand, false},
		{"command missing", empty, constants.ChannelCommand, true},
		{"email configured", full, constants.ChannelEmail, false},
		{"email missing", empty, constants.ChannelEmail, true},
		{"unknown", full, "pigeon", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.RequireChannel(tt.channel); (err != nil) != tt.wantErr {
				t.Errorf("RequireChannel(%q) error = %v, wantErr %v", tt.channel, err, tt.wantErr)
			}
		})
	}
}

func TestRequireChannel_EmailNeedsPassword(t *testing.T) {
	cfg, _ := Parse([]byte(fullYAML))
	err := cfg.RequireChannel(constants.ChannelEmail)
	if err == nil || !strings.Contains(err.Error(), EnvSMTPPassword) {
		t.Errorf("expected missing password error, got %v", err)
	}
}

func TestLoadSecrets_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvSMTPPassword, "")
	os.Unsetenv(EnvSMTPPassword)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvSMTPPassword+"=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, _ := Parse([]byte(fullYAML))
	if err := cfg.LoadSecrets(dir); err != nil {
		t.Fatalf("LoadSecrets() error: %v", err)
	}
	if cfg.Email.Password != "from-dotenv" {
		t.Errorf("Password = %q, want from-dotenv", cfg.Email.Password)
	}
}

func TestLoadSecrets_FromKeyring(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv(EnvSMTPPassword, "")
	os.Unsetenv(EnvSMTPPassword)
	if err := keyring.SetSMTPPassword("from-keyring"); err != nil {
		t.Fatal(err)
	}

	cfg, _ := Parse([]byte(fullYAML))
	if err := cfg.LoadSecrets(t.TempDir()); err != nil {
		t.Fatalf("LoadSecrets() error: %v", err)
	}
	if cfg.Email.Password != "from-keyring" {
		t.Errorf("Password = %q, want from-keyring", cfg.Email.Password)
	}
}

func TestLoadSecrets_EnvWins(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv(EnvSMTPPassword, "from-env")
	if err := keyring.SetSMTPPassword("from-keyring"); err != nil {
		t.Fatal(err)
	}

	cfg, _ := Parse([]byte(fullYAML))
	if err := cfg.LoadSecrets(t.TempDir()); err != nil {
		t.Fatalf("LoadSecrets() error: %v", err)
	}
	if cfg.Email.Password != "from-env" {
		t.Errorf("Password = %q, want from-env", cfg.Email.Password)
	}
}
