package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(LogPath(configDir))); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", filepath.Dir(LogPath(configDir)))
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if Logger.GetLevel() != log.WarnLevel {
		t.Errorf("default level = %v, want warn", Logger.GetLevel())
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    log.Level
		wantErr bool
	}{
		{name: "debug flag", cfg: Config{Debug: true}, want: log.DebugLevel},
		{name: "explicit info", cfg: Config{Level: "info"}, want: log.InfoLevel},
		{name: "debug beats level", cfg: Config{Debug: true, Level: "error"}, want: log.DebugLevel},
		{name: "bad level", cfg: Config{Level: "chatty"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ConfigDir = t.TempDir()
			err := Init(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && Logger.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", Logger.GetLevel(), tt.want)
			}
		})
	}
}

func TestLogFileWritten(t *testing.T) {
	configDir := t.TempDir()
	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Component("reminder").Warn("delivery failed", "habit", "Read")

	data, err := os.ReadFile(LogPath(configDir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "delivery failed") || !strings.Contains(string(data), "component=reminder") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	Debug("no-op")
	Warn("no-op")
	Component("x").Info("no-op")
}
