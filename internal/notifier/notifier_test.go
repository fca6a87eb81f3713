package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitual/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func stubConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = old })
	return dir
}

func stubProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: executable}, nil
	}
	t.Cleanup(func() { findProcessFunc = old })
}

func TestGetTrayAppConfigDir(t *testing.T) {
	base := stubConfigDir(t)
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)

	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != trayDir {
		t.Errorf("expected %s, got %s", trayDir, dir)
	}

	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	settings := `{"settings": {"lockfile_dir": "/custom/lock/dir"}}`
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	dir, _ = GetTrayAppConfigDir()
	if dir != "/custom/lock/dir" {
		t.Errorf("expected custom lockfile dir, got %s", dir)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	lockfile := filepath.Join(t.TempDir(), constants.NotifierLockfileName)

	tests := []struct {
		name       string
		content    string
		executable string
		wantErr    bool
	}{
		{"valid", "8080|123|s3cret", "habitual-tray", false},
		{"two parts", "8080|123", "habitual-tray", true},
		{"bad port", "http|123|s3cret", "habitual-tray", true},
		{"port out of range", "70000|123|s3cret", "habitual-tray", true},
		{"bad pid", "8080|abc|s3cret", "habitual-tray", true},
		{"empty secret", "8080|123| ", "habitual-tray", true},
		{"wrong process", "8080|123|s3cret", "bash", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubProcess(t, tt.executable)
			if err := os.WriteFile(lockfile, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			port, secret, err := findAndValidateTrayProcess(lockfile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("findAndValidateTrayProcess() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (port != "8080" || secret != "s3cret") {
				t.Errorf("got port %q secret %q", port, secret)
			}
		})
	}

	if _, _, err := findAndValidateTrayProcess(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("expected ErrTrayNotRunning for missing lockfile, got %v", err)
	}
}

func TestNotify(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("X-Habitual-Secret") != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var p WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil || !strings.Contains(p.Text, "Run") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	base := stubConfigDir(t)
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	lock := fmt.Sprintf("%s|42|s3cret", u.Port())
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(lock), 0600); err != nil {
		t.Fatal(err)
	}
	stubProcess(t, "habitual-tray")

	if err := New().Notify(context.Background(), "Time for your habit: Run"); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected one request, got %d", calls.Load())
	}
}

func TestNotifyRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	base := stubConfigDir(t)
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	lock := fmt.Sprintf("%s|42|s3cret", u.Port())
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(lock), 0600); err != nil {
		t.Fatal(err)
	}
	stubProcess(t, "habitual-tray")

	if err := New().Notify(context.Background(), "hello"); err == nil {
		t.Fatal("expected Notify() to fail")
	}
	if int(calls.Load()) != constants.NotifyMaxRetries {
		t.Errorf("expected %d attempts, got %d", constants.NotifyMaxRetries, calls.Load())
	}
}
