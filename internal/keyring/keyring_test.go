package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSecrets(t *testing.T) {
	tests := []struct {
		name  string
		get   func() (string, error)
		set   func(string) error
		del   func() error
		value string
	}{
		{"connection string", GetConnectionString, SetConnectionString, DeleteConnectionString, "postgres://me@localhost/habitual"},
		{"smtp password", GetSMTPPassword, SetSMTPPassword, DeleteSMTPPassword, "hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gokeyring.MockInit()

			if _, err := tt.get(); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get() on empty keyring = %v, want ErrNotFound", err)
			}
			if err := tt.set(""); err == nil {
				t.Error("set(\"\") should fail")
			}
			if err := tt.set(tt.value); err != nil {
				t.Fatalf("set() failed: %v", err)
			}
			got, err := tt.get()
			if err != nil {
				t.Fatalf("get() failed: %v", err)
			}
			if got != tt.value {
				t.Errorf("get() = %q, want %q", got, tt.value)
			}
			if err := tt.del(); err != nil {
				t.Fatalf("del() failed: %v", err)
			}
			if err := tt.del(); !errors.Is(err, ErrNotFound) {
				t.Errorf("second del() = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSecretsAreIndependent(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://me@localhost/habitual"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if _, err := GetSMTPPassword(); !errors.Is(err, ErrNotFound) {
		t.Errorf("SMTP password should not be set, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("mock keyring should be available")
	}
}
