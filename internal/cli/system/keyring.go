package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/storage/postgres"
)

type KeyringCmd struct {
	Set        KeyringSetCmd        `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Get        KeyringGetCmd        `cmd:"" help:"Show the stored connection string with the password masked."`
	Delete     KeyringDeleteCmd     `cmd:"" help:"Remove the stored connection string."`
	Status     KeyringStatusCmd     `cmd:"" help:"Check keyring availability."`
	SetSMTP    KeyringSetSMTPCmd    `cmd:"" name:"set-smtp" help:"Store the SMTP password for email reminders."`
	DeleteSMTP KeyringDeleteSMTPCmd `cmd:"" name:"delete-smtp" help:"Remove the stored SMTP password."`
}

// KeyringSetCmd stores database connection credentials in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !cli.IsPostgres(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so an embedded password is acceptable here.
		fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
		fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	fmt.Println("✓ Connection string stored successfully in OS keyring")
	fmt.Println("  You can now use habitual without the --config flag")
	return nil
}

// KeyringGetCmd retrieves database connection credentials from the OS keyring
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'habitual keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	fmt.Println("Connection string retrieved from keyring:")
	fmt.Println(maskPassword(connStr))
	return nil
}

// KeyringDeleteCmd removes database connection credentials from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	fmt.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	fmt.Println("✓ OS keyring is available")
	report := func(what string, get func() (string, error)) {
		if _, err := get(); err == nil {
			fmt.Printf("✓ %s is stored in keyring\n", what)
		} else if errors.Is(err, keyring.ErrNotFound) {
			fmt.Printf("ℹ No %s stored in keyring\n", strings.ToLower(what))
		}
	}
	report("Connection string", keyring.GetConnectionString)
	report("SMTP password", keyring.GetSMTPPassword)
	return nil
}

// KeyringSetSMTPCmd stores the SMTP password used by email reminders
type KeyringSetSMTPCmd struct {
	Password string `arg:"" help:"SMTP password or app password."`
}

func (cmd *KeyringSetSMTPCmd) Run(ctx *cli.Context) error {
	if strings.TrimSpace(cmd.Password) == "" {
		return errors.New("password must not be empty")
	}
	if err := keyring.SetSMTPPassword(cmd.Password); err != nil {
		return fmt.Errorf("failed to store SMTP password in keyring: %w", err)
	}
	fmt.Println("✓ SMTP password stored successfully in OS keyring")
	return nil
}

// KeyringDeleteSMTPCmd removes the stored SMTP password
type KeyringDeleteSMTPCmd struct{}

func (cmd *KeyringDeleteSMTPCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteSMTPPassword(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no SMTP password found in keyring")
		}
		return fmt.Errorf("failed to delete SMTP password from keyring: %w", err)
	}
	fmt.Println("✓ SMTP password deleted from OS keyring")
	return nil
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err == nil && u.User != nil {
			if _, ok := u.User.Password(); ok {
				u.User = url.UserPassword(u.User.Username(), "****")
				return strings.Replace(u.String(), "%2A%2A%2A%2A", "****", 1)
			}
		}
		return connStr
	}

	if !strings.Contains(connStr, "password=") {
		return connStr
	}
	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
