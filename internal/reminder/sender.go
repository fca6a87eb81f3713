package reminder

import (
	"context"
	"fmt"
	"io"
	"net/smtp"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/notifier"
)

// Sender delivers a reminder
type Sender interface {
	Send(ctx context.Context, r Reminder) error
}

// NewSender builds the sender for a channel. cfg must already have its
// secrets loaded for the email channel.
func NewSender(channel string, cfg *config.Config) (Sender, error) {
	if err := cfg.RequireChannel(channel); err != nil {
		return nil, err
	}
	switch channel {
	case constants.ChannelCommand:
		return NewCommandSender(cfg.Command), nil
	case constants.ChannelEmail:
		return NewEmailSender(cfg.Email), nil
	default:
		return NewTraySender(notifier.New()), nil
	}
}

type trayNotifier interface {
	Notify(ctx context.Context, text string) error
}

// TraySender posts reminders to the desktop tray app
type TraySender struct {
	n trayNotifier
}

func NewTraySender(n trayNotifier) *TraySender {
	return &TraySender{n: n}
}

func (s *TraySender) Send(ctx context.Context, r Reminder) error {
	return s.n.Notify(ctx, r.Message)
}

// CommandSender runs a shell command template per reminder. {{.Title}} and
// {{.Message}} are substituted; HABITUAL_TITLE and HABITUAL_MESSAGE are set
// in the environment for commands that prefer not to interpolate.
type CommandSender struct {
	template string
	run      func(ctx context.Context, command string, env []string) ([]byte, error)
}

func NewCommandSender(template string) *CommandSender {
	return &CommandSender{template: template, run: runShell}
}

func (s *CommandSender) Send(ctx context.Context, r Reminder) error {
	cmd := strings.NewReplacer(
		"{{.Title}}", r.Title,
		"{{.Message}}", r.Message,
		"{{.Time}}", r.Time,
	).Replace(s.template)
	env := []string{"HABITUAL_TITLE=" + r.Title, "HABITUAL_MESSAGE=" + r.Message}
	if out, err := s.run(ctx, cmd, env); err != nil {
		return fmt.Errorf("reminder command failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func runShell(ctx context.Context, command string, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = append(os.Environ(), env...)
	return cmd.CombinedOutput()
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender mails reminders through an SMTP relay
type EmailSender struct {
	cfg      config.EmailConfig
	sendMail sendMailFunc
}

func NewEmailSender(cfg config.EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *EmailSender) Send(_ context.Context, r Reminder) error {
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.sendMail(s.cfg.Addr(), auth, s.cfg.From, s.cfg.To, s.message(r)); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}

func (s *EmailSender) message(r Reminder) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", s.cfg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(r.Message)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// DryRunSender prints reminders instead of delivering them
type DryRunSender struct {
	w   io.Writer
	now func() time.Time
}

func NewDryRunSender(w io.Writer) *DryRunSender {
	return &DryRunSender{w: w, now: time.Now}
}

func (s *DryRunSender) Send(_ context.Context, r Reminder) error {
	_, err := fmt.Fprintf(s.w, "[%s] %s: %s\n", s.now().Format("2006-01-02 15:04"), r.Title, r.Message)
	return err
}
