// Package notify announces accepted leads to the team mailbox.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/terrasite/leadform/internal/config"
	"github.com/terrasite/leadform/internal/leads"
	"github.com/terrasite/leadform/internal/logger"
	"github.com/terrasite/leadform/internal/template"
)

// implicitTLSPort is the SMTPS port that expects TLS from the first byte.
const implicitTLSPort = 465

const dialTimeout = 10 * time.Second

// Builder renders the notification for a lead.
type Builder func(lead leads.Lead) (template.Message, error)

// NewBuilder returns a Builder using the body template at templatePath
// (empty for the embedded default) and the configured service labels.
func NewBuilder(templatePath string, serviceLabels []string) Builder {
	return func(lead leads.Lead) (template.Message, error) {
		return template.BuildMessage(template.BuildConfig{
			Lead:          lead,
			TemplatePath:  templatePath,
			ServiceLabels: serviceLabels,
		})
	}
}

// SMTPNotifier mails every lead to a fixed recipient.
type SMTPNotifier struct {
	cfg   config.SMTPConfig
	build Builder
}

// NewSMTP creates an SMTPNotifier.
func NewSMTP(cfg config.SMTPConfig, build Builder) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, build: build}
}

// Notify renders and sends the notification for lead.
func (n *SMTPNotifier) Notify(ctx context.Context, lead leads.Lead) error {
	msg, err := n.build(lead)
	if err != nil {
		return err
	}
	raw, err := ComposeMessage(n.cfg.From, n.cfg.To, msg, time.Now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	logger.Debug("Sending notification for lead %s via %s", lead.ID, addr)

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	if n.cfg.Port != implicitTLSPort {
		// smtp.SendMail upgrades with STARTTLS when the server offers it.
		return smtp.SendMail(addr, auth, n.cfg.From, []string{n.cfg.To}, raw)
	}
	return n.sendTLS(ctx, addr, auth, raw)
}

func (n *SMTPNotifier) sendTLS(ctx context.Context, addr string, auth smtp.Auth, raw []byte) error {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: dialTimeout},
		Config:    &tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(n.cfg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp DATA close: %w", err)
	}
	return client.Quit()
}

// ComposeMessage builds an RFC 5322 message with a quoted-printable
// UTF-8 text body.
func ComposeMessage(from, to string, msg template.Message, at time.Time) ([]byte, error) {
	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", from, err)
	}
	toAddr, err := mail.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("invalid to address %q: %w", to, err)
	}

	var buf bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	header("From", fromAddr.String())
	header("To", toAddr.String())
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", at.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@leadform>", xid.New().String()))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LogNotifier writes the notification to the log instead of mailing it.
type LogNotifier struct {
	build Builder
}

// NewLog creates a LogNotifier.
func NewLog(build Builder) *LogNotifier {
	return &LogNotifier{build: build}
}

// Notify logs the rendered notification.
func (n *LogNotifier) Notify(_ context.Context, lead leads.Lead) error {
	msg, err := n.build(lead)
	if err != nil {
		return err
	}
	logger.Info("%s\n%s", msg.Subject, msg.Body)
	return nil
}

// ErrIncompleteSMTP is returned when smtp.host is set without the
// addresses needed to send.
var ErrIncompleteSMTP = errors.New("smtp.host requires smtp.from and smtp.to")

// FromConfig selects the notifier for cfg: SMTP when smtp.host is set,
// the log otherwise.
func FromConfig(cfg *config.Config) (leads.Notifier, error) {
	build := NewBuilder(cfg.NotifyTemplate, cfg.Services)
	if cfg.SMTP.Host == "" {
		logger.Warn("smtp.host not set, notifications go to the log")
		return NewLog(build), nil
	}
	if cfg.SMTP.From == "" || cfg.SMTP.To == "" {
		return nil, ErrIncompleteSMTP
	}
	return NewSMTP(cfg.SMTP, build), nil
}
