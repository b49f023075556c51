package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

const sendTimeout = 10 * time.Second

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Configured reports whether the config names a usable relay.
func (c SMTPConfig) Configured() bool {
	return strings.TrimSpace(c.Host) != "" && strings.TrimSpace(c.Username) != ""
}

// SMTPMailer sends mail through an SMTP relay using STARTTLS.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if strings.TrimSpace(cfg.From) == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg}
}

// Send implements Notifier. The dial honors both the context deadline and a
// fixed send timeout so a stuck relay cannot hold the request open.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", m.cfg.Port))

	dialer := &net.Dialer{Timeout: sendTimeout}
	conn, errDial := dialer.DialContext(ctx, "tcp", addr)
	if errDial != nil {
		return fmt.Errorf("smtp dial: %w", errDial)
	}
	deadline := time.Now().Add(sendTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	client, errClient := smtp.NewClient(conn, m.cfg.Host)
	if errClient != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp client: %w", errClient)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if errTLS := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); errTLS != nil {
			return fmt.Errorf("smtp starttls: %w", errTLS)
		}
	}
	if m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if errAuth := client.Auth(auth); errAuth != nil {
			return fmt.Errorf("smtp auth: %w", errAuth)
		}
	}
	if errFrom := client.Mail(m.cfg.From); errFrom != nil {
		return fmt.Errorf("smtp mail from: %w", errFrom)
	}
	if errTo := client.Rcpt(to); errTo != nil {
		return fmt.Errorf("smtp rcpt: %w", errTo)
	}
	writer, errData := client.Data()
	if errData != nil {
		return fmt.Errorf("smtp data: %w", errData)
	}
	message := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"utf-8\"",
		"",
		htmlBody,
	}, "\r\n")
	if _, errWrite := writer.Write([]byte(message)); errWrite != nil {
		_ = writer.Close()
		return fmt.Errorf("smtp write: %w", errWrite)
	}
	if errClose := writer.Close(); errClose != nil {
		return fmt.Errorf("smtp close: %w", errClose)
	}
	return client.Quit()
}
