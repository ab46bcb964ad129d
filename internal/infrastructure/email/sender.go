package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"

	"go.uber.org/zap"
	"screen2doc.backend/internal/config"
	"screen2doc.backend/pkg/logger"
)

// Sender dispatches verification codes to users. The SMTP credentials never
// appear in errors returned to callers.
type Sender interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

// SMTPSender sends verification emails over implicit-TLS SMTP.
type SMTPSender struct {
	host     string
	port     int
	from     string
	password string
}

// NewSMTPSender creates a sender from SMTP config.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		password: cfg.Password,
	}
}

var dialTLS = func(addr string, tlsCfg *tls.Config) (*tls.Conn, error) {
	return tls.Dial("tcp", addr, tlsCfg)
}

// SendVerificationCode sends the 6-digit code to the recipient.
func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, code string) error {
	addr := s.host + ":" + strconv.Itoa(s.port)

	conn, err := dialTLS(addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", errRedacted(err))
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", errRedacted(err))
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("failed to send verification email: %w", errRedacted(err))
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("failed to send verification email: %w", errRedacted(err))
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to send verification email: %w", errRedacted(err))
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", errRedacted(err))
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Email Verification\r\n\r\nYour verification code is: %s\r\n", s.from, to, code)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to send verification email: %w", errRedacted(err))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send verification email: %w", errRedacted(err))
	}

	return client.Quit()
}

// errRedacted keeps SMTP transport detail out of caller-visible messages.
// The original error is logged where the send was attempted.
func errRedacted(err error) error {
	logger.Error(context.Background(), "smtp delivery error", zap.Error(err))
	return errors.New("smtp delivery error")
}

// LogSender logs codes instead of sending them. Used in development when no
// SMTP host is configured.
type LogSender struct{}

// SendVerificationCode logs the code.
func (LogSender) SendVerificationCode(ctx context.Context, to, code string) error {
	logger.Info(ctx, "verification code issued (email delivery disabled)",
		zap.String("to", to),
		zap.String("code", code),
	)
	return nil
}
