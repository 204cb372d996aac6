package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
)

// Sender delivers a rendered message over a live transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	// Timeout bounds the dial and the whole SMTP session
	Timeout time.Duration
	// InsecureSkipVerify disables certificate checks for STARTTLS
	InsecureSkipVerify bool
}

// SMTPSender implements Sender with net/smtp.
type SMTPSender struct {
	config SMTPConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewSMTPSender creates a new SMTPSender
func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) *SMTPSender {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &SMTPSender{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

func transportError(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrMailTransport, step, err)
}

// Send performs one SMTP session: EHLO, STARTTLS when offered, AUTH PLAIN
// when a username is configured, then MAIL/RCPT/DATA and QUIT.
// All failures wrap apperrors.ErrMailTransport.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.config.Host == "" {
		return apperrors.ErrMailNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	dialer := net.Dialer{Timeout: s.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return transportError("dial", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return transportError("greeting", err)
	}
	defer client.Close()

	if err := client.Hello("localhost"); err != nil {
		return transportError("ehlo", err)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName:         s.config.Host,
			InsecureSkipVerify: s.config.InsecureSkipVerify,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return transportError("starttls", err)
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return transportError("auth", err)
		}
	}

	raw, err := BuildMIME(s.config.FromName, s.config.FromEmail, msg, s.now())
	if err != nil {
		return transportError("encode", err)
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return transportError("mail from", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return transportError("rcpt to", err)
	}

	w, err := client.Data()
	if err != nil {
		return transportError("data", err)
	}
	if _, err := w.Write(raw); err != nil {
		return transportError("write body", err)
	}
	if err := w.Close(); err != nil {
		return transportError("end data", err)
	}

	if err := client.Quit(); err != nil {
		s.logger.Debug().Err(err).Msg("SMTP quit failed after successful delivery")
	}

	s.logger.Debug().Str("to", msg.To).Str("server", addr).Msg("Email delivered")
	return nil
}
