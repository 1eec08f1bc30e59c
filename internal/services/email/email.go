// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/config"
	"codeberg.org/oliverandrich/greengrocer/internal/i18n"
	"github.com/sethvargo/go-retry"
	"github.com/wneessen/go-mail"
)

const (
	// DefaultTimeout bounds a single delivery attempt.
	DefaultTimeout = 10 * time.Second
	// MaxAttempts is the number of delivery attempts per message.
	MaxAttempts = 3
)

// ErrNotConfigured is returned by the Unavailable transport.
var ErrNotConfigured = errors.New("mail delivery is not configured")

// Transport hands finished messages to a mail server.
type Transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Unavailable is a Transport that refuses every message. It stands in when
// no SMTP host is configured.
var Unavailable Transport = unavailable{}

type unavailable struct{}

func (unavailable) DialAndSendWithContext(context.Context, ...*mail.Msg) error {
	return ErrNotConfigured
}

// ContactMessage is a message submitted through the contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Service renders and delivers transactional mail.
type Service struct {
	cfg       *config.SMTPConfig
	transport Transport
	baseURL   string
	timeout   time.Duration
	backoff   time.Duration
}

// NewService creates a new email service backed by an SMTP client.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	client, err := mail.NewClient(cfg.Host, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}

	return NewServiceWithTransport(cfg, client, baseURL), nil
}

// NewServiceWithTransport creates an email service that delivers through t.
func NewServiceWithTransport(cfg *config.SMTPConfig, t Transport, baseURL string) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		cfg:       cfg,
		transport: t,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		timeout:   timeout,
		backoff:   500 * time.Millisecond,
	}
}

func clientOptions(cfg *config.SMTPConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	// Implicit TLS on 465, STARTTLS everywhere else
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return opts
}

// SendVerificationCode mails a one-time code to its recipient.
func (s *Service) SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	subject := i18n.T(ctx, "email_code_subject")
	body := i18n.TData(ctx, "email_code_body", map[string]any{
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})

	msg, err := s.newMessage(to, subject, body)
	if err != nil {
		return err
	}
	return s.deliver(ctx, msg)
}

// SendContactNotification forwards a contact-form submission to the operator.
// Replies go to the sender.
func (s *Service) SendContactNotification(ctx context.Context, operator string, m ContactMessage) error {
	data := contactData(m, s.baseURL)
	subject := i18n.TData(ctx, "email_contact_subject", data)
	body := i18n.TData(ctx, "email_contact_body", data)

	msg, err := s.newMessage(operator, subject, body)
	if err != nil {
		return err
	}
	if err := msg.ReplyTo(m.Email); err != nil {
		return fmt.Errorf("setting reply-to address: %w", err)
	}
	return s.deliver(ctx, msg)
}

// SendContactAutoReply confirms receipt of a contact-form submission.
func (s *Service) SendContactAutoReply(ctx context.Context, m ContactMessage) error {
	data := contactData(m, s.baseURL)
	subject := i18n.TData(ctx, "email_autoreply_subject", data)
	body := i18n.TData(ctx, "email_autoreply_body", data)

	msg, err := s.newMessage(m.Email, subject, body)
	if err != nil {
		return err
	}
	return s.deliver(ctx, msg)
}

func contactData(m ContactMessage, baseURL string) map[string]any {
	return map[string]any{
		"Name":    m.Name,
		"Email":   m.Email,
		"Subject": m.Subject,
		"Message": m.Message,
		"BaseURL": baseURL,
	}
}

func (s *Service) newMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// deliver sends msg with a per-attempt timeout and bounded exponential backoff.
func (s *Service) deliver(ctx context.Context, msg *mail.Msg) error {
	backoff := retry.WithMaxRetries(MaxAttempts-1, retry.NewExponential(s.backoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		err := s.transport.DialAndSendWithContext(attemptCtx, msg)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotConfigured) {
			return err
		}
		slog.Warn("mail_send_retry", "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
