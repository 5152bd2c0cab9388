package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"book-recommendation/pkg/utils"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

var ErrUnavailable = errors.New("mail delivery temporarily unavailable")

// Sender delivers plain-text messages.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP sender, or a log-only sender when no SMTP host is configured.
func New(config utils.EmailConfig, log *zap.Logger) Sender {
	if config.Host == "" {
		log.Warn("SMTP_HOST not set, one-time codes will only be logged")
		return NewLogSender(log)
	}
	return NewSMTPSender(config, log)
}

type SMTPSender struct {
	config  utils.EmailConfig
	breaker *gobreaker.CircuitBreaker[any]
	log     *zap.Logger
}

func NewSMTPSender(config utils.EmailConfig, log *zap.Logger) *SMTPSender {
	log = log.With(zap.String("component", "mailer"))

	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("SMTP circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &SMTPSender{
		config:  config,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		log:     log,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return fmt.Errorf("set sender %q: %w", s.config.From, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	_, err := s.breaker.Execute(func() (any, error) {
		client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
		if err != nil {
			return nil, fmt.Errorf("create smtp client: %w", err)
		}
		return nil, client.DialAndSendWithContext(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	if err != nil {
		s.log.Error("Failed to send email", zap.Error(err), zap.String("subject", subject))
		return fmt.Errorf("send email: %w", err)
	}

	s.log.Debug("Email sent", zap.String("subject", subject))
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if s.config.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(s.config.User),
			mail.WithPassword(s.config.Password),
		)
	}
	return opts
}

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("component", "mailer"))}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.log.Info("Email (not delivered)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
