package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/simnotice/simnotice/internal/config"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
)

var ErrSMTPNotConfigured = errors.New("notify: smtp host or sender not configured")

// deliverFunc dials the server and sends a prepared message.
type deliverFunc func(ctx context.Context, msg *mail.Msg) error

// SMTPSender sends HTML email over SMTP with implicit TLS.
type SMTPSender struct {
	cfg     config.SMTP
	log     *slog.Logger
	deliver deliverFunc
}

func NewSMTPSender(cfg config.SMTP, log *slog.Logger) *SMTPSender {
	s := &SMTPSender{cfg: cfg, log: log}
	s.deliver = s.dialAndSend
	return s
}

func (s *SMTPSender) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSSL(),
		mail.WithTimeout(s.timeout()),
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return mail.NewClient(s.cfg.Host, opts...)
}

func (s *SMTPSender) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	c, err := s.client()
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

func (s *SMTPSender) buildMessage(to, subject, html string) (*mail.Msg, string, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, "", fmt.Errorf("from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, "", fmt.Errorf("to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	msg.SetDate()

	id := fmt.Sprintf("%s@%s", uuid.NewString(), s.cfg.Host)
	msg.SetMessageIDWithValue(id)

	return msg, "<" + id + ">", nil
}

// SendEmail delivers one HTML message.
func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, html string) Result {
	const op = "notify.SendEmail"
	log := s.log.With(sl.String("op", op), sl.String("to", to))

	if s.cfg.Host == "" || s.cfg.From == "" {
		log.Warn("email skipped", sl.Err(ErrSMTPNotConfigured))
		return failure(ChannelEmail, ErrSMTPNotConfigured)
	}

	msg, id, err := s.buildMessage(to, subject, html)
	if err != nil {
		log.Error("failed to build email", sl.Err(err))
		return failure(ChannelEmail, fmt.Errorf("%s: %w", op, err))
	}

	if err := s.deliver(ctx, msg); err != nil {
		log.Error("failed to send email", sl.Err(err))
		return failure(ChannelEmail, fmt.Errorf("%s: %w", op, err))
	}

	log.Info("email sent", sl.String("message_id", id))
	return Result{Channel: ChannelEmail, Success: true, MessageID: id}
}

// Verify dials the SMTP server, authenticates and disconnects.
func (s *SMTPSender) Verify(ctx context.Context) error {
	const op = "notify.Verify"

	if s.cfg.Host == "" {
		return fmt.Errorf("%s: %w", op, ErrSMTPNotConfigured)
	}
	c, err := s.client()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.Close()
}

func (s *SMTPSender) timeout() time.Duration {
	if s.cfg.Timeout > 0 {
		return s.cfg.Timeout
	}
	return 15 * time.Second
}
