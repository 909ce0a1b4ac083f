// Package notify delivers membership notifications by email.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devexchange/orgs-backend/v1/config"
	"github.com/devexchange/orgs-backend/v1/model"
	mail "github.com/xhit/go-simple-mail/v2"
	"go.uber.org/zap"
)

// Mailer sends a single HTML message
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through the configured SMTP relay
type SMTPMailer struct {
	cfg config.EmailConfig
}

// NewSMTPMailer creates a mailer for cfg
func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) connect() (*mail.SMTPClient, error) {
	server := mail.NewSMTPClient()
	server.Host = m.cfg.Host
	server.Port = m.cfg.Port
	server.Username = m.cfg.Username
	server.Password = m.cfg.Password
	server.Encryption = mail.EncryptionSTARTTLS
	server.TLSConfig = &tls.Config{InsecureSkipVerify: m.cfg.SkipInsecure} // #nosec G402
	server.SendTimeout = 10 * time.Second
	server.ConnectTimeout = 10 * time.Second

	return server.Connect()
}

// Send connects to the relay and delivers one message
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	client, err := m.connect()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp relay: %w", err)
	}
	defer client.Close()

	email := mail.NewMSG()
	email.SetFrom(fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)).
		AddTo(to).
		SetSubject(subject).
		SetBody(mail.TextHTML, htmlBody)
	if email.Error != nil {
		return email.Error
	}
	return email.Send(client)
}

// Sender renders membership messages and hands them to a Mailer.
// Without SMTP credentials the rendered messages are only logged.
type Sender struct {
	mailer  Mailer
	cfg     config.EmailConfig
	logger  *zap.Logger
	enabled bool
}

// NewSender creates a Sender that mails through mailer when cfg is configured
func NewSender(cfg config.EmailConfig, mailer Mailer, logger *zap.Logger) *Sender {
	return &Sender{
		mailer:  mailer,
		cfg:     cfg,
		logger:  logger,
		enabled: cfg.Configured() && mailer != nil,
	}
}

// SendMessages renders event once per recipient and sends each message.
// Every recipient is attempted; failures are joined into the returned error.
func (s *Sender) SendMessages(_ context.Context, event string, recipients []model.User, data model.MessageData) error {
	var errs []error
	for i := range recipients {
		to := recipients[i]
		if strings.TrimSpace(to.Email) == "" {
			s.logger.Warn("skipping notification without address", zap.String("event", event), zap.String("user", to.Key))
			continue
		}

		subject, body, err := Render(event, s.view(&to, data))
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if !s.enabled {
			s.logger.Info("email not configured, notification logged only",
				zap.String("event", event), zap.String("to", to.Email), zap.String("subject", subject))
			continue
		}

		if err := s.mailer.Send(to.Email, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("send %s to %s: %w", event, to.Email, err))
			continue
		}
		s.logger.Debug("notification sent", zap.String("event", event), zap.String("to", to.Email))
	}
	return errors.Join(errs...)
}

func (s *Sender) view(to *model.User, data model.MessageData) MessageView {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	v := MessageView{
		Recipient:      to,
		Org:            data.Org,
		RequestingUser: data.RequestingUser,
		InvitingUser:   data.InvitingUser,
		SignupLink:     base + "/signup",
		SupportEmail:   s.cfg.FromEmail,
	}
	if data.Org != nil {
		v.OrgLink = base + "/orgs/" + data.Org.Key
	}
	return v
}
