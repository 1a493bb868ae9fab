// Package mailer sends application email over SMTP.
package mailer

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends email through a configured SMTP relay. It satisfies the
// MailSender interface consumed by the password reset flow.
type Mailer struct {
	config *mailerConfig
	dialer *gomail.Dialer
}

// New creates a Mailer from SMTP_* environment variables. Missing
// configuration is fatal at startup rather than at first send.
func New(log *zap.Logger) *Mailer {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		log.Fatal("failed to parse mailer environment variables", zap.Error(err))
	}
	if err := cfg.validate(); err != nil {
		log.Fatal("invalid mailer configuration", zap.Error(err))
	}

	return &Mailer{
		config: &cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers a single message with a plain-text body and an HTML
// alternative to the given address.
func (m *Mailer) Send(to, subject, bodyText, bodyHTML string) error {
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)

	if bodyHTML != "" {
		msg.SetBody("text/html", bodyHTML)
		if bodyText != "" {
			msg.AddAlternative("text/plain", bodyText)
		}
	} else {
		msg.SetBody("text/plain", bodyText)
	}

	return m.dialer.DialAndSend(msg)
}

// mailerConfig holds SMTP configuration for sending emails.
type mailerConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// validate checks if the Mailer configuration is valid.
func (c *mailerConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	return nil
}
