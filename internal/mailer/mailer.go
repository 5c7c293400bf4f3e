package mailer

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer notifies landlords about their listings.
type SMTPMailer struct {
	from   string
	d      dialer
	logger *logger.Logger
}

func NewSMTPMailer(host string, port int, from, password string, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		from:   from,
		d:      gomail.NewDialer(host, port, from, password),
		logger: log.Named("SMTPMailer"),
	}
}

func (s *SMTPMailer) SendListingCreatedEmail(ctx context.Context, toEmail, listingTitle string) error {
	if toEmail == "" {
		return fmt.Errorf("no recipient for listing %q", listingTitle)
	}
	m := listingCreatedMessage(s.from, toEmail, listingTitle)

	done := make(chan error, 1)
	go func() {
		done <- s.d.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("Listing email cancelled", zap.String("to", toEmail), zap.Error(ctx.Err()))
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.logger.Error("Failed to send listing email", zap.String("to", toEmail), zap.Error(err))
			return fmt.Errorf("failed to send email: %w", err)
		}
	}
	s.logger.Info("Listing email sent", zap.String("to", toEmail), zap.String("title", listingTitle))
	return nil
}

func listingCreatedMessage(from, to, title string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "New Listing Created")
	m.SetBody("text/plain", "Your listing '"+title+"' has been created successfully.")
	return m
}

// Disabled is used when no SMTP sender is configured.
type Disabled struct {
	logger *logger.Logger
}

func NewDisabled(log *logger.Logger) *Disabled {
	return &Disabled{logger: log.Named("Mailer")}
}

func (d *Disabled) SendListingCreatedEmail(_ context.Context, toEmail, listingTitle string) error {
	d.logger.Debug("SMTP disabled, skipping listing email", zap.String("to", toEmail), zap.String("title", listingTitle))
	return nil
}
