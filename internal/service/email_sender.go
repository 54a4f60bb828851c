package service

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/wastewise/binreminder/internal/config"
	"github.com/wastewise/binreminder/internal/model"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
)

// CodeSender dispatches a one-time code to a recipient. Purpose is one
// of the model.CodePurpose values.
type CodeSender interface {
	Send(to, purpose, code string) error
}

type smtpCodeSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewCodeSender(cfg config.MailConfig) CodeSender {
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	return &smtpCodeSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (s *smtpCodeSender) Send(to, purpose, code string) error {
	var subject, intro string
	switch purpose {
	case model.CodePurposeEmailVerification:
		subject = "Verify your email address"
		intro = "Thank you for registering! Please use the following code to verify your email address:"
	case model.CodePurposePasswordReset:
		subject = "Reset your password"
		intro = "We received a request to reset your password. Use the following code to proceed:"
	default:
		return appErr.ErrInvalid
	}

	body := fmt.Sprintf(`
		<h2>%s</h2>
		<p>%s</p>
		<div style="font-size: 24px; letter-spacing: 5px; text-align: center; margin: 20px 0;">
			<strong>%s</strong>
		</div>
		<p>This code will expire in 15 minutes.</p>
		<p>If you didn't request this, please ignore this email.</p>
	`, subject, intro, code)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: send %s code: %v", appErr.ErrDelivery, purpose, err)
	}
	return nil
}
