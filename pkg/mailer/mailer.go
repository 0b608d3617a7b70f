package mailer

import (
	"context"
	"crypto/tls"
	"errors"

	mail "github.com/go-mail/mail/v2"

	"research-approval/backend/config"
)

// ErrNotConfigured SMTP 未配置
var ErrNotConfigured = errors.New("smtp 未配置 (mail.smtp_host / mail.from)")

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, to []string, subject, html string) error
}

// SMTPSender 基于 go-mail 的 SMTP 发送器
type SMTPSender struct {
	cfg config.MailConfig
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send 发送 HTML 邮件；收件人为空时直接返回
func (s *SMTPSender) Send(ctx context.Context, to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if !s.cfg.Enabled() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	port := s.cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	d := mail.NewDialer(s.cfg.SMTPHost, port, s.cfg.Username, s.cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.SMTPHost,
		InsecureSkipVerify: s.cfg.SkipTLSVerify,
	}

	return d.DialAndSend(m)
}
