// Package notify delivers ticket alerts by email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
)

// ErrNoRecipient is returned when neither the alert nor the config names a recipient.
var ErrNoRecipient = errors.New("no alert recipient configured")

// Alert is one ticket notification.
type Alert struct {
	TicketKey string
	Result    domain.AnalysisResult
	Note      string
	Recipient string
}

// Delivery reports what happened to an alert.
type Delivery struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Delivered bool   `json:"delivered"`
}

// Sender delivers alerts.
type Sender interface {
	Send(ctx context.Context, alert Alert) (Delivery, error)
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends HTML alerts over SMTP. Without an SMTP host it only logs.
type SMTPMailer struct {
	cfg      config.NotificationConfig
	logger   *zap.Logger
	sendMail sendMailFunc
}

// NewSMTPMailer builds a mailer from config.
func NewSMTPMailer(cfg config.NotificationConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
}

// Send renders and delivers alert.
func (m *SMTPMailer) Send(ctx context.Context, alert Alert) (Delivery, error) {
	recipient := strings.TrimSpace(alert.Recipient)
	if recipient == "" {
		recipient = strings.TrimSpace(m.cfg.AlertRecipient)
	}
	if recipient == "" {
		return Delivery{}, ErrNoRecipient
	}

	subject, body, err := Render(alert)
	if err != nil {
		return Delivery{}, err
	}
	delivery := Delivery{Recipient: recipient, Subject: subject}

	if !m.cfg.SMTPEnabled() {
		m.logger.Warn("SMTP not configured; alert logged only",
			zap.String("ticket_key", alert.TicketKey),
			zap.String("recipient", recipient),
			zap.String("subject", subject))
		return delivery, nil
	}
	if err := ctx.Err(); err != nil {
		return delivery, err
	}

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	addr := net.JoinHostPort(m.cfg.SMTPHost, strconv.Itoa(m.cfg.SMTPPort))
	msg := buildMessage(m.cfg.EmailFrom, recipient, subject, body, time.Now())
	if err := m.sendMail(addr, auth, m.cfg.EmailFrom, []string{recipient}, msg); err != nil {
		return delivery, fmt.Errorf("send alert email: %w", err)
	}

	delivery.Delivered = true
	m.logger.Info("alert email sent",
		zap.String("ticket_key", alert.TicketKey),
		zap.String("recipient", recipient))
	return delivery, nil
}

func buildMessage(from, to, subject, htmlBody string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
