package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
)

func criticalAlert() Alert {
	return Alert{
		TicketKey: "TICKET-42",
		Note:      "Auto-Trigger: Critical Priority",
		Result: domain.AnalysisResult{
			Summary:     "Checkout is down <for everyone>",
			Issue:       "Payment API outage",
			Priority:    domain.PriorityCritical,
			Team:        domain.TeamBilling,
			ActionItems: []string{"Schedule immediate team review"},
		},
	}
}

func TestRender(t *testing.T) {
	subject, body, err := Render(criticalAlert())
	require.NoError(t, err)
	assert.Equal(t, "CRITICAL TICKET: TICKET-42", subject)
	assert.Contains(t, body, "CRITICAL ISSUE REPORTED")
	assert.Contains(t, body, "Auto-Trigger: Critical Priority")
	assert.Contains(t, body, "&lt;for everyone&gt;", "summary is escaped")
	assert.Contains(t, body, "<li>Schedule immediate team review</li>")

	subject, body, err = Render(Alert{TicketKey: "TICKET-1", Result: domain.AnalysisResult{Priority: domain.PriorityLow}})
	require.NoError(t, err)
	assert.Equal(t, "Ticket Update: TICKET-1", subject)
	assert.Contains(t, body, "No issue extracted.")
	assert.NotContains(t, body, "Admin Note")
}

func TestSMTPMailer_LogOnlyWithoutHost(t *testing.T) {
	m := NewSMTPMailer(config.NotificationConfig{AlertRecipient: "ops@example.com"}, nil)
	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("must not send without SMTP host")
		return nil
	}
	delivery, err := m.Send(context.Background(), criticalAlert())
	require.NoError(t, err)
	assert.False(t, delivery.Delivered)
	assert.Equal(t, "ops@example.com", delivery.Recipient)
}

func TestSMTPMailer_Sends(t *testing.T) {
	cfg := config.NotificationConfig{
		SMTPHost:       "smtp.example.com",
		SMTPPort:       587,
		SMTPUser:       "bot",
		SMTPPassword:   "pw",
		EmailFrom:      "bot@example.com",
		AlertRecipient: "ops@example.com",
	}
	m := NewSMTPMailer(cfg, nil)
	var gotAddr string
	var gotTo []string
	var gotMsg string
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	alert := criticalAlert()
	alert.Recipient = "lead@example.com"
	delivery, err := m.Send(context.Background(), alert)
	require.NoError(t, err)
	assert.True(t, delivery.Delivered)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"lead@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: CRITICAL TICKET: TICKET-42\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html")

	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay denied") }
	_, err = m.Send(context.Background(), alert)
	require.ErrorContains(t, err, "relay denied")
}

func TestSMTPMailer_NoRecipient(t *testing.T) {
	_, err := NewSMTPMailer(config.NotificationConfig{}, nil).Send(context.Background(), criticalAlert())
	require.ErrorIs(t, err, ErrNoRecipient)
}
