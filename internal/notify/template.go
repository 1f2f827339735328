package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/spec-kit/triage-service/internal/domain"
)

var alertTemplate = template.Must(template.New("alert").Parse(`<html>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; border: 1px solid #ddd; border-radius: 8px;">
    <div style="background-color: {{.Color}}; color: white; padding: 15px; text-align: center; border-radius: 8px 8px 0 0;">
      <h2>{{.Title}}</h2>
    </div>
    <div style="padding: 20px;">
      <div style="background-color: {{.Background}}; padding: 15px; border-left: 4px solid {{.Color}}; margin-bottom: 20px;">
        <div><strong>Ticket ID:</strong> {{.TicketKey}}</div>
        <div><strong>Priority:</strong> <strong>{{.Result.Priority}}</strong></div>
        <div><strong>Team:</strong> {{.Result.Team}}</div>
        <div><strong>Estimated resolution:</strong> {{printf "%.1f" .Result.EstimatedTime}} hours</div>
        <div><strong>Confidence:</strong> {{printf "%.2f" .Result.Confidence}}</div>
      </div>
      <h3>Issue Reported</h3>
      <p>{{or .Result.Issue "No issue extracted."}}</p>
      {{- if .Note}}
      <div style="background-color: #f0fff4; padding: 15px; border: 1px solid #c6f6d5; border-radius: 4px;">
        <h4 style="margin-top: 0; color: #2f855a;">Admin Note</h4>
        <p style="margin-bottom: 0;">{{.Note}}</p>
      </div>
      {{- end}}
      <h3>Full Summary</h3>
      <p>{{or .Result.Summary "No summary available."}}</p>
      {{- if .Result.ActionItems}}
      <h3>Action Items</h3>
      <ul>{{range .Result.ActionItems}}<li>{{.}}</li>{{end}}</ul>
      {{- end}}
      <p style="margin-top: 20px; text-align: center; font-size: 12px; color: #777;">Triage Notification System</p>
    </div>
  </div>
</body>
</html>`))

type alertView struct {
	Alert
	Title      string
	Color      string
	Background string
}

// Render builds the subject line and HTML body for alert.
func Render(alert Alert) (subject, body string, err error) {
	view := alertView{Alert: alert, Title: "Ticket Update Notification", Color: "#3182ce", Background: "#ebf8ff"}
	subject = fmt.Sprintf("Ticket Update: %s", alert.TicketKey)
	if alert.Result.Priority == domain.PriorityCritical {
		view.Title = "CRITICAL ISSUE REPORTED"
		view.Color = "#e53e3e"
		view.Background = "#fff5f5"
		subject = fmt.Sprintf("CRITICAL TICKET: %s", alert.TicketKey)
	}

	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("render alert email: %w", err)
	}
	return subject, buf.String(), nil
}
