package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/notify"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/repository"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

// Notification triggers.
const (
	TriggerCritical = "critical"
	TriggerAuto     = "auto"
	TriggerManual   = "manual"
)

// CriticalNote is attached to alerts raised for Critical tickets.
const CriticalNote = "Auto-Trigger: Critical Priority"

// FeatureRequestKeywords mark a conversation as a potential feature request.
var FeatureRequestKeywords = []string{
	"new feature",
	"feature request",
	"add feature",
	"enhancement",
	"suggest a feature",
	"idea for app",
}

// NotificationService emails staff about triaged tickets.
type NotificationService struct {
	tickets    repository.TriagedTicketRepository
	sender     notify.Sender
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	TicketRepo repository.TriagedTicketRepository
	Sender     notify.Sender
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NotifyInput is a manual notification request.
type NotifyInput struct {
	Note      string
	Recipient string
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		tickets:    deps.TicketRepo,
		sender:     deps.Sender,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// AutoTrigger decides whether a freshly triaged ticket warrants an alert and
// which note to attach.
func AutoTrigger(ticket domain.TriagedTicket) (trigger, note string, ok bool) {
	priority := ticket.Analysis.Priority
	if priority == domain.PriorityCritical {
		return TriggerCritical, CriticalNote, true
	}

	var reasons []string
	if priority == domain.PriorityHigh {
		reasons = append(reasons, "High Priority")
	}
	if isFeatureRequest(ticket) {
		reasons = append(reasons, "Potential New Feature Request")
	}
	if len(reasons) == 0 {
		return "", "", false
	}
	return TriggerAuto, "Auto-Notification Trigger: " + strings.Join(reasons, ", "), true
}

func isFeatureRequest(ticket domain.TriagedTicket) bool {
	texts := []string{
		ticket.Analysis.Issue,
		ticket.Analysis.Summary,
		domain.FormatConversation(ticket.Conversation),
	}
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, kw := range FeatureRequestKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// HandleTicketTriaged is an events.EventHandler raising automatic alerts.
func (n *NotificationService) HandleTicketTriaged(ctx context.Context, event events.Event) error {
	if event.Type != events.EventTicketTriaged {
		return nil
	}
	_, err := n.AutoNotify(ctx, event.TicketKey)
	return err
}

// AutoNotify sends an alert for key when the ticket meets an automatic trigger.
// It returns nil delivery when no alert was needed.
func (n *NotificationService) AutoNotify(ctx context.Context, key string) (*notify.Delivery, error) {
	ticket, err := n.tickets.GetByExternalKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load ticket %s: %w", key, err)
	}
	trigger, note, ok := AutoTrigger(*ticket)
	n.logger.Info("auto-notification check",
		zap.String("ticket_key", key),
		zap.String("priority", string(ticket.Analysis.Priority)),
		zap.Bool("triggered", ok))
	if !ok {
		return nil, nil
	}
	delivery, err := n.deliver(ctx, ticket, trigger, notify.Alert{TicketKey: key, Result: ticket.Analysis, Note: note}, events.Actor{})
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// Notify sends a manual alert for a stored ticket.
func (n *NotificationService) Notify(ctx context.Context, key string, input NotifyInput, actor events.Actor) (notify.Delivery, error) {
	ticket, err := n.tickets.GetByExternalKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notify.Delivery{}, apperrors.NewNotFound("ticket", map[string]any{"key": key})
		}
		return notify.Delivery{}, err
	}
	alert := notify.Alert{
		TicketKey: key,
		Result:    ticket.Analysis,
		Note:      strings.TrimSpace(input.Note),
		Recipient: strings.TrimSpace(input.Recipient),
	}
	return n.deliver(ctx, ticket, TriggerManual, alert, actor)
}

func (n *NotificationService) deliver(ctx context.Context, ticket *domain.TriagedTicket, trigger string, alert notify.Alert, actor events.Actor) (notify.Delivery, error) {
	if n.sender == nil {
		return notify.Delivery{}, errors.New("no notification sender configured")
	}
	delivery, err := n.sender.Send(ctx, alert)
	n.metrics.RecordNotification(trigger, err)
	if err != nil {
		n.logger.Error("could not send ticket alert",
			zap.String("ticket_key", ticket.ExternalKey),
			zap.String("trigger", trigger),
			zap.Error(err))
		if errors.Is(err, notify.ErrNoRecipient) {
			return delivery, apperrors.NewValidationError("no recipient given and no default alert recipient configured", nil)
		}
		return delivery, fmt.Errorf("send alert: %w", err)
	}

	if delivery.Delivered && ticket.Status == domain.TicketStatusTriaged {
		ticket.Status = domain.TicketStatusNotified
		if err := n.tickets.Update(ctx, ticket); err != nil {
			return delivery, fmt.Errorf("mark ticket notified: %w", err)
		}
	}

	if n.dispatcher != nil {
		event := events.NewEvent(events.EventTicketNotified, ticket.ExternalKey, events.TicketNotifiedPayload{
			Recipient: delivery.Recipient,
			Note:      alert.Note,
			Trigger:   trigger,
			Delivered: delivery.Delivered,
		})
		event.Actor = actor
		if err := n.dispatcher.Publish(ctx, event); err != nil {
			n.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return delivery, nil
}
