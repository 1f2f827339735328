package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/service"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

// TicketsHandler serves the staff inbox of triaged tickets.
type TicketsHandler struct {
	triage        *service.TriageService
	notifications *service.NotificationService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(triageService *service.TriageService, notifications *service.NotificationService) *TicketsHandler {
	return &TicketsHandler{triage: triageService, notifications: notifications}
}

// List GET /api/v1/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}
	tickets, err := h.triage.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/v1/tickets/:key.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.triage.Get(c.UserContext(), c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// Draft POST /api/v1/tickets/:key/draft.
func (h *TicketsHandler) Draft(c *fiber.Ctx) error {
	key := c.Params("key")
	draft, err := h.triage.Draft(c.UserContext(), key)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DraftResponse{TicketKey: key, Draft: draft}})
}

// Notify POST /api/v1/tickets/:key/notify.
func (h *TicketsHandler) Notify(c *fiber.Ctx) error {
	var req dto.NotifyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	var actor events.Actor
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actor = events.Actor{StaffID: principal.StaffID, Role: principal.Role}
	}
	delivery, err := h.notifications.Notify(c.UserContext(), c.Params("key"), service.NotifyInput{
		Note:      req.Note,
		Recipient: req.Recipient,
	}, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": delivery})
}

func parseTicketFilter(c *fiber.Ctx) (service.TicketListFilter, error) {
	var filter service.TicketListFilter
	for _, part := range splitQuery(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(part)))
	}
	for _, part := range splitQuery(c.Query("priority")) {
		p := domain.ParsePriority(part)
		if !strings.EqualFold(string(p), part) {
			return filter, apperrors.NewValidationError("invalid priority", map[string]any{"priority": part})
		}
		filter.Priorities = append(filter.Priorities, p)
	}
	for _, part := range splitQuery(c.Query("team")) {
		team, ok := domain.ParseTeam(part)
		if !ok {
			return filter, apperrors.NewValidationError("invalid team", map[string]any{"team": part})
		}
		filter.Teams = append(filter.Teams, team)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		filter.SearchTerm = &search
	}
	for key, dst := range map[string]**time.Time{"created_from": &filter.CreatedFrom, "created_to": &filter.CreatedTo} {
		if raw := c.Query(key); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return filter, apperrors.NewValidationError("invalid timestamp", map[string]any{key: raw})
			}
			*dst = &parsed
		}
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := min(parseIntQuery(c, "page_size", 20), 100)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, nil
}

func splitQuery(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}
