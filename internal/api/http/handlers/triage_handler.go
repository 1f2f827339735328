package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/service"
	"github.com/spec-kit/triage-service/internal/triage"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

// TriageHandler serves the public chat and triage endpoints.
type TriageHandler struct {
	triage *service.TriageService
}

// NewTriageHandler constructs handler.
func NewTriageHandler(triageService *service.TriageService) *TriageHandler {
	return &TriageHandler{triage: triageService}
}

// Chat POST /api/v1/chat.
func (h *TriageHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reply, err := h.triage.Reply(c.UserContext(), req.Conversation)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatResponse{Reply: reply}})
}

// Submit POST /api/v1/triage.
func (h *TriageHandler) Submit(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.triage.Submit(c.UserContext(), req.Conversation)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// Analyze POST /api/v1/triage/analyze.
func (h *TriageHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.triage.Analyze(c.UserContext(), triage.Input{
		Conversation:     req.Conversation,
		Issue:            req.Issue,
		Sentiment:        req.Sentiment,
		Summary:          req.Summary,
		ProposedSolution: req.ProposedSolution,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}
