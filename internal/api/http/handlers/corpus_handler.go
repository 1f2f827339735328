package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/corpus"
	"github.com/spec-kit/triage-service/internal/service"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

// CorpusHandler exposes the historical corpus to staff.
type CorpusHandler struct {
	triage   *service.TriageService
	reloader *corpus.Reloader
}

// NewCorpusHandler constructs handler.
func NewCorpusHandler(triageService *service.TriageService, reloader *corpus.Reloader) *CorpusHandler {
	return &CorpusHandler{triage: triageService, reloader: reloader}
}

// Stats GET /api/v1/corpus.
func (h *CorpusHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.triage.CorpusStats()})
}

// Reload POST /api/v1/corpus/reload.
func (h *CorpusHandler) Reload(c *fiber.Ctx) error {
	if h.reloader == nil {
		return apperrors.NewServiceUnavailable("CORPUS_UNAVAILABLE", "no corpus source configured", nil)
	}
	stats, err := h.reloader.Reload(c.UserContext())
	if err != nil {
		return apperrors.NewServiceUnavailable("CORPUS_RELOAD_FAILED", "corpus reload failed; previous corpus kept", err)
	}
	return c.JSON(fiber.Map{"data": stats})
}
