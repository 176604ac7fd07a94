package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/http/response"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/services"
)

const (
	msgInvalidPatentNumber = "Invalid patent number"
	msgPatentNotFound      = "Patent not found"
	msgRegenerateFailed    = "Failed to regenerate scorecard"
	msgRegenerated         = "Scorecard regenerated successfully"
)

type PatentCardHandler struct {
	log   *logger.Logger
	cards services.ScorecardService
}

func NewPatentCardHandler(log *logger.Logger, cards services.ScorecardService) *PatentCardHandler {
	return &PatentCardHandler{log: log.With("handler", "PatentCardHandler"), cards: cards}
}

// GET /api/patent-card/:file where file is {N}.svg or {N}.png
func (h *PatentCardHandler) GetCard(c *gin.Context) {
	number, format, ok := splitCardFile(c.Param("file"))
	if !ok {
		c.String(http.StatusNotFound, "Not found")
		return
	}
	card, err := h.cards.GetOrCreate(c.Request.Context(), number, format)
	switch {
	case errors.Is(err, patent.ErrInvalidNumber):
		c.String(http.StatusBadRequest, msgInvalidPatentNumber)
		return
	case errors.Is(err, patent.ErrNotFound):
		c.String(http.StatusNotFound, msgPatentNotFound)
		return
	case errors.Is(err, services.ErrFormatDisabled):
		c.String(http.StatusNotFound, "Not found")
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Caller went away.
		c.Status(http.StatusServiceUnavailable)
		return
	case err != nil:
		h.log.Error("Scorecard request failed", "patent_number", number, "error", err)
		c.String(http.StatusInternalServerError, "Server error")
		return
	}
	c.Header("Cache-Control", card.CacheControl)
	c.Data(http.StatusOK, card.ContentType, card.Content)
}

type regenerateResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// POST /api/patent-card/:file/regenerate
func (h *PatentCardHandler) Regenerate(c *gin.Context) {
	number := c.Param("file")
	url, err := h.cards.Regenerate(c.Request.Context(), number)
	switch {
	case errors.Is(err, patent.ErrInvalidNumber):
		response.RespondError(c, http.StatusBadRequest, msgInvalidPatentNumber)
		return
	case errors.Is(err, patent.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, msgPatentNotFound)
		return
	case err != nil:
		h.log.Error("Error regenerating scorecard", "patent_number", number, "error", err)
		response.RespondError(c, http.StatusInternalServerError, msgRegenerateFailed)
		return
	}
	h.log.Info("Scorecard regenerated", "patent_number", number, "url", url)
	response.RespondOK(c, regenerateResponse{Success: true, URL: url, Message: msgRegenerated})
}

func splitCardFile(file string) (string, services.ImageFormat, bool) {
	dot := strings.LastIndexByte(file, '.')
	if dot <= 0 {
		return "", "", false
	}
	switch ext := file[dot+1:]; ext {
	case string(services.FormatSVG):
		return file[:dot], services.FormatSVG, true
	case string(services.FormatPNG):
		return file[:dot], services.FormatPNG, true
	}
	return "", "", false
}
