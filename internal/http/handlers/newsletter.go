package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/http/response"
	"github.com/yungbote/futureofgaming-backend/internal/platform/ctxutil"
	"github.com/yungbote/futureofgaming-backend/internal/platform/httpx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/services"
)

const (
	msgValidEmailRequired = "Valid email required"
	msgSubscribeFailed    = "Subscription failed. Please try again."
	msgSubscribeLimited   = "Too many subscription attempts. Please try again in 24 hours."

	subscribeRetryAfterSeconds = 86400
)

type NewsletterHandler struct {
	log        *logger.Logger
	subscribe  services.SubscribeService
	production bool
}

func NewNewsletterHandler(log *logger.Logger, subscribe services.SubscribeService, production bool) *NewsletterHandler {
	return &NewsletterHandler{log: log.With("handler", "NewsletterHandler"), subscribe: subscribe, production: production}
}

type subscribeRequest struct {
	Email string `json:"email" form:"email"`
}

type subscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// POST /api/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		response.RespondError(c, http.StatusBadRequest, msgValidEmailRequired)
		return
	}

	res, err := h.subscribe.Subscribe(c.Request.Context(), services.SubscribeInput{
		Email:    req.Email,
		ClientIP: httpx.ClientIP(c.Request),
		Session:  ctxutil.GetSession(c.Request.Context()),
	})
	switch {
	case errors.Is(err, newsletter.ErrInvalidEmail), errors.Is(err, newsletter.ErrSpamDetected):
		// Spam verdicts look like any other rejected address.
		response.RespondError(c, http.StatusBadRequest, msgValidEmailRequired)
		return
	case errors.Is(err, newsletter.ErrRateLimited):
		response.AbortRateLimited(c, msgSubscribeLimited, subscribeRetryAfterSeconds)
		return
	case err != nil:
		h.log.Error("Subscription error", "error", err)
		msg := msgSubscribeFailed
		if !h.production {
			msg = err.Error()
		}
		response.RespondError(c, http.StatusInternalServerError, msg)
		return
	}
	response.RespondOK(c, subscribeResponse{Success: true, Message: res.Message})
}
