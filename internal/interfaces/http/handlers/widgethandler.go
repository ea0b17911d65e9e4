package handlers

import (
	"github.com/gin-gonic/gin"

	appwidget "github.com/embedgate/embedgate/internal/application/widgetdomain"
	"github.com/embedgate/embedgate/internal/shared/logger"
	"github.com/embedgate/embedgate/internal/shared/utils"
)

// WidgetHandler serves the public verification endpoint the embeddable
// widget calls before rendering.
type WidgetHandler struct {
	verifier *appwidget.Verifier
	logger   logger.Interface
}

func NewWidgetHandler(verifier *appwidget.Verifier, log logger.Interface) *WidgetHandler {
	return &WidgetHandler{
		verifier: verifier,
		logger:   log.Named("widget.handler"),
	}
}

// Verify handles GET /api/widget/verify?domain=<host>. The verifier never
// errors; every outcome is a 200 with the result tuple so the widget can
// act on the reason code.
func (h *WidgetHandler) Verify(c *gin.Context) {
	rawDomain := c.Query("domain")
	if rawDomain == "" {
		rawDomain = c.GetHeader("Origin")
	}
	if rawDomain == "" {
		rawDomain = c.GetHeader("Referer")
	}

	result := h.verifier.Verify(c.Request.Context(), rawDomain)
	utils.OKResponse(c, result)
}
