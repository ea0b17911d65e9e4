package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appwidget "github.com/embedgate/embedgate/internal/application/widgetdomain"
	domain "github.com/embedgate/embedgate/internal/domain/widgetdomain"
	"github.com/embedgate/embedgate/internal/shared/logger"
	"github.com/embedgate/embedgate/internal/shared/utils"
)

type registerDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
}

type domainResponse struct {
	ID         uint   `json:"id"`
	Domain     string `json:"domain"`
	IsActive   bool   `json:"is_active"`
	Status     string `json:"status"`
	IsVerified bool   `json:"is_verified"`
	CreatedAt  string `json:"created_at"`
}

func newDomainResponse(record *domain.Record) domainResponse {
	return domainResponse{
		ID:         record.ID,
		Domain:     record.Name.String(),
		IsActive:   record.IsActive,
		Status:     record.Status.String(),
		IsVerified: record.IsVerified,
		CreatedAt:  record.CreatedAt.Format(time.RFC3339),
	}
}

// DomainHandler manages domain authorization records: self-service
// registration plus the admin lifecycle actions.
type DomainHandler struct {
	registerUC *appwidget.RegisterDomainUseCase
	adminUC    *appwidget.AdminDomainUseCase
	logger     logger.Interface
}

func NewDomainHandler(
	registerUC *appwidget.RegisterDomainUseCase,
	adminUC *appwidget.AdminDomainUseCase,
	log logger.Interface,
) *DomainHandler {
	return &DomainHandler{
		registerUC: registerUC,
		adminUC:    adminUC,
		logger:     log.Named("domain.handler"),
	}
}

// Register handles POST /api/domains.
func (h *DomainHandler) Register(c *gin.Context) {
	var req registerDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	userID, _ := c.Get("user_id")
	uid, _ := userID.(uint)

	record, err := h.registerUC.Execute(c.Request.Context(), uid, req.Domain)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, newDomainResponse(record), "domain registered")
}

// Activate handles POST /api/admin/domains/:id/activate.
func (h *DomainHandler) Activate(c *gin.Context) {
	h.mutate(c, h.adminUC.Activate)
}

// Deactivate handles POST /api/admin/domains/:id/deactivate.
func (h *DomainHandler) Deactivate(c *gin.Context) {
	h.mutate(c, h.adminUC.Deactivate)
}

// Verify handles POST /api/admin/domains/:id/verify.
func (h *DomainHandler) Verify(c *gin.Context) {
	h.mutate(c, h.adminUC.Verify)
}

func (h *DomainHandler) mutate(c *gin.Context, action func(ctx context.Context, id uint) (*domain.Record, error)) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid domain id")
		return
	}

	record, err := action(c.Request.Context(), uint(id))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.OKResponse(c, newDomainResponse(record))
}
