package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appuser "github.com/embedgate/embedgate/internal/application/user"
	"github.com/embedgate/embedgate/internal/shared/logger"
	"github.com/embedgate/embedgate/internal/shared/utils"
)

// UserHandler exposes the admin suspension actions. Suspension repairs
// both the flag and the status in a single write so the account never
// straddles the invariant.
type UserHandler struct {
	suspendUC *appuser.SuspendUserUseCase
	logger    logger.Interface
}

func NewUserHandler(suspendUC *appuser.SuspendUserUseCase, log logger.Interface) *UserHandler {
	return &UserHandler{
		suspendUC: suspendUC,
		logger:    log.Named("user.handler"),
	}
}

// Suspend handles POST /api/admin/users/:id/suspend.
func (h *UserHandler) Suspend(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.suspendUC.Suspend(c.Request.Context(), uint(id)); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.OKResponse(c, gin.H{"user_id": uint(id), "suspended": true})
}

// Unsuspend handles POST /api/admin/users/:id/unsuspend.
func (h *UserHandler) Unsuspend(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.suspendUC.Unsuspend(c.Request.Context(), uint(id)); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.OKResponse(c, gin.H{"user_id": uint(id), "suspended": false})
}
