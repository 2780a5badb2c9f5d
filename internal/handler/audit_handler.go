package handler

import (
	"fmt"

	"vaops/internal/service"
	"vaops/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(r Routes) {
	r.Admin.GET("/audit-logs", h.GetAuditLogs)
}

// GetAuditLogs retrieves paginated audit records with the acting user preloaded
// @Summary      Get audit logs
// @Description  Approvals, assignments, purchases, imports and fleet changes, newest first
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action    query  string false "Filter by action, e.g. APPROVE_PIREP"
// @Param        entity_id query  string false "Filter by the affected entity"
// @Param        user_id   query  string false "Filter by the acting admin"
// @Param        page   query     int    false "Page number (default 1)"
// @Param        limit  query     int    false "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/admin/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.AuditFilter{
		Action:   c.Query("action"),
		EntityID: c.Query("entity_id"),
		Page:     p.Page,
		Limit:    p.Limit,
	}
	if raw := c.Query("user_id"); raw != "" {
		actor, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "Invalid user_id")
			return
		}
		filter.ActorID = &actor
	}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		fail(c, fmt.Errorf("failed to retrieve audit logs: %w", err))
		return
	}

	ok(c, p.Wrap(logs, total))
}
