package handler

import (
	"vaops/internal/middleware"
	"vaops/internal/service"
	"vaops/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	registrationService service.RegistrationService
}

func NewRegistrationHandler(registrationService service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

func (h *RegistrationHandler) RegisterRoutes(r Routes) {
	registrations := r.Admin.Group("/registrations")
	{
		registrations.GET("", h.ListRegistrations)
		registrations.PUT("/:id/approve", h.Approve)
		registrations.PUT("/:id/reject", h.Reject)
	}
}

// ListRegistrations returns registration approvals, optionally filtered by status
// @Summary      List registrations
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved or rejected"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/admin/registrations [get]
func (h *RegistrationHandler) ListRegistrations(c *gin.Context) {
	p := pagination.Parse(c)

	rows, total, err := h.registrationService.List(c.Request.Context(), service.RegistrationFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, p.Wrap(rows, total))
}

// Approve flips the pilot to approved and mails them
// @Summary      Approve registration
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Registration ID"
// @Success      200  {object}  response.Response{data=service.RegistrationResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/admin/registrations/{id}/approve [put]
func (h *RegistrationHandler) Approve(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	result, err := h.registrationService.Approve(c.Request.Context(), id, adminID)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, result)
}

// Reject keeps the pilot unapproved. The reason is optional and included in the mail.
// @Summary      Reject registration
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true   "Registration ID"
// @Param        payload  body      service.ReviewRequest  false  "Reason"
// @Success      200      {object}  response.Response{data=service.RegistrationResponse}
// @Router       /api/admin/registrations/{id}/reject [put]
func (h *RegistrationHandler) Reject(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	var req service.ReviewRequest
	// empty body is fine, the reason is optional
	_ = c.ShouldBindJSON(&req)

	result, err := h.registrationService.Reject(c.Request.Context(), id, adminID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, result)
}
