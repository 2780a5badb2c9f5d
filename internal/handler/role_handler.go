package handler

import (
	"vaops/internal/service"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) RegisterRoutes(r Routes) {
	r.Admin.GET("/roles", h.ListRoles)
	r.Admin.GET("/pilots/:id/roles", h.GetPilotRoles)
	r.Admin.POST("/pilots/:id/roles", h.GrantRole)
	r.Admin.DELETE("/pilots/:id/roles/:role", h.RevokeRole)
}

// ListRoles returns the built-in roles
// @Summary      List roles
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=[]model.RoleInfo}
// @Router       /api/admin/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	ok(c, h.roleService.ListRoles())
}

// GetPilotRoles returns the roles held by one pilot
// @Summary      Get pilot roles
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Pilot ID"
// @Success      200 {object} response.Response{data=service.UserRolesResponse}
// @Failure      404 {object} response.Response
// @Router       /api/admin/pilots/{id}/roles [get]
func (h *RoleHandler) GetPilotRoles(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	res, err := h.roleService.UserRoles(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

// GrantRole gives a pilot a role
// @Summary      Grant role
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Pilot ID"
// @Param        request body service.RoleGrantRequest true "Role"
// @Success      200 {object} response.Response{data=service.UserRolesResponse}
// @Failure      400 {object} response.Response
// @Router       /api/admin/pilots/{id}/roles [post]
func (h *RoleHandler) GrantRole(c *gin.Context) {
	adminID, found := currentUser(c)
	if !found {
		return
	}
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req service.RoleGrantRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.roleService.Grant(c.Request.Context(), adminID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

// RevokeRole removes a role from a pilot. The last admin cannot be demoted, nor can admins demote themselves.
// @Summary      Revoke role
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path string true "Pilot ID"
// @Param        role path string true "Role name"
// @Success      200 {object} response.Response{data=service.UserRolesResponse}
// @Failure      403 {object} response.Response
// @Failure      409 {object} response.Response
// @Router       /api/admin/pilots/{id}/roles/{role} [delete]
func (h *RoleHandler) RevokeRole(c *gin.Context) {
	adminID, found := currentUser(c)
	if !found {
		return
	}
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	res, err := h.roleService.Revoke(c.Request.Context(), adminID, id, c.Param("role"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}
