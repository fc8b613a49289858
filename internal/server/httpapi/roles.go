package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *handler) createRole(c *gin.Context) {
	var in services.CreateRoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	role, err := h.svc.Roles.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

func (h *handler) listRoles(c *gin.Context) {
	all, err := withDeleted(c)
	if err != nil {
		fail(c, err)
		return
	}
	roles, err := h.svc.Roles.FindAll(c.Request.Context(), all)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

func (h *handler) getRole(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	role, err := h.svc.Roles.FindOne(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *handler) updateRole(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var in services.RoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	role, err := h.svc.Roles.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *handler) removeRole(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.Roles.Remove(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) recoverRole(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	role, err := h.svc.Roles.Recover(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *handler) setRolePermissions(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var in services.SetPermissionsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	grants, err := h.svc.Roles.SetPermissions(c.Request.Context(), id, in.PermissionIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, grants)
}

func (h *handler) rolePermissions(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	grants, err := h.svc.Roles.Permissions(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, grants)
}

func (h *handler) createPermission(c *gin.Context) {
	var in services.CreatePermissionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Permissions.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handler) listPermissions(c *gin.Context) {
	list, err := h.svc.Permissions.FindAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) getPermission(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Permissions.FindOne(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
