package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *handler) createUser(c *gin.Context) {
	var in services.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	user, err := h.svc.Users.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *handler) listUsers(c *gin.Context) {
	all, err := withDeleted(c)
	if err != nil {
		fail(c, err)
		return
	}
	users, err := h.svc.Users.FindAll(c.Request.Context(), all)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *handler) getUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	user, err := h.svc.Users.FindOne(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) updateUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var in services.UpdateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	user, err := h.svc.Users.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) removeUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.Users.Remove(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) recoverUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	user, err := h.svc.Users.Recover(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) setUserRoles(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var in services.SetRolesInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	user, err := h.svc.Users.SetRoles(c.Request.Context(), id, in.RoleIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) getUserProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Profiles.GetForUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) updateUserProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Profiles.UpdateForUser(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) removeUserProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.Profiles.RemoveForUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) recoverUserProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Profiles.RecoverForUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) getSecurity(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	sec, err := h.svc.Security.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sec)
}

func (h *handler) updateSecurity(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var in services.UpdateSecurityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	sec, err := h.svc.Security.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sec)
}

func (h *handler) verifyPIN(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var in services.VerifyPINInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.Security.VerifyPIN(c.Request.Context(), id, in.PIN); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}
