package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *handler) createProfile(c *gin.Context) {
	var in services.CreateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Profiles.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handler) listProfiles(c *gin.Context) {
	all, err := withDeleted(c)
	if err != nil {
		fail(c, err)
		return
	}
	list, err := h.svc.Profiles.FindAll(c.Request.Context(), all)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) getProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Profiles.FindOne(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) updateProfile(c *gin.Context) {
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
	p, err := h.svc.Profiles.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) removeProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.Profiles.Remove(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) recoverProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Profiles.Recover(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
