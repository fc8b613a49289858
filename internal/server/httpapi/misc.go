package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *handler) login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.Auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) listAudit(c *gin.Context) {
	filter := models.AuditFilter{ActorID: c.Query("actorId")}
	if filter.ActorID != "" && filter.ActorID != common.SystemActor {
		if err := uuid.Validate(filter.ActorID); err != nil {
			fail(c, common.NewError(common.ErrorBadRequest, "Validation failed (uuid is expected)"))
			return
		}
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, common.NewError(common.ErrorBadRequest, "Validation failed (numeric string is expected)"))
			return
		}
		filter.Limit = n
	}

	entries, err := h.svc.Audit.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *handler) exportAudit(c *gin.Context) {
	res, err := h.svc.Audit.Export(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Ok"})
}

func (h *handler) healthDB(c *gin.Context) {
	if err := h.svc.Health.Ping(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Database is connected"})
}
