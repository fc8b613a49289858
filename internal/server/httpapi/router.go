package httpapi

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Services are the domain services behind the routes.
type Services struct {
	Users       *services.UserService
	Profiles    *services.ProfileService
	Security    *services.SecurityService
	Roles       *services.RoleService
	Permissions *services.PermissionService
	Auth        *services.AuthService
	Audit       *services.AuditService
	Health      *services.HealthService
}

// Options configure the router.
type Options struct {
	JWTSecret    []byte
	EnforceRoles bool
	Metrics      *Metrics
}

type handler struct {
	svc Services
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

// jsonTagName reports struct fields under their JSON names.
func jsonTagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// NewRouter builds the gin engine serving /v1 and /metrics.
func NewRouter(svc Services, opts Options, logger logging.Logger) *gin.Engine {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	// recovery runs inside the logger and metrics so panics are recorded as 500s
	r.Use(RequestLogger(logger), opts.Metrics.Middleware(), Recovery(logger), ErrorHandler(logger))

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(&HTTPError{Status: http.StatusNotFound, Message: "Not Found", Details: "Wrong route or resource"})
	})
	r.NoMethod(func(c *gin.Context) {
		_ = c.Error(NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
	})

	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	h := &handler{svc: svc}
	v1 := r.Group("/v1", Authenticate(opts.JWTSecret))

	v1.GET("/health", h.health)
	v1.GET("/health/db", h.healthDB)

	v1.POST("/auth/login", h.login)

	users := v1.Group("/users")
	users.POST("", h.createUser)
	users.GET("", h.listUsers)
	users.GET("/:id", h.getUser)
	users.PATCH("/:id", h.updateUser)
	users.DELETE("/:id", h.removeUser)
	users.PATCH("/:id/recover", h.recoverUser)
	users.POST("/:id/roles", h.setUserRoles)
	users.GET("/:id/profile", h.getUserProfile)
	users.PATCH("/:id/profile", h.updateUserProfile)
	users.DELETE("/:id/profile", h.removeUserProfile)
	users.PATCH("/:id/profile/recover", h.recoverUserProfile)
	users.GET("/:id/security", h.getSecurity)
	users.PATCH("/:id/security", h.updateSecurity)
	users.POST("/:id/security/pin/verify", h.verifyPIN)

	profiles := v1.Group("/profiles")
	profiles.POST("", h.createProfile)
	profiles.GET("", h.listProfiles)
	profiles.GET("/:id", h.getProfile)
	profiles.PATCH("/:id", h.updateProfile)
	profiles.DELETE("/:id", h.removeProfile)
	profiles.PATCH("/:id/recover", h.recoverProfile)

	admin := v1.Group("", RequireRole(opts.EnforceRoles, common.RoleAdmin))

	roles := admin.Group("/roles")
	roles.POST("", h.createRole)
	roles.GET("", h.listRoles)
	roles.GET("/:id", h.getRole)
	roles.PATCH("/:id", h.updateRole)
	roles.DELETE("/:id", h.removeRole)
	roles.PATCH("/:id/recover", h.recoverRole)
	roles.PUT("/:id/permissions", h.setRolePermissions)
	roles.GET("/:id/permissions", h.rolePermissions)

	perms := admin.Group("/permissions")
	perms.POST("", h.createPermission)
	perms.GET("", h.listPermissions)
	perms.GET("/:id", h.getPermission)

	admin.GET("/audit", h.listAudit)
	admin.POST("/audit/export", h.exportAudit)

	return r
}

// pathID returns the :id parameter, which must be a UUID.
func pathID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if err := uuid.Validate(id); err != nil {
		return "", common.NewError(common.ErrorBadRequest, "Validation failed (uuid is expected)")
	}
	return id, nil
}

// withDeleted reads the optional withDeleted query flag.
func withDeleted(c *gin.Context) (bool, error) {
	raw := c.Query("withDeleted")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, common.NewError(common.ErrorBadRequest, "Validation failed (boolean string is expected)")
	}
	return v, nil
}

// fail attaches err for ErrorHandler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
