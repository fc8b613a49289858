package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached to the context as a Problem.
// Handlers report failures with c.Error and return.
func ErrorHandler(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeProblem(c, logger, c.Errors.Last().Err)
	}
}

// Recovery turns a panic into an UNKNOWN_ERROR response.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		writeProblem(c, logger, fmt.Errorf("panic: %v", rec))
	})
}

func writeProblem(c *gin.Context, logger logging.Logger, err error) {
	p := FormatError(err)
	p.Path = c.Request.URL.Path
	p.Timestamp = time.Now().UTC().Format(time.RFC3339)

	ctx := c.Request.Context()
	args := []any{"method", c.Request.Method, "path", p.Path, "status", p.StatusCode, "code", p.Code}
	switch {
	case p.StatusCode >= http.StatusInternalServerError:
		logger.Error(ctx, "request failed", append(args, "error", err)...)
	case p.StatusCode >= http.StatusBadRequest:
		logger.Warn(ctx, "request rejected", append(args, "message", p.Message)...)
	}

	c.AbortWithStatusJSON(p.StatusCode, p)
}

// RequestLogger logs method, path, status and latency of every request.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		)
	}
}

// Authenticate parses a bearer token when one is sent and stores its claims
// in the request context. Requests without a token pass through.
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abort(c, NewHTTPError(http.StatusUnauthorized, "Invalid authorization header"))
			return
		}

		claims, err := auth.ParseToken(strings.TrimSpace(token), secret)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = "Token expired"
			}
			abort(c, NewHTTPError(http.StatusUnauthorized, msg))
			return
		}

		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// RequireRole rejects requests whose token lacks role. It is a no-op when
// enforce is false.
func RequireRole(enforce bool, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enforce {
			c.Next()
			return
		}

		claims, ok := auth.ClaimsFromContext(c.Request.Context())
		if !ok {
			abort(c, NewHTTPError(http.StatusUnauthorized, "Authentication required"))
			return
		}
		if !claims.HasRole(role) {
			abort(c, NewHTTPError(http.StatusForbidden, fmt.Sprintf("Role '%s' is required", role)))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
