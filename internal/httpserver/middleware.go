package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"printshop-storefront/internal/service/session"
)

type ctxKey string

const sessionCtxKey ctxKey = "sessionID"

// requestLogger writes one access log line per request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := logger.Info()
		if status >= http.StatusInternalServerError {
			evt = logger.Error()
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("error", c.Errors.String())
		}
		evt.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("session_id", sessionIDFrom(c)).
			Msg("request completed")
	}
}

// sessionAuth resolves the bearer token to a session id and stores it on the
// request context.
func sessionAuth(svc sessionService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("missing bearer token"))
			return
		}
		sessionID, err := svc.LookupByToken(c.Request.Context(), token)
		if errors.Is(err, session.ErrInvalidToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid token"))
			return
		}
		if err != nil {
			logger.Error().Err(err).Msg("session lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionCtxKey, sessionID))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

func sessionIDFrom(c *gin.Context) string {
	if v, ok := c.Request.Context().Value(sessionCtxKey).(string); ok {
		return v
	}
	return ""
}
