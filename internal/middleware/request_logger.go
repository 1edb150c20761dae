package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/modvault/modvault-backend/pkg/logger"
	"github.com/rs/zerolog"
)

// RequestIDHeader echoed back on every response
const RequestIDHeader = "X-Request-ID"

// adminUserHeader same header the admin handlers read the editor from
const adminUserHeader = "X-Admin-User"

// 헬스체크/스크레이프는 로그 생략
var quietRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLogger logs one line per request, tagged with the API surface
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()[:8]
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		route := c.FullPath()
		status := c.Writer.Status()
		if quietRoutes[route] && status < 400 {
			return
		}
		if route == "" {
			route = "unmatched"
		}
		surface := Surface(route)

		reqLog := logger.WithRequestID(requestID)
		event := levelFor(&reqLog, status)
		event.
			Str("surface", surface).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("body_size", c.Writer.Size())
		if surface == "admin" {
			user := c.GetHeader(adminUserHeader)
			if user == "" {
				user = "admin"
			}
			event.Str("admin_user", user)
		}
		if len(c.Errors) > 0 {
			event.Str("errors", c.Errors.String())
		}
		event.Msg("request")
	}
}

func levelFor(l *zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= 500:
		return l.Error()
	case status >= 400:
		return l.Warn()
	default:
		return l.Info()
	}
}
