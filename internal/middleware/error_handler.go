package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"autopecas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// requestLog starts an event carrying the request id and, when the route is
// authenticated, the acting user.
func requestLog(c *gin.Context, ev *zerolog.Event) *zerolog.Event {
	ev = ev.Str("request_id", c.GetString(RequestIDKey))
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, _ := v.(*JWTClaims); claims != nil {
			ev = ev.Str("usuario", claims.Username)
		}
	}
	return ev
}

// ErrorHandler turns errors a handler pushed with c.Error into a 500. Handlers
// answer every expected failure themselves, so anything left here is a bug or
// a storage problem and its cause is only logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		ev := requestLog(c, log.Error()).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Int("erros", len(c.Errors)).
			Err(c.Errors.Last().Err)
		if c.Writer.Written() {
			ev.Msg("erro após resposta enviada")
			return
		}
		ev.Msg("erro não tratado")
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.NewInternal(c.GetString(RequestIDKey)))
	}
}

// Recovery converts a panic into the same 500 body ErrorHandler sends.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestLog(c, log.Error()).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recuperado")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.NewInternal(c.GetString(RequestIDKey)))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. Client errors log at warn and server
// errors at error so an import storm of 409s does not drown real failures.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		}
		requestLog(c, ev).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
