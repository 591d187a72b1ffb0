package middleware

import (
	"net/http"
	"strings"
	"time"

	"pedidos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const mensajeErrorInterno = "Error interno del servidor"

// EsAPI reports whether the request targets the JSON API rather than an HTML
// page.
func EsAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// ErrorHandler renders errors attached with c.Error as a generic 500.
// Stack traces and store messages are logged, never sent to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err.Err).
			Msg("unhandled error")

		if c.Writer.Written() {
			return
		}
		abortInterno(c)
	}
}

// Recovery handles panics and converts them into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Interface("panic", r).
					Msg("panic recovered")
				abortInterno(c)
			}
		}()
		c.Next()
	}
}

func abortInterno(c *gin.Context) {
	if EsAPI(c) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(mensajeErrorInterno))
		return
	}
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Titulo":  "Error",
		"Status":  http.StatusInternalServerError,
		"Mensaje": mensajeErrorInterno,
	})
	c.Abort()
}

// Logger logs each request with method, path, status, latency, and request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
