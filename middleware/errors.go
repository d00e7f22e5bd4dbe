package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"safetravels-api/errs"
	"safetravels-api/utils"
)

// ErrorHandler turns the last error recorded with c.Error into the JSON
// envelope. Handlers never write error bodies themselves.
func ErrorHandler(log zerolog.Logger, development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		e := errs.From(c.Errors.Last().Err)
		status := e.Status()

		event := log.Warn()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.Err(e.Err).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg(e.Message)

		if c.Writer.Written() {
			return
		}

		message := e.Message
		if e.Kind == errs.KindInternal && development && e.Err != nil {
			message = e.Err.Error()
		}

		utils.SendError(c, status, message, e.Details)
	}
}

// Recovery converts panics into a 500 envelope.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Interface("panic", recovered).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")

		utils.SendError(c, http.StatusInternalServerError, "Internal Server Error", nil)
		c.Abort()
	})
}

// Fail records err for ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
