package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/logger"
	"github.com/mhsanaei/userhub/util/common"
	"github.com/mhsanaei/userhub/web/entity"
)

// ErrorHandler renders the last error recorded with c.Error once the chain
// has run and nothing was written yet. In development 500 bodies carry the
// error text.
func ErrorHandler(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		WriteError(c, last.Err, development)
	}
}

// WriteError writes err in the body shape matching its kind.
func WriteError(c *gin.Context, err error, development bool) {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, entity.ValidationErrorMsg{
			Errors:  true,
			Message: "Validation Error",
			Details: verr.Details,
		})
		return
	}

	var rlerr *RateLimitError
	if errors.As(err, &rlerr) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, rlerr.Msg())
		return
	}

	status := common.StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		body := entity.InternalErrorMsg{Error: true, Message: "Internal Server Error"}
		if development {
			body.Detail = err.Error()
		}
		c.AbortWithStatusJSON(status, body)
		return
	}

	msg := common.ClientMessage(err)
	if msg == "" {
		msg = http.StatusText(status)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, entity.ErrorMsg{
		Error:      true,
		Message:    msg,
		StatusCode: status,
	})
}
