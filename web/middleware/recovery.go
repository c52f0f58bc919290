package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/util/common"
)

// Recovery turns a panic into an internal error for ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		_ = c.Error(fmt.Errorf("panic: %v: %w", recovered, common.ErrInternal))
		c.Abort()
	})
}
