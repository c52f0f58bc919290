package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/database/model"
	"github.com/mhsanaei/userhub/util/common"
)

const callerKey = "caller"

// CallerResolver turns a bearer token into the user it was issued for.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*model.User, error)
}

// Authenticate requires a valid bearer token and stores its user for
// GetCaller. Authorization stays with the handlers.
func Authenticate(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			_ = c.Error(common.NewHTTPError(common.ErrUnauthorized, "Not authenticated"))
			c.Abort()
			return
		}
		user, err := resolver.ResolveCaller(c.Request.Context(), tok)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(callerKey, user)
		c.Next()
	}
}

// GetCaller returns the user set by Authenticate, or nil.
func GetCaller(c *gin.Context) *model.User {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

func bearerToken(header string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
