// Package controller provides the HTTP handlers of the user API.
package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/database/model"
	"github.com/mhsanaei/userhub/web/middleware"
	"github.com/mhsanaei/userhub/web/service"
)

// BaseController carries what every API controller needs: the user
// directory and the authentication middleware built on it.
type BaseController struct {
	users *service.UserService
}

func (a *BaseController) authenticate() gin.HandlerFunc {
	return middleware.Authenticate(a.users)
}

// caller returns the authenticated user of the request.
func (a *BaseController) caller(c *gin.Context) *model.User {
	return middleware.GetCaller(c)
}
