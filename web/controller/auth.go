package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/web/entity"
	"github.com/mhsanaei/userhub/web/middleware"
	"github.com/mhsanaei/userhub/web/service"
)

// AuthController serves registration, login and self-service profile routes.
type AuthController struct {
	BaseController
}

func NewAuthController(g *gin.RouterGroup, users *service.UserService) *AuthController {
	a := &AuthController{BaseController{users: users}}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/auth")

	g.POST("/register", middleware.RateLimit(middleware.PerSecond(1)), a.register)
	g.POST("/login", middleware.RateLimit(middleware.PerSecond(1)), a.login)
	g.GET("/me", middleware.RateLimit(middleware.PerSecond(3)), a.authenticate(), a.me)
	g.DELETE("/:user_id", a.authenticate(), a.delete)
	g.PUT("/:user_id", a.authenticate(), a.update)
}

func (a *AuthController) register(c *gin.Context) {
	var in entity.UserCreate
	if err := bindBody(c, &in); err != nil {
		fail(c, err)
		return
	}
	user, err := a.users.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserResponse(user))
}

func (a *AuthController) login(c *gin.Context) {
	var in entity.UserLogin
	if err := bindBody(c, &in); err != nil {
		fail(c, err)
		return
	}
	tok, err := a.users.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewBearerToken(tok))
}

func (a *AuthController) me(c *gin.Context) {
	c.JSON(http.StatusOK, entity.NewUserResponse(a.caller(c)))
}

func (a *AuthController) delete(c *gin.Context) {
	if _, err := service.RequireAdmin(a.caller(c)); err != nil {
		fail(c, err)
		return
	}
	id, err := pathID(c, "user_id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := a.users.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.Msg{Message: "User deleted successfully"})
}

func (a *AuthController) update(c *gin.Context) {
	id, err := pathID(c, "user_id")
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := service.RequireSelfOrUser(a.caller(c), id); err != nil {
		fail(c, err)
		return
	}
	var in entity.UserUpdate
	if err := bindBody(c, &in); err != nil {
		fail(c, err)
		return
	}
	user, err := a.users.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserResponse(user))
}
