package controller

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/util/common"
	"github.com/mhsanaei/userhub/web/entity"
	"github.com/mhsanaei/userhub/web/middleware"
	"github.com/mhsanaei/userhub/web/service"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// UserController serves the user directory routes. Everything except direct
// creation is admin only.
type UserController struct {
	BaseController
}

func NewUserController(g *gin.RouterGroup, users *service.UserService) *UserController {
	a := &UserController{BaseController{users: users}}
	a.initRouter(g)
	return a
}

func (a *UserController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/users")
	limit := middleware.RateLimit(middleware.PerSecond(3))

	g.POST("/", limit, a.create)
	g.GET("/", limit, a.authenticate(), a.list)
	g.GET("/search", limit, a.authenticate(), a.search)
	g.GET("/sorted", limit, a.authenticate(), a.sorted)
	g.GET("/:user_id", limit, a.authenticate(), a.get)
}

func (a *UserController) requireAdmin(c *gin.Context) bool {
	if _, err := service.RequireAdmin(a.caller(c)); err != nil {
		fail(c, err)
		return false
	}
	return true
}

func (a *UserController) create(c *gin.Context) {
	var in entity.UserCreate
	if err := bindBody(c, &in); err != nil {
		fail(c, err)
		return
	}
	user, err := a.users.CreateDirect(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserResponse(user))
}

func (a *UserController) list(c *gin.Context) {
	if !a.requireAdmin(c) {
		return
	}
	page, err := queryInt(c, "page", 1, 1, math.MaxInt32)
	if err != nil {
		fail(c, err)
		return
	}
	limit, err := queryInt(c, "limit", defaultPageSize, 1, maxPageSize)
	if err != nil {
		fail(c, err)
		return
	}
	users, err := a.users.List(c.Request.Context(), (page-1)*limit, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserResponses(users))
}

func (a *UserController) search(c *gin.Context) {
	if !a.requireAdmin(c) {
		return
	}
	users, err := a.users.Search(c.Request.Context(), c.Query("name"), c.Query("email"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserResponses(users))
}

func (a *UserController) sorted(c *gin.Context) {
	if !a.requireAdmin(c) {
		return
	}
	field, desc, err := service.ParseSort(c.DefaultQuery("sort", "id"))
	if err != nil {
		fail(c, entity.NewValidationError(entity.NewFieldError(entity.LocQuery, "sort",
			common.ClientMessage(err), "value_error")))
		return
	}
	users, err := a.users.Sorted(c.Request.Context(), field, desc)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserResponses(users))
}

func (a *UserController) get(c *gin.Context) {
	if !a.requireAdmin(c) {
		return
	}
	id, err := pathID(c, "user_id")
	if err != nil {
		fail(c, err)
		return
	}
	user, err := a.users.FindById(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserResponse(user))
}
