package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/database"
	"github.com/mhsanaei/userhub/web/cache"
	"github.com/mhsanaei/userhub/web/entity"
)

// NewHealthController mounts the liveness probe.
func NewHealthController(g *gin.RouterGroup) {
	g.GET("/healthz", health)
}

func health(c *gin.Context) {
	if err := database.Ping(); err != nil {
		fail(c, err)
		return
	}
	if err := cache.Ping(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.HealthMsg{Status: "ok"})
}
