package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the given origins. Production gets a fixed method and header
// list; development is permissive for local frontends.
func CORS(origins []string, development bool) gin.HandlerFunc {
	c := cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: true,
	}
	if development {
		c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
		c.AllowHeaders = []string{"Authorization", "Content-Type", "X-Requested-With", "Accept", "Origin", RequestIDHeader}
		c.ExposeHeaders = []string{RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}
		c.MaxAge = 10 * time.Minute
	} else {
		c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE"}
		c.AllowHeaders = []string{"Authorization", "Content-Type", "X-Requested-With"}
		c.ExposeHeaders = []string{"X-API-Key", "X-Total-Count"}
		c.MaxAge = 24 * time.Hour
	}
	return cors.New(c)
}
