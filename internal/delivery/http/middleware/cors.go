package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS admits the configured origins to the JSON surface with credentials.
// With no origins configured only same-origin requests work.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = origins
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", CSRFTokenHeaderName, RequestIDHeader, "X-Requested-With"}
	config.ExposeHeaders = []string{RequestIDHeader, "Content-Disposition", "Location"}
	config.MaxAge = 24 * time.Hour
	return cors.New(config)
}
