package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inventory-server/config"
)

var (
	AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	AllowedHeaders = []string{"Content-Type", "Authorization"}
)

// CORS admits requests without an Origin header and requests whose Origin is
// in the configured set. Any other cross-origin request is aborted with 403
// before routing and gets no CORS headers, so browsers block the response.
// Allowed preflights are answered here and never reach a route handler.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowed := cfg.OriginSet()
	gate := cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			_, ok := allowed[origin]
			return ok
		},
		AllowMethods:     AllowedMethods,
		AllowHeaders:     AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})
	return func(c *gin.Context) {
		if c.GetHeader("Origin") == "" {
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			return
		}
		gate(c)
	}
}

// Preflight answers OPTIONS requests that carry no Origin header, which the
// CORS middleware lets through, with the same method and header allow-list.
func Preflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Credentials", "true")
	c.Header("Access-Control-Allow-Methods", strings.Join(AllowedMethods, ","))
	c.Header("Access-Control-Allow-Headers", strings.Join(AllowedHeaders, ","))
	c.AbortWithStatus(http.StatusNoContent)
}
