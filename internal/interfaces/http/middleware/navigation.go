package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// NoStore disables caching on the response. Every sync endpoint response
// must carry these directives.
func NoStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")
}

// NavigationGate rejects non-navigational requests to the sync endpoints.
// Browser speculative prefetch/prerender would otherwise silently spend
// one-shot tokens before the user actually navigates.
type NavigationGate struct{}

// NewNavigationGate creates the gate middleware.
func NewNavigationGate() *NavigationGate {
	return &NavigationGate{}
}

// Handler aborts anything that is not a plain top-level GET navigation,
// with caching disabled and no state touched.
func (g *NavigationGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		fetchMode := strings.ToLower(c.GetHeader("Sec-Fetch-Mode"))
		if c.Request.Method != http.MethodGet || (fetchMode != "" && fetchMode != "navigate") {
			NoStore(c)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
