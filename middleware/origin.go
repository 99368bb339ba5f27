package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Origin refuses upgrade requests on wsPath whose Origin header is not
// clientURL. Requests without Origin (non-browser clients) pass. An empty
// clientURL disables the check.
func Origin(wsPath, clientURL string) gin.HandlerFunc {
	allowed := strings.TrimRight(clientURL, "/")
	return func(c *gin.Context) {
		if allowed == "" || c.Request.Method != http.MethodGet || c.Request.URL.Path != wsPath {
			return
		}
		origin := c.GetHeader("Origin")
		if origin != "" && !strings.EqualFold(strings.TrimRight(origin, "/"), allowed) {
			c.AbortWithStatus(http.StatusForbidden)
		}
	}
}
