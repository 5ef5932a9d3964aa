package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// NoStore marks responses as uncacheable.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

// MethodNotAllowed answers 405 with an Allow header listing the methods
// registered for the requested path. Use it as the engine's NoMethod handler.
func MethodNotAllowed(routes func() gin.RoutesInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var allowed []string
		for _, r := range routes() {
			if matchRoute(r.Path, c.Request.URL.Path) && !slices.Contains(allowed, r.Method) {
				allowed = append(allowed, r.Method)
			}
		}
		slices.Sort(allowed)

		c.Header("Allow", strings.Join(allowed, ", "))
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{
			"error":             "method_not_allowed",
			"error_description": "Method " + c.Request.Method + " is not allowed",
		})
	}
}

// matchRoute compares a gin route pattern with a request path segment by
// segment. ":param" matches any one segment, "*param" the remainder.
func matchRoute(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	rs := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range ps {
		if strings.HasPrefix(seg, "*") {
			return true
		}
		if i >= len(rs) {
			return false
		}
		if !strings.HasPrefix(seg, ":") && seg != rs[i] {
			return false
		}
	}
	return len(ps) == len(rs)
}
