package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling labels CPU samples taken while serving a request with its route
// and, when known, the caller's branch. Place it after Authenticate.
func Profiling(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || hasAnyPrefix(route, skipPrefixes) {
			c.Next()
			return
		}

		labels := []string{
			"method", c.Request.Method,
			"route", route,
			"resource", resourceOf(route),
		}
		if branchID, ok := GetBranchID(c); ok {
			labels = append(labels, "branch_id", branchID.String())
		}

		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceOf returns the first path segment after /api/vN, e.g. "sales" for
// /api/v1/sales/:id/cancel
func resourceOf(route string) string {
	rest := strings.TrimPrefix(route, "/")
	if after, ok := strings.CutPrefix(rest, "api/"); ok {
		rest = after
		if _, tail, found := strings.Cut(rest, "/"); found && strings.HasPrefix(rest, "v") {
			rest = tail
		}
	}
	resource, _, _ := strings.Cut(rest, "/")
	return resource
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
