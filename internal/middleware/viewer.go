package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/popspot-calendar/internal/source"
)

// ContextViewerKey is the gin context key storing the resolved viewer.
const ContextViewerKey = "currentViewer"

type viewerResolver interface {
	Resolve(ctx context.Context, authorization string) source.Viewer
}

// Viewer attaches the viewer derived from the Authorization header. It never
// blocks: a missing or invalid token yields the anonymous viewer.
func Viewer(resolver viewerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := source.Anonymous()
		if resolver != nil {
			if header := c.GetHeader("Authorization"); header != "" {
				viewer = resolver.Resolve(c.Request.Context(), header)
			}
		}
		c.Set(ContextViewerKey, viewer)
		c.Next()
	}
}

// ViewerFromContext returns the viewer stored by Viewer, or the anonymous one.
func ViewerFromContext(c *gin.Context) source.Viewer {
	if value, exists := c.Get(ContextViewerKey); exists {
		if viewer, ok := value.(source.Viewer); ok && viewer != nil {
			return viewer
		}
	}
	return source.Anonymous()
}
