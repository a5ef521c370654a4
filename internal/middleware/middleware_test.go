package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/popspot-calendar/internal/source"
)

type headerResolver struct {
	seen []string
}

func (r *headerResolver) Resolve(_ context.Context, authorization string) source.Viewer {
	r.seen = append(r.seen, authorization)
	return source.StaticViewer{UserID: "user-1", Liked: []string{"a"}}
}

func TestViewerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := &headerResolver{}
	router := gin.New()
	router.Use(Viewer(resolver))
	var got source.Viewer
	router.GET("/", func(c *gin.Context) {
		got = ViewerFromContext(c)
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, got.IsAuthenticated())
	assert.Empty(t, resolver.seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, got.IsAuthenticated())
	assert.Equal(t, []string{"Bearer abc"}, resolver.seen)
}

func TestViewerFromContextWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, source.Anonymous(), ViewerFromContext(c))
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithResponseMeta())
	var meta map[string]interface{}
	router.GET("/", func(c *gin.Context) {
		SetDegraded(c, true)
		SetMeta(c, "query", "year=2026")
		meta = ExtractMeta(c)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, true, meta["degraded"])
	assert.Equal(t, "year=2026", meta["query"])
	assert.Contains(t, meta, "processing_time_ms")
}
