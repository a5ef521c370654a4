package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func preflight(router *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/calendar/month", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewHonoursAllowedOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(New([]string{"https://popspot.example/", " "}))
	router.GET("/api/v1/calendar/month", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := preflight(router, "https://popspot.example")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://popspot.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = preflight(router, "https://evil.example")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestConfigWithoutOriginsAllowsAll(t *testing.T) {
	cfg := Config(nil)
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.NoError(t, cfg.Validate())
}
