package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/popspot-calendar/internal/middleware"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/source"
	"github.com/noah-isme/popspot-calendar/pkg/response"
)

func viewerFromContext(c *gin.Context) source.Viewer {
	return middleware.ViewerFromContext(c)
}

// queryValues tolerates malformed query strings: whatever parsed is kept.
func queryValues(c *gin.Context) url.Values {
	values, _ := url.ParseQuery(c.Request.URL.RawQuery)
	if values == nil {
		values = url.Values{}
	}
	return values
}

// respondView writes a calendar view. A degraded view is still a 200: the
// failure is reported in meta.degraded next to the empty state.
func respondView(c *gin.Context, data interface{}, degraded bool, pagination *models.Pagination) {
	middleware.SetDegraded(c, degraded)
	meta := middleware.ExtractMeta(c)
	response.JSON(c, http.StatusOK, data, pagination, meta)
}
