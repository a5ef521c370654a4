package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/popspot-calendar/internal/models"
	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONCarriesPaginationAndMeta(t *testing.T) {
	c, rec := newContext()

	JSON(c, http.StatusOK, []string{"ev-1"}, &models.Pagination{Page: 2, PageSize: 10, TotalCount: 11}, map[string]interface{}{"degraded": true})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var body struct {
		Data       []string               `json:"data"`
		Pagination models.Pagination      `json:"pagination"`
		Meta       map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"ev-1"}, body.Data)
	assert.Equal(t, 11, body.Pagination.TotalCount)
	assert.Equal(t, true, body.Meta["degraded"])
}

func TestCreated(t *testing.T) {
	c, rec := newContext()

	Created(c, map[string]string{"token": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"token":"abc"}}`, rec.Body.String())
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, rec := newContext()
	Error(c, fmt.Errorf("month summary: %w", appErrors.ErrSourceUnavailable))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"SOURCE_UNAVAILABLE"`)

	c, rec = newContext()
	Error(c, fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL_ERROR"`)
}
