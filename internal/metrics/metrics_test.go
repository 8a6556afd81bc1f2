package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRepair(t *testing.T) {
	okBefore := testutil.ToFloat64(RepairTransitions.WithLabelValues("open", "ok"))
	rejBefore := testutil.ToFloat64(RepairTransitions.WithLabelValues("open", "rejected"))

	RecordRepair("open", nil)
	RecordRepair("open", errors.New("in progress"))
	RecordRepair("open", nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(RepairTransitions.WithLabelValues("open", "ok")))
	assert.Equal(t, rejBefore+1, testutil.ToFloat64(RepairTransitions.WithLabelValues("open", "rejected")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/machines/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/machines/abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/machines/:id"`)
}
