package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"customfields/internal/core/apperror"
	"customfields/pkg/logger"
)

func newEngine(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := gin.New()
	r.Use(Recovery(), Trace(), Logger(log), ErrorHandler(), Actor())
	return r, logs
}

func TestLogger_RecordsRouteIDs(t *testing.T) {
	r, logs := newEngine(t)
	r.GET("/api/v1/owners/:ownerId/values/:fieldId", func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("value", c.Param("fieldId")))
		c.Abort()
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/o-1/values/f-1", nil)
	req.Header.Set(HeaderActorID, "user-9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/v1/owners/:ownerId/values/:fieldId", fields["route"])
	assert.Equal(t, "o-1", fields["owner_id"])
	assert.Equal(t, "f-1", fields["field_id"])
	assert.Equal(t, "user-9", fields["actor_id"])
	assert.Equal(t, apperror.CodeNotFound, fields["error_code"])
}

func TestLogger_HealthAtDebug(t *testing.T) {
	r, logs := newEngine(t)
	r.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestRecovery_RendersInternalError(t *testing.T) {
	r, logs := newEngine(t)
	r.PUT("/api/v1/owners/:ownerId/values", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/owners/o-2/values", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "boom")

	entries := logs.FilterMessage("handler panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "o-2", entries[0].ContextMap()["owner_id"])
}
