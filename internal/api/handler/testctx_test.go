//go:build !integration && !e2e

package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestContext returns a gin context backed by a response recorder.
func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// jsonRequest attaches a JSON body to the context.
func jsonRequest(t *testing.T, c *gin.Context, method, path string, body any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(data))
	c.Request.Header.Set("Content-Type", "application/json")
}

// newRoutingEngine builds an engine over the default registry with a
// permissive snapshot and no quota gate.
func newRoutingEngine(t *testing.T) *service.RoutingEngine {
	t.Helper()
	logger := zap.NewNop()
	return service.NewRoutingEngine(service.RoutingEngineDeps{
		Registry:  service.NewModelRegistry(),
		Snapshots: service.NewSnapshotStore(nil, 0, logger),
		Logger:    logger,
	})
}
