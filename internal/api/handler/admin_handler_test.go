//go:build !integration && !e2e

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aman3189/soriva-backend-sub009/internal/database"
	"github.com/Aman3189/soriva-backend-sub009/internal/repository"
	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func newAdminHandler(t *testing.T) (*AdminHandler, *service.SnapshotStore, *service.QualityScores) {
	t.Helper()
	logger := zap.NewNop()

	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=ON")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db))

	control := repository.NewControlRepository(db, logger)
	scoreRepo := repository.NewQualityScoreRepository(db, logger)
	snapshots := service.NewSnapshotStore(control, 0, logger)
	scores := service.NewQualityScores(service.NewModelRegistry(), logger)
	return NewAdminHandler(control, scoreRepo, snapshots, scores, logger), snapshots, scores
}

func TestAdminSetModelDisabled(t *testing.T) {
	h, snapshots, _ := newAdminHandler(t)

	c, w := newTestContext(t)
	c.Params = gin.Params{{Key: "id", Value: "gpt-4o"}}
	jsonRequest(t, c, "PUT", "/api/admin/models/gpt-4o/disabled", map[string]any{"disabled": true})
	h.SetModelDisabled(c)

	require.Equal(t, http.StatusOK, w.Code)
	// The snapshot is refreshed immediately, no poll cycle needed.
	assert.False(t, snapshots.Current().IsModelAllowed("gpt-4o"))

	c, w = newTestContext(t)
	c.Params = gin.Params{{Key: "id", Value: "gpt-4o"}}
	jsonRequest(t, c, "PUT", "/api/admin/models/gpt-4o/disabled", map[string]any{"disabled": false})
	h.SetModelDisabled(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, snapshots.Current().IsModelAllowed("gpt-4o"))
}

func TestAdminSetMaintenance(t *testing.T) {
	h, snapshots, _ := newAdminHandler(t)

	c, w := newTestContext(t)
	jsonRequest(t, c, "PUT", "/api/admin/maintenance", map[string]any{"enabled": true})
	h.SetMaintenance(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, snapshots.Current().InMaintenance())
}

func TestAdminSetPressureFloor(t *testing.T) {
	h, snapshots, _ := newAdminHandler(t)

	c, w := newTestContext(t)
	jsonRequest(t, c, "PUT", "/api/admin/pressure-floor", map[string]any{"floor": 0.7})
	h.SetPressureFloor(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.7, snapshots.Current().PressureFloor)

	c, w = newTestContext(t)
	jsonRequest(t, c, "PUT", "/api/admin/pressure-floor", map[string]any{"floor": 1.5})
	h.SetPressureFloor(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminQualityScoreLifecycle(t *testing.T) {
	h, _, scores := newAdminHandler(t)

	c, w := newTestContext(t)
	c.Params = gin.Params{{Key: "id", Value: "gpt-4o"}}
	jsonRequest(t, c, "PUT", "/api/admin/quality-scores/gpt-4o", map[string]any{"score": 0.5})
	h.UpsertQualityScore(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.5, scores.Score("gpt-4o"))

	c, w = newTestContext(t)
	c.Params = gin.Params{{Key: "id", Value: "gpt-4o"}}
	c.Request = httptest.NewRequest("DELETE", "/api/admin/quality-scores/gpt-4o", nil)
	h.DeleteQualityScore(c)

	require.Equal(t, http.StatusOK, w.Code)
	// Removing the override reverts to the baked-in default.
	assert.Equal(t, 0.87, scores.Score("gpt-4o"))
}

func TestAdminQualityScoreRange(t *testing.T) {
	h, _, _ := newAdminHandler(t)

	c, w := newTestContext(t)
	c.Params = gin.Params{{Key: "id", Value: "gpt-4o"}}
	jsonRequest(t, c, "PUT", "/api/admin/quality-scores/gpt-4o", map[string]any{"score": 1.2})
	h.UpsertQualityScore(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminSnapshot(t *testing.T) {
	h, _, _ := newAdminHandler(t)

	c, w := newTestContext(t)
	c.Request = httptest.NewRequest("GET", "/api/admin/control", nil)
	h.Snapshot(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "Maintenance")
}
