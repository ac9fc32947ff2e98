package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonos/backend/internal/interfaces/http/dto"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping() error { return p.err }

func TestSystemHandler_Ping(t *testing.T) {
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewSystemHandler(&stubPinger{}).RegisterRoutes(api)

	req := httptest.NewRequest("GET", "/api/v1/system/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewSystemHandler(&stubPinger{}).RegisterRoutes(api)

	req := httptest.NewRequest("GET", "/api/v1/system/info", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, w.Body.String(), "Salon Analytics API")
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		engine := gin.New()
		engine.GET("/health", NewSystemHandler(&stubPinger{}).Health)

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("database unreachable", func(t *testing.T) {
		engine := gin.New()
		engine.GET("/health", NewSystemHandler(&stubPinger{err: errors.New("connection refused")}).Health)

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeUnavailable, resp.Error.Code)
	})
}
