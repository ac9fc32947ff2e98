package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonos/backend/internal/infrastructure/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-unit-tests-only", 15*time.Minute, "salon-backend")
}

func newAuthTestServer(jwtService *auth.JWTService) *gin.Engine {
	engine := gin.New()
	engine.Use(JWTAuthMiddleware(jwtService))
	engine.GET("/api/v1/analytics/kpis", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"org_id":  GetJWTOrgID(c),
			"user_id": GetJWTUserID(c),
		})
	})
	engine.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	engine := newAuthTestServer(jwtService)

	orgID := uuid.New()
	userID := uuid.New()
	token, _, err := jwtService.GenerateToken(auth.TokenInput{OrgID: orgID, UserID: userID})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/analytics/kpis", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), orgID.String())
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	engine := newAuthTestServer(newTestJWTService())

	req := httptest.NewRequest("GET", "/api/v1/analytics/kpis", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	jwtService := newTestJWTService()
	engine := newAuthTestServer(jwtService)

	token, _, err := jwtService.GenerateToken(auth.TokenInput{OrgID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/analytics/kpis", nil)
	req.Header.Set("Authorization", "Token "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := auth.NewJWTService("test-secret-key-for-unit-tests-only", -time.Minute, "salon-backend")
	engine := newAuthTestServer(expired)

	token, _, err := expired.GenerateToken(auth.TokenInput{OrgID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/analytics/kpis", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	engine := newAuthTestServer(newTestJWTService())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
