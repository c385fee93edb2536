package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"algoritmia_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)

	router := gin.New()
	router.GET("/health", NewHealthController(db).HealthCheck)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got uint
	router := gin.New()
	router.GET("/items/:id", func(ctx *gin.Context) {
		id, ok := idParam(ctx, "id")
		if !ok {
			return
		}
		got = id
		ctx.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 42, got)

	for _, raw := range []string{"abc", "0", "-3"} {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+raw, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}
}
