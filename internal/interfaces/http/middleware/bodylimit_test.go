package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/assistec/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saleBody builds a sale payload padded through its notes field
func saleBody(n int) string {
	return `{"seller_id":"5b0f3f3e-1c1a-4a43-9a3e-0d6a2a4f9b11","notes":"` + strings.Repeat("x", n) + `"}`
}

func newBodyLimitRouter(limit int64) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	router.POST("/api/v1/sales", func(c *gin.Context) {
		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(payload))
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("accepts a sale within the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(saleBody(10)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		newBodyLimitRouter(1024).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("rejects a declared oversize body with the error envelope", func(t *testing.T) {
		body := saleBody(200)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", "req-oversize-1")
		req.ContentLength = int64(len(body))
		w := httptest.NewRecorder()
		newBodyLimitRouter(100).ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
		assert.Equal(t, "req-oversize-1", resp.Error.RequestID)
		assert.Equal(t, dto.GetHTTPStatus(resp.Error.Code), w.Code)
	})

	t.Run("does not touch bodiless requests", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(10))
		router.GET("/api/v1/sales/1", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sales/1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("caps a streamed body while it is decoded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(saleBody(200)))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = -1
		w := httptest.NewRecorder()
		newBodyLimitRouter(50).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}
