package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Conflict, KindOf(NewConflict("dup")))
	assert.Equal(t, NotFound, KindOf(fmt.Errorf("wrapped: %w", NewNotFound("gone"))))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
}

func TestEnvelope(t *testing.T) {
	t.Run("app error with cause", func(t *testing.T) {
		code, body := Envelope(NewUpstream("payment gateway error", errors.New("card declined")))
		assert.Equal(t, http.StatusBadGateway, code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "payment gateway error", body["msg"])
		assert.Equal(t, "card declined", body["error"])
	})

	t.Run("extra fields", func(t *testing.T) {
		code, body := Envelope(NewPartialFailure("order not saved", nil).With("transactionId", "pi_1"))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "pi_1", body["transactionId"])
	})

	t.Run("plain error", func(t *testing.T) {
		code, body := Envelope(errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "boom", body["error"])
	})
}

func TestErrorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorMiddleware())
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(NewValidation("name is required"))
	})
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "name is required", body["msg"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
