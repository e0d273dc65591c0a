package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/auth"
	"github.com/Abhishek-927/production-online-shop/internal/cache"
	"github.com/Abhishek-927/production-online-shop/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	return r
}

// as stands in for the sign-in gate.
func as(id auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityContextKey, id)
		c.Next()
	}
}

func performJSON(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// recordingCache is an in-memory ListingCache.
type recordingCache struct {
	entries     map[string][]byte
	invalidated int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]byte{}}
}

func (c *recordingCache) Get(_ context.Context, key string, dest any) (cache.Slot, bool) {
	slot := cache.Slot{Key: key}
	raw, ok := c.entries[key]
	if !ok {
		return slot, false
	}
	return slot, json.Unmarshal(raw, dest) == nil
}

func (c *recordingCache) SetAsync(slot cache.Slot, value any) {
	raw, _ := json.Marshal(value)
	c.entries[slot.Key] = raw
}

func (c *recordingCache) Invalidate(context.Context) {
	c.invalidated++
	c.entries = map[string][]byte{}
}
