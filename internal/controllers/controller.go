package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/cache"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
)

// ListingCache holds rendered product listings. Implementations treat
// backend failures as misses. SetAsync fills the slot returned by the Get
// that missed.
type ListingCache interface {
	Get(ctx context.Context, key string, dest any) (cache.Slot, bool)
	SetAsync(slot cache.Slot, value any)
	Invalidate(ctx context.Context)
}

type noCache struct{}

func (noCache) Get(_ context.Context, key string, _ any) (cache.Slot, bool) {
	return cache.Slot{Key: key}, false
}
func (noCache) SetAsync(cache.Slot, any)   {}
func (noCache) Invalidate(context.Context) {}

func orNoCache(c ListingCache) ListingCache {
	if c == nil {
		return noCache{}
	}
	return c
}

// fail records err for ErrorMiddleware. Unexpected errors are logged here
// with the request id.
func fail(c *gin.Context, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.Internal, apperrors.PartialFailure, apperrors.Upstream:
		logger.Error(c, "request failed", err)
	}
	_ = c.Error(err)
}

func badBody(err error) error {
	return apperrors.New(apperrors.Validation, "Invalid request body", err)
}
