package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/auth"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/repository"
)

const (
	IdentityContextKey = "identity"
	RoleContextKey     = "role"
)

// TokenVerifier resolves a bearer token to an identity.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// AccountLookup loads the stored account behind an identity.
type AccountLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RequireSignIn rejects requests without a valid bearer token and stores the
// caller's identity in the context.
func RequireSignIn(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if auth.StripBearer(header) == "" {
			abortWith(c, apperrors.NewUnauthenticated("Authorization token is required"))
			return
		}

		identity, err := verifier.Verify(header)
		if err != nil {
			abortWith(c, apperrors.NewUnauthenticated("Invalid or expired token"))
			return
		}

		c.Set(IdentityContextKey, *identity)
		c.Next()
	}
}

// RequireAdmin must run after RequireSignIn. It reads the caller's role from
// the store on every request.
func RequireAdmin(accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			abortWith(c, apperrors.NewUnauthenticated("Authorization token is required"))
			return
		}

		user, err := accounts.FindByEmail(c.Request.Context(), identity.Email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortWith(c, apperrors.NewForbidden("UnAuthorized Access"))
				return
			}
			logger.Error(c, "admin check failed", err)
			abortWith(c, apperrors.NewInternal("Error in admin middleware", err))
			return
		}
		if !auth.Allows(user.Role, auth.CapManage) {
			logger.Warn(c, "admin access denied", zap.String("email", identity.Email))
			abortWith(c, apperrors.NewForbidden("UnAuthorized Access"))
			return
		}

		c.Set(RoleContextKey, user.Role)
		c.Next()
	}
}

// GetIdentity returns the identity stored by RequireSignIn.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	if val, ok := c.Get(IdentityContextKey); ok {
		if id, ok := val.(auth.Identity); ok && id.Email != "" {
			return id, true
		}
	}
	return auth.Identity{}, false
}

// GetRole returns the stored role loaded by RequireAdmin. It is empty on
// routes without the admin gate; the token's role claim is never exposed here.
func GetRole(c *gin.Context) string {
	return c.GetString(RoleContextKey)
}

func abortWith(c *gin.Context, err error) {
	code, body := apperrors.Envelope(err)
	c.AbortWithStatusJSON(code, body)
}
