package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/auth"
	"github.com/Abhishek-927/production-online-shop/internal/middleware"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/services"
)

// AuthServiceAPI defines the account operations used by AuthController.
type AuthServiceAPI interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.User, string, error)
	Login(ctx context.Context, in services.LoginInput) (*models.User, string, error)
	UpdateProfile(ctx context.Context, caller auth.Identity, in services.ProfileInput) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type AuthController struct {
	service AuthServiceAPI
}

func NewAuthController(s AuthServiceAPI) *AuthController {
	return &AuthController{service: s}
}

func (ctrl *AuthController) Signup(c *gin.Context) {
	var in services.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, badBody(err))
		return
	}

	user, token, err := ctrl.service.Signup(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"msg":     "signup success",
		"user":    user.Public(),
		"token":   token,
	})
}

func (ctrl *AuthController) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, badBody(err))
		return
	}

	user, token, err := ctrl.service.Login(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"msg":     "login success",
		"token":   token,
		"user":    user.Public(),
	})
}

// Ping answers the signin and admin liveness checks; the gates in front of
// it do the work.
func (ctrl *AuthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		fail(c, apperrors.NewUnauthenticated("Authorization token is required"))
		return
	}

	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, badBody(err))
		return
	}

	user, err := ctrl.service.UpdateProfile(c.Request.Context(), caller, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"msg":         "Profile Updated Successfully",
		"updatedUser": user.Public(),
	})
}

func (ctrl *AuthController) ListUsers(c *gin.Context) {
	users, err := ctrl.service.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"msg":     "All users",
		"users":   users,
	})
}
