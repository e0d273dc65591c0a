package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/services"
)

// CategoryServiceAPI defines the interface for category service operations
type CategoryServiceAPI interface {
	CreateCategory(ctx context.Context, in services.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, rawID string, in services.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, rawID string) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type CategoryController struct {
	service CategoryServiceAPI
	cache   ListingCache
}

// NewCategoryController builds the controller. Renames and deletes retire
// cached product listings, which embed the category.
func NewCategoryController(s CategoryServiceAPI, cache ListingCache) *CategoryController {
	return &CategoryController{service: s, cache: orNoCache(cache)}
}

func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var in services.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, badBody(err))
		return
	}

	category, err := ctrl.service.CreateCategory(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"msg":         "new category created",
		"newCategory": category,
	})
}

func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	var in services.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, badBody(err))
		return
	}

	category, err := ctrl.service.UpdateCategory(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"msg":      "Category Updated Successfully",
		"category": category,
	})
}

func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	categories, err := ctrl.service.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"msg":           "All Categories List",
		"allCategories": categories,
	})
}

func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	category, err := ctrl.service.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"msg":      "Get Single Category Successfully",
		"category": category,
	})
}

func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	if err := ctrl.service.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "deletion done"})
}
