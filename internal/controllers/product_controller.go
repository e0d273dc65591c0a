package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/cache"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/services"
)

// ProductServiceAPI defines the catalog operations used by ProductController.
type ProductServiceAPI interface {
	CreateProduct(ctx context.Context, in services.ProductInput, photo *models.Photo) (*models.ProductView, error)
	UpdateProduct(ctx context.Context, rawID string, in services.ProductInput, photo *models.Photo) (*models.ProductView, error)
	DeleteProduct(ctx context.Context, rawID string) error
	GetProductBySlug(ctx context.Context, slug string) (*models.ProductView, error)
	GetPhoto(ctx context.Context, rawID string) (*models.Photo, error)
	ListProducts(ctx context.Context) ([]models.ProductView, error)
	ListProductsPage(ctx context.Context, page int) ([]models.ProductView, error)
	FilterProducts(ctx context.Context, in services.FilterInput) ([]models.ProductView, error)
	SearchProducts(ctx context.Context, keyword string) ([]models.ProductView, error)
	SimilarProducts(ctx context.Context, rawPID, rawCID string) ([]models.ProductView, error)
	ProductsByCategorySlug(ctx context.Context, slug string) (*models.Category, []models.ProductView, error)
	CountProducts(ctx context.Context) (int64, error)
}

type ProductController struct {
	service ProductServiceAPI
	cache   ListingCache
}

func NewProductController(s ProductServiceAPI, cache ListingCache) *ProductController {
	return &ProductController{service: s, cache: orNoCache(cache)}
}

type productListing struct {
	TotalCount int                  `json:"totalCount"`
	Products   []models.ProductView `json:"products"`
}

// readPhoto loads the optional "photo" part. One byte past the limit is read
// so oversized uploads can be rejected.
func readPhoto(c *gin.Context) (*models.Photo, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.New(apperrors.Validation, "Invalid photo upload", err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewInternal("Failed to open photo", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, models.MaxPhotoBytes+1))
	if err != nil {
		return nil, apperrors.NewInternal("Failed to read photo", err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &models.Photo{Data: data, ContentType: contentType}, nil
}

func (ctrl *ProductController) bindForm(c *gin.Context) (services.ProductInput, *models.Photo, error) {
	var in services.ProductInput
	if err := c.ShouldBind(&in); err != nil {
		return in, nil, badBody(err)
	}
	photo, err := readPhoto(c)
	return in, photo, err
}

func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	in, photo, err := ctrl.bindForm(c)
	if err != nil {
		fail(c, err)
		return
	}

	product, err := ctrl.service.CreateProduct(c.Request.Context(), in, photo)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"msg":     "Product Created Successfully",
		"product": product,
	})
}

func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	in, photo, err := ctrl.bindForm(c)
	if err != nil {
		fail(c, err)
		return
	}

	product, err := ctrl.service.UpdateProduct(c.Request.Context(), c.Param("id"), in, photo)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"msg":     "Product Updated Successfully",
		"product": product,
	})
}

func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	if err := ctrl.service.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "Product Deleted successfully"})
}

func (ctrl *ProductController) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()
	key := cache.ListKey("all")

	var listing productListing
	if slot, hit := ctrl.cache.Get(ctx, key, &listing); !hit {
		products, err := ctrl.service.ListProducts(ctx)
		if err != nil {
			fail(c, err)
			return
		}
		listing = productListing{TotalCount: len(products), Products: products}
		ctrl.cache.SetAsync(slot, listing)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"totalCount": listing.TotalCount,
		"msg":        "All product",
		"products":   listing.Products,
	})
}

func (ctrl *ProductController) GetProduct(c *gin.Context) {
	product, err := ctrl.service.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "Single Product Fetched", "product": product})
}

func (ctrl *ProductController) GetPhoto(c *gin.Context) {
	photo, err := ctrl.service.GetPhoto(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	contentType := photo.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, photo.Data)
}

func (ctrl *ProductController) CountProducts(c *gin.Context) {
	ctx := c.Request.Context()
	key := cache.ListKey("count")

	var total int64
	if slot, hit := ctrl.cache.Get(ctx, key, &total); !hit {
		n, err := ctrl.service.CountProducts(ctx)
		if err != nil {
			fail(c, err)
			return
		}
		total = n
		ctrl.cache.SetAsync(slot, total)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": total})
}

func (ctrl *ProductController) ListPage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		page = 1
	}

	ctx := c.Request.Context()
	key := cache.ListKey("page", page)

	var products []models.ProductView
	if slot, hit := ctrl.cache.Get(ctx, key, &products); !hit {
		products, err = ctrl.service.ListProductsPage(ctx, page)
		if err != nil {
			fail(c, err)
			return
		}
		ctrl.cache.SetAsync(slot, products)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (ctrl *ProductController) Search(c *gin.Context) {
	products, err := ctrl.service.SearchProducts(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (ctrl *ProductController) Similar(c *gin.Context) {
	products, err := ctrl.service.SimilarProducts(c.Request.Context(), c.Param("pid"), c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (ctrl *ProductController) ByCategory(c *gin.Context) {
	category, products, err := ctrl.service.ProductsByCategorySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "category": category, "products": products})
}

func (ctrl *ProductController) Filter(c *gin.Context) {
	var in services.FilterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, badBody(err))
		return
	}

	products, err := ctrl.service.FilterProducts(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}
