package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/repository"
)

const (
	// ListLimit caps the unpaged product listing.
	ListLimit = 12
	// PageSize is the fixed page size of the paged listing.
	PageSize = 6
	// SimilarLimit caps related-product results.
	SimilarLimit = 3
)

// ProductInput holds the editable product fields as submitted by the form.
type ProductInput struct {
	Name        string   `form:"name" validate:"required"`
	Description string   `form:"description" validate:"required"`
	Price       *float64 `form:"price" validate:"required,gte=0"`
	Quantity    *int     `form:"quantity" validate:"required,gte=0"`
	Category    string   `form:"category" validate:"required,mongodb"`
	Shipping    bool     `form:"shipping"`
}

// FilterInput is the product filter body. Radio is an inclusive [min, max]
// price range.
type FilterInput struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
}

type ProductService struct {
	products   repository.ProductRepo
	categories repository.CategoryRepo
}

func NewProductService(products repository.ProductRepo, categories repository.CategoryRepo) *ProductService {
	return &ProductService{products: products, categories: categories}
}

func (s *ProductService) checkInput(in *ProductInput, photo *models.Photo) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if err := validateInput(in); err != nil {
		return err
	}
	if photo != nil && len(photo.Data) > models.MaxPhotoBytes {
		return apperrors.NewValidation(fmt.Sprintf("photo is required and should be less than %d bytes", models.MaxPhotoBytes))
	}
	return nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput, photo *models.Photo) (*models.ProductView, error) {
	if err := s.checkInput(&in, photo); err != nil {
		return nil, err
	}
	categoryID, _ := primitive.ObjectIDFromHex(in.Category)

	product := &models.Product{
		Name:        in.Name,
		Slug:        Slugify(in.Name),
		Description: in.Description,
		Price:       *in.Price,
		Quantity:    *in.Quantity,
		Shipping:    in.Shipping,
		Category:    categoryID,
	}
	if photo != nil && len(photo.Data) > 0 {
		product.Photo = photo
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.NewInternal("Error in creating product", err)
	}
	logger.Info(ctx, "product created", zap.String("product_id", product.ID.Hex()), zap.String("slug", product.Slug))

	view := s.expandOne(ctx, product)
	return &view, nil
}

// UpdateProduct replaces the editable fields. A nil photo keeps the stored one.
func (s *ProductService) UpdateProduct(ctx context.Context, rawID string, in ProductInput, photo *models.Photo) (*models.ProductView, error) {
	id, err := parseID(rawID, "product")
	if err != nil {
		return nil, err
	}
	if err := s.checkInput(&in, photo); err != nil {
		return nil, err
	}
	if photo != nil && len(photo.Data) == 0 {
		photo = nil
	}
	categoryID, _ := primitive.ObjectIDFromHex(in.Category)

	product, err := s.products.Update(ctx, id, repository.ProductUpdate{
		Name:        in.Name,
		Slug:        Slugify(in.Name),
		Description: in.Description,
		Price:       *in.Price,
		Quantity:    *in.Quantity,
		Shipping:    in.Shipping,
		Category:    categoryID,
		Photo:       photo,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Product not found")
		}
		return nil, apperrors.NewInternal("Error in updating product", err)
	}

	view := s.expandOne(ctx, product)
	return &view, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, "product")
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return apperrors.NewInternal("Error while deleting product", err)
	}
	return nil
}

func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.ProductView, error) {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Product not found")
		}
		return nil, apperrors.NewInternal("Error while getting single product", err)
	}
	view := s.expandOne(ctx, product)
	return &view, nil
}

func (s *ProductService) GetPhoto(ctx context.Context, rawID string) (*models.Photo, error) {
	id, err := parseID(rawID, "product")
	if err != nil {
		return nil, err
	}
	photo, err := s.products.FindPhoto(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Photo not found")
		}
		return nil, apperrors.NewInternal("Error while getting photo", err)
	}
	return photo, nil
}

// ListProducts returns the newest products, capped at ListLimit.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.ProductView, error) {
	return s.find(ctx, repository.ProductFilter{}, repository.Page{Limit: ListLimit}, "Error in getting products")
}

// ListProductsPage returns one page of PageSize products. Pages below 1 are
// treated as 1.
func (s *ProductService) ListProductsPage(ctx context.Context, page int) ([]models.ProductView, error) {
	if page < 1 {
		page = 1
	}
	return s.find(ctx, repository.ProductFilter{}, repository.Page{Skip: int64(page-1) * PageSize, Limit: PageSize}, "error in per page ctrl")
}

// FilterProducts applies the category and price predicates. An empty filter
// returns every product.
func (s *ProductService) FilterProducts(ctx context.Context, in FilterInput) ([]models.ProductView, error) {
	filter := repository.ProductFilter{}
	for _, raw := range in.Checked {
		id, err := parseID(raw, "category")
		if err != nil {
			return nil, err
		}
		filter.CategoryIDs = append(filter.CategoryIDs, id)
	}
	if len(in.Radio) == 2 {
		lo, hi := in.Radio[0], in.Radio[1]
		filter.MinPrice = &lo
		filter.MaxPrice = &hi
	}
	return s.find(ctx, filter, repository.Page{}, "Error while filtering products")
}

func (s *ProductService) SearchProducts(ctx context.Context, keyword string) ([]models.ProductView, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.NewValidation("keyword is required")
	}
	return s.find(ctx, repository.ProductFilter{Keyword: keyword}, repository.Page{}, "Error in search product API")
}

// SimilarProducts returns up to SimilarLimit products of category cid other
// than pid.
func (s *ProductService) SimilarProducts(ctx context.Context, rawPID, rawCID string) ([]models.ProductView, error) {
	pid, err := parseID(rawPID, "product")
	if err != nil {
		return nil, err
	}
	cid, err := parseID(rawCID, "category")
	if err != nil {
		return nil, err
	}
	filter := repository.ProductFilter{CategoryIDs: []primitive.ObjectID{cid}, ExcludeID: &pid}
	return s.find(ctx, filter, repository.Page{Limit: SimilarLimit}, "error while getting related product")
}

// ProductsByCategorySlug lists the products of the category with slug. An
// unknown slug yields a nil category and no products.
func (s *ProductService) ProductsByCategorySlug(ctx context.Context, slug string) (*models.Category, []models.ProductView, error) {
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, []models.ProductView{}, nil
		}
		return nil, nil, apperrors.NewInternal("Error while getting products", err)
	}

	products, err := s.products.Find(ctx, repository.ProductFilter{CategoryIDs: []primitive.ObjectID{category.ID}}, repository.Page{})
	if err != nil {
		return nil, nil, apperrors.NewInternal("Error while getting products", err)
	}
	views := make([]models.ProductView, 0, len(products))
	for i := range products {
		views = append(views, models.NewProductView(&products[i], category))
	}
	return category, views, nil
}

func (s *ProductService) CountProducts(ctx context.Context) (int64, error) {
	n, err := s.products.Count(ctx)
	if err != nil {
		return 0, apperrors.NewInternal("Error in product count", err)
	}
	return n, nil
}

func (s *ProductService) find(ctx context.Context, filter repository.ProductFilter, page repository.Page, msg string) ([]models.ProductView, error) {
	products, err := s.products.Find(ctx, filter, page)
	if err != nil {
		return nil, apperrors.NewInternal(msg, err)
	}
	return s.expand(ctx, products), nil
}

func (s *ProductService) expandOne(ctx context.Context, p *models.Product) models.ProductView {
	return s.expand(ctx, []models.Product{*p})[0]
}

// expand resolves category references with one lookup. Missing categories
// become null; a failed lookup is logged and treated the same way.
func (s *ProductService) expand(ctx context.Context, products []models.Product) []models.ProductView {
	views := make([]models.ProductView, 0, len(products))
	if len(products) == 0 {
		return views
	}

	seen := make(map[primitive.ObjectID]bool)
	ids := make([]primitive.ObjectID, 0)
	for _, p := range products {
		if !p.Category.IsZero() && !seen[p.Category] {
			seen[p.Category] = true
			ids = append(ids, p.Category)
		}
	}

	byID := make(map[primitive.ObjectID]*models.Category, len(ids))
	if len(ids) > 0 {
		categories, err := s.categories.FindByIDs(ctx, ids)
		if err != nil {
			logger.Warn(ctx, "category expansion failed", zap.Error(err))
		}
		for i := range categories {
			byID[categories[i].ID] = &categories[i]
		}
	}

	for i := range products {
		views = append(views, models.NewProductView(&products[i], byID[products[i].Category]))
	}
	return views
}
