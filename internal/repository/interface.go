package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhishek-927/production-online-shop/internal/models"
)

var (
	// ErrNotFound is returned when a lookup or targeted update matches nothing.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error)
}

// ProfileUpdate carries the only mutable account fields.
type ProfileUpdate struct {
	Name    string
	Phone   string
	Address string
}

type CategoryRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id primitive.ObjectID, name, slug string) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductFilter is a conjunction of optional predicates.
type ProductFilter struct {
	CategoryIDs []primitive.ObjectID
	ExcludeID   *primitive.ObjectID
	MinPrice    *float64
	MaxPrice    *float64
	Keyword     string
}

// Page bounds a product query. Zero Limit means no limit.
type Page struct {
	Skip  int64
	Limit int64
}

// ProductUpdate replaces a product's editable fields. A nil Photo keeps the
// stored one.
type ProductUpdate struct {
	Name        string
	Slug        string
	Description string
	Price       float64
	Quantity    int
	Shipping    bool
	Category    primitive.ObjectID
	Photo       *models.Photo
}

type ProductRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	FindPhoto(ctx context.Context, id primitive.ObjectID) (*models.Photo, error)
	Find(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, update ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderRepo interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
}

type PaymentRepo interface {
	Create(ctx context.Context, attempt *models.PaymentAttempt) error
	FindByKey(ctx context.Context, key string) (*models.PaymentAttempt, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PaymentAttempt, error)
	FindStale(ctx context.Context, statuses []models.PaymentStatus, olderThan time.Time, limit int64) ([]models.PaymentAttempt, error)
	MarkCharged(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) error
	MarkPersisted(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error
	RecordAttempt(ctx context.Context, id primitive.ObjectID, reason string) error
}
