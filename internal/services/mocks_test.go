package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/payment"
	"github.com/Abhishek-927/production-online-shop/internal/repository"
)

// --- Mock repositories ---

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserRepo) FindAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, update repository.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepo) FindByName(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepo) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	args := m.Called(ctx, ids)
	cats, _ := args.Get(0).([]models.Category)
	return cats, args.Error(1)
}

func (m *MockCategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]models.Category)
	return cats, args.Error(1)
}

func (m *MockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	if args.Error(0) == nil && category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockCategoryRepo) Update(ctx context.Context, id primitive.ObjectID, name, slug string) (*models.Category, error) {
	args := m.Called(ctx, id, name, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockProductRepo) FindPhoto(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Photo), args.Error(1)
}

func (m *MockProductRepo) Find(ctx context.Context, filter repository.ProductFilter, page repository.Page) ([]models.Product, error) {
	args := m.Called(ctx, filter, page)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockProductRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepo) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	if args.Error(0) == nil && product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockProductRepo) Update(ctx context.Context, id primitive.ObjectID, update repository.ProductUpdate) (*models.Product, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepo) FindByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.Order, error) {
	args := m.Called(ctx, buyer)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepo) FindAll(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, attempt *models.PaymentAttempt) error {
	args := m.Called(ctx, attempt)
	if args.Error(0) == nil && attempt.ID.IsZero() {
		attempt.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockPaymentRepo) FindByKey(ctx context.Context, key string) (*models.PaymentAttempt, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentAttempt), args.Error(1)
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PaymentAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentAttempt), args.Error(1)
}

func (m *MockPaymentRepo) FindStale(ctx context.Context, statuses []models.PaymentStatus, olderThan time.Time, limit int64) ([]models.PaymentAttempt, error) {
	args := m.Called(ctx, statuses, olderThan, limit)
	attempts, _ := args.Get(0).([]models.PaymentAttempt)
	return attempts, args.Error(1)
}

func (m *MockPaymentRepo) MarkCharged(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) error {
	return m.Called(ctx, id, result).Error(0)
}

func (m *MockPaymentRepo) MarkPersisted(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPaymentRepo) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *MockPaymentRepo) RecordAttempt(ctx context.Context, id primitive.ObjectID, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

// --- Mock collaborators ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ClientToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) Emit(ctx context.Context, eventType string, data any) {
	m.Called(ctx, eventType, data)
}

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) SendMessage(ctx context.Context, body string) error {
	return m.Called(ctx, body).Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error {
	return m.Called(ctx, metricName, dimensions).Error(0)
}

// mockSNS records the last published message.
type mockSNS struct {
	topic      string
	message    []byte
	attributes map[string]string
	err        error
}

func (m *mockSNS) Publish(ctx context.Context, topicArn string, message []byte, attributes map[string]string) error {
	m.topic = topicArn
	m.message = append([]byte(nil), message...)
	m.attributes = attributes
	return m.err
}
