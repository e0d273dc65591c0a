package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/Abhishek-927/production-online-shop/internal/models"
)

func duplicateKey() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"})
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "jane@example.com"},
			{Key: "role", Value: "buyer"},
		}))

		user, err := NewUserRepository(mt.DB).FindByEmail(ctx(), "jane@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
		assert.Equal(mt, "buyer", user.Role)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.users", mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).FindByEmail(ctx(), "nobody@example.com")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKey())

		err := NewUserRepository(mt.DB).Create(ctx(), &models.User{Email: "jane@example.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("create assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Email: "jane@example.com"}
		require.NoError(mt, NewUserRepository(mt.DB).Create(ctx(), user))
		assert.False(mt, user.ID.IsZero())
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("empty id list skips the query", func(mt *mtest.T) {
		users, err := NewUserRepository(mt.DB).FindByIDs(ctx(), nil)
		require.NoError(mt, err)
		assert.Empty(mt, users)
	})
}

func TestCategoryRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("update missing", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := NewCategoryRepository(mt.DB).Update(ctx(), primitive.NewObjectID(), "Books", "Books")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update returns new document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Novels"},
			{Key: "slug", Value: "Novels"},
		}}})

		cat, err := NewCategoryRepository(mt.DB).Update(ctx(), id, "Novels", "Novels")
		require.NoError(mt, err)
		assert.Equal(mt, "Novels", cat.Slug)
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.categories", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Books"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Games"}},
		))

		cats, err := NewCategoryRepository(mt.DB).FindAll(ctx())
		require.NoError(mt, err)
		assert.Len(mt, cats, 2)
	})
}

func TestProductRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find applies page and excludes photo bytes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.products", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Lamp"}, {Key: "price", Value: 12.5}},
		))

		products, err := NewProductRepository(mt.DB).Find(ctx(), ProductFilter{}, Page{Skip: 6, Limit: 6})
		require.NoError(mt, err)
		require.Len(mt, products, 1)
		assert.Equal(mt, 12.5, products[0].Price)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, int64(6), cmd.Lookup("skip").AsInt64())
		assert.Equal(mt, int64(6), cmd.Lookup("limit").AsInt64())
		assert.Equal(mt, int64(0), cmd.Lookup("projection", "photo.data").AsInt64())
	})

	mt.Run("photo without data is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.products", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}},
		))

		_, err := NewProductRepository(mt.DB).FindPhoto(ctx(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("photo", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.products", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "photo", Value: bson.D{
				{Key: "data", Value: primitive.Binary{Data: []byte{0xff, 0xd8}}},
				{Key: "contentType", Value: "image/jpeg"},
			}}},
		))

		photo, err := NewProductRepository(mt.DB).FindPhoto(ctx(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, "image/jpeg", photo.ContentType)
		assert.Equal(mt, []byte{0xff, 0xd8}, photo.Data)
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: int32(5)}})

		n, err := NewProductRepository(mt.DB).Count(ctx())
		require.NoError(mt, err)
		assert.Equal(mt, int64(5), n)
	})

	mt.Run("update keeps photo when none given", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: bson.D{{Key: "_id", Value: id}}}})

		_, err := NewProductRepository(mt.DB).Update(ctx(), id, ProductUpdate{Name: "Lamp"})
		require.NoError(mt, err)

		set := mt.GetStartedEvent().Command.Lookup("update", "$set").Document()
		_, lookupErr := set.LookupErr("photo")
		assert.Error(mt, lookupErr)
	})
}

func TestBuildProductFilter(t *testing.T) {
	assert.Empty(t, BuildProductFilter(ProductFilter{}))

	lo, hi := 10.0, 20.0
	cat := primitive.NewObjectID()
	exclude := primitive.NewObjectID()
	f := BuildProductFilter(ProductFilter{
		CategoryIDs: []primitive.ObjectID{cat},
		ExcludeID:   &exclude,
		MinPrice:    &lo,
		MaxPrice:    &hi,
		Keyword:     "a.b",
	})

	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{cat}}, f["category"])
	assert.Equal(t, bson.M{"$ne": exclude}, f["_id"])
	assert.Equal(t, bson.M{"$gte": 10.0, "$lte": 20.0}, f["price"])

	or := f["$or"].(bson.A)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"name": primitive.Regex{Pattern: `a\.b`, Options: "i"}}, or[0])
}

func TestBuildProductFilterSingleBound(t *testing.T) {
	lo := 5.0
	f := BuildProductFilter(ProductFilter{MinPrice: &lo})
	assert.Equal(t, bson.M{"$gte": 5.0}, f["price"])
}

func TestOrderRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate order id", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKey())

		err := NewOrderRepository(mt.DB).Create(ctx(), &models.Order{ID: primitive.NewObjectID()})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("update status", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: "Shipped"},
		}}})

		order, err := NewOrderRepository(mt.DB).UpdateStatus(ctx(), id, models.StatusShipped)
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusShipped, order.Status)
	})

	mt.Run("by buyer", func(mt *mtest.T) {
		buyer := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.orders", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "buyer", Value: buyer}},
		))

		orders, err := NewOrderRepository(mt.DB).FindByBuyer(ctx(), buyer)
		require.NoError(mt, err)
		require.Len(mt, orders, 1)
		assert.Equal(mt, buyer, orders[0].Buyer)
	})
}

func TestPaymentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate idempotency key", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKey())

		err := NewPaymentRepository(mt.DB).Create(ctx(), &models.PaymentAttempt{IdempotencyKey: "k1"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("mark unknown attempt", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := NewPaymentRepository(mt.DB).MarkPersisted(ctx(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("record attempt", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		err := NewPaymentRepository(mt.DB).RecordAttempt(ctx(), primitive.NewObjectID(), "gateway timeout")
		require.NoError(mt, err)
	})

	mt.Run("stale attempts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.payments", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "status", Value: "charged"}, {Key: "idempotencyKey", Value: "k1"}},
		))

		attempts, err := NewPaymentRepository(mt.DB).FindStale(ctx(),
			[]models.PaymentStatus{models.PaymentPending, models.PaymentCharged}, time.Now(), 50)
		require.NoError(mt, err)
		require.Len(mt, attempts, 1)
		assert.Equal(mt, models.PaymentCharged, attempts[0].Status)
		assert.Equal(mt, int64(50), mt.GetStartedEvent().Command.Lookup("limit").AsInt64())
	})
}

func ctx() context.Context { return context.Background() }
