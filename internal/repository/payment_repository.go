package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abhishek-927/production-online-shop/internal/database"
	"github.com/Abhishek-927/production-online-shop/internal/models"
)

type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{collection: db.Collection(database.PaymentsCollection)}
}

// Create inserts a pending attempt. A second attempt with the same
// idempotency key yields ErrDuplicate.
func (r *PaymentRepository) Create(ctx context.Context, attempt *models.PaymentAttempt) error {
	if attempt.ID.IsZero() {
		attempt.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	attempt.CreatedAt = now
	attempt.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, attempt)
	return translate(err)
}

func (r *PaymentRepository) FindByKey(ctx context.Context, key string) (*models.PaymentAttempt, error) {
	return r.findOne(ctx, bson.M{"idempotencyKey": key})
}

func (r *PaymentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PaymentAttempt, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *PaymentRepository) findOne(ctx context.Context, filter bson.M) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	if err := r.collection.FindOne(ctx, filter).Decode(&attempt); err != nil {
		return nil, translate(err)
	}
	return &attempt, nil
}

// FindStale returns attempts in one of statuses not touched since olderThan,
// oldest first.
func (r *PaymentRepository) FindStale(ctx context.Context, statuses []models.PaymentStatus, olderThan time.Time, limit int64) ([]models.PaymentAttempt, error) {
	filter := bson.M{
		"status":    bson.M{"$in": statuses},
		"updatedAt": bson.M{"$lt": olderThan},
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	attempts := []models.PaymentAttempt{}
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *PaymentRepository) MarkCharged(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) error {
	return r.set(ctx, id, bson.M{
		"status":        models.PaymentCharged,
		"transactionId": result.TransactionID,
		"result":        result,
		"lastError":     "",
	})
}

func (r *PaymentRepository) MarkPersisted(ctx context.Context, id primitive.ObjectID) error {
	return r.set(ctx, id, bson.M{"status": models.PaymentPersisted, "lastError": ""})
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	return r.set(ctx, id, bson.M{"status": models.PaymentFailed, "lastError": reason})
}

// RecordAttempt bumps the attempt counter and stores the latest error without
// changing the status.
func (r *PaymentRepository) RecordAttempt(ctx context.Context, id primitive.ObjectID, reason string) error {
	update := bson.M{
		"$set": bson.M{"lastError": reason, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"attempts": 1},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
