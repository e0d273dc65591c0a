package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abhishek-927/production-online-shop/internal/database"
	"github.com/Abhishek-927/production-online-shop/internal/models"
)

// withoutPhoto keeps the photo content type (so views can report hasPhoto)
// and drops the bytes.
var withoutPhoto = bson.M{"photo.data": 0}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{collection: db.Collection(database.ProductsCollection)}
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(withoutPhoto)).Decode(&product)
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(withoutPhoto))
}

func (r *ProductRepository) FindPhoto(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	var product models.Product
	opts := options.FindOne().SetProjection(bson.M{"photo": 1})
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&product); err != nil {
		return nil, translate(err)
	}
	if product.Photo == nil || len(product.Photo.Data) == 0 {
		return nil, ErrNotFound
	}
	return product.Photo, nil
}

func (r *ProductRepository) Find(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, error) {
	opts := options.Find().SetProjection(withoutPhoto).SetSort(newestFirst)
	if page.Skip > 0 {
		opts.SetSkip(page.Skip)
	}
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}
	return r.find(ctx, BuildProductFilter(filter), opts)
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Count returns the collection's estimated document count.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.EstimatedDocumentCount(ctx)
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, product)
	return translate(err)
}

func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, update ProductUpdate) (*models.Product, error) {
	set := bson.M{
		"name":        update.Name,
		"slug":        update.Slug,
		"description": update.Description,
		"price":       update.Price,
		"quantity":    update.Quantity,
		"shipping":    update.Shipping,
		"category":    update.Category,
		"updatedAt":   time.Now().UTC(),
	}
	if update.Photo != nil {
		set["photo"] = update.Photo
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(withoutPhoto)
	var product models.Product
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product); err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// Delete removes the product whether or not it exists.
func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// BuildProductFilter turns f into a MongoDB query. An empty filter matches
// every product.
func BuildProductFilter(f ProductFilter) bson.M {
	filter := bson.M{}
	if len(f.CategoryIDs) > 0 {
		filter["category"] = bson.M{"$in": f.CategoryIDs}
	}
	if f.ExcludeID != nil {
		filter["_id"] = bson.M{"$ne": *f.ExcludeID}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	if f.Keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Keyword), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}
