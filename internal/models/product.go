package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxPhotoBytes is the largest photo accepted on create or update.
const MaxPhotoBytes = 1000000

// Photo is stored inline on the product document.
type Photo struct {
	Data        []byte `bson:"data,omitempty" json:"-"`
	ContentType string `bson:"contentType" json:"contentType"`
}

// Product references its category by id only; the category may be deleted
// underneath it.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Photo       *Photo             `bson:"photo,omitempty" json:"-"`
	Shipping    bool               `bson:"shipping" json:"shipping"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductView is the photo-less product shape returned by every read. The
// category is expanded when it still exists and null otherwise.
type ProductView struct {
	ID          primitive.ObjectID `json:"_id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Quantity    int                `json:"quantity"`
	Shipping    bool               `json:"shipping"`
	HasPhoto    bool               `json:"hasPhoto"`
	CategoryID  primitive.ObjectID `json:"categoryId"`
	Category    *Category          `json:"category"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func NewProductView(p *Product, category *Category) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Shipping:    p.Shipping,
		HasPhoto:    p.Photo != nil && p.Photo.ContentType != "",
		CategoryID:  p.Category,
		Category:    category,
		CreatedAt:   p.CreatedAt,
	}
}
