package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Rating is derived from the product's reviews
// and is never written by clients.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	OldPrice    float64            `bson:"oldPrice,omitempty" json:"oldPrice,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	Rating      float64            `bson:"rating" json:"rating"`
	Author      primitive.ObjectID `bson:"author" json:"author"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ProductView is a product with its author resolved.
type ProductView struct {
	Product
	Author *UserSummary `json:"author,omitempty"`
}

// ProductUpdate carries the client-writable product fields. Nil fields are
// left untouched.
type ProductUpdate struct {
	Name        *string  `bson:"name,omitempty"`
	Category    *string  `bson:"category,omitempty"`
	Description *string  `bson:"description,omitempty"`
	OldPrice    *float64 `bson:"oldPrice,omitempty"`
	Price       *float64 `bson:"price,omitempty"`
	Image       *string  `bson:"image,omitempty"`
	Color       *string  `bson:"color,omitempty"`
}

// ProductFilter selects a page of products.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

// Skip returns the number of documents before the requested page.
func (f ProductFilter) Skip() int64 {
	if f.Page < 1 {
		return 0
	}
	return int64((f.Page - 1) * f.Limit)
}

// RelatedQuery selects products that share name tokens or a category with a
// reference product.
type RelatedQuery struct {
	ExcludeID   primitive.ObjectID
	NamePattern string
	Category    string
	Limit       int
}

// Empty reports whether no field is set.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Category == nil && u.Description == nil &&
		u.OldPrice == nil && u.Price == nil && u.Image == nil && u.Color == nil
}
