package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a user's rating and comment for a product. There is at most one
// review per (ProductID, UserID).
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Comment   string             `bson:"comment" json:"comment"`
	Rating    float64            `bson:"rating" json:"rating"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ReviewView is a review with its author resolved.
type ReviewView struct {
	Review
	User *UserSummary `json:"user,omitempty"`
}
