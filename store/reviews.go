package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/apperrors"
	"go-storefront/models"
)

// ReviewRepository stores product reviews.
type ReviewRepository struct {
	coll *mongo.Collection
}

// NewReviewRepository creates a ReviewRepository over db.
func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{coll: db.Collection(ReviewsCollection)}
}

// FindByProductAndUser returns the review a user left on a product.
func (r *ReviewRepository) FindByProductAndUser(ctx context.Context, productID, userID primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.coll.FindOne(ctx, bson.M{"productId": productID, "userId": userID}).Decode(&review)
	if err != nil {
		return nil, classify("find review", err, "review")
	}
	return &review, nil
}

// Create inserts review and sets its ID. A second review for the same
// (product, user) pair is a conflict.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	res, err := r.coll.InsertOne(ctx, review)
	if err != nil {
		return classify("create review", err, "review")
	}
	review.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpdateContent overwrites comment and rating, keeping identity and
// creation time.
func (r *ReviewRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, comment string, rating float64) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"comment":   comment,
		"rating":    rating,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return classify("update review", err, "review")
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("review not found")
	}
	return nil
}

// ListByProduct returns every review of a product, oldest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	return r.find(ctx, bson.M{"productId": productID}, 1)
}

// ListByUser returns every review written by a user, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	return r.find(ctx, bson.M{"userId": userID}, -1)
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M, order int) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: order}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify("list reviews", err, "review")
	}
	reviews, err := decodeAll[models.Review](ctx, cur)
	if err != nil {
		return nil, classify("decode reviews", err, "review")
	}
	return reviews, nil
}

// DeleteByProduct removes every review of a product and reports how many
// were deleted.
func (r *ReviewRepository) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"productId": productID})
	if err != nil {
		return 0, classify("delete reviews", err, "review")
	}
	return res.DeletedCount, nil
}

// CountByUser returns the number of reviews written by a user.
func (r *ReviewRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, classify("count reviews", err, "review")
	}
	return n, nil
}

// Count returns the number of reviews.
func (r *ReviewRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, classify("count reviews", err, "review")
	}
	return n, nil
}
