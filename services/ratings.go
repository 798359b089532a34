package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperrors"
	"go-storefront/models"
	"go-storefront/utils"
)

// PostReviewInput is a review submission. UserID is the authenticated caller.
type PostReviewInput struct {
	ProductID string  `json:"productId" validate:"required"`
	UserID    string  `json:"userId" validate:"required"`
	Rating    float64 `json:"rating" validate:"gte=1,lte=5"`
	Comment   string  `json:"comment" validate:"required"`
}

// ReviewResult is the outcome of PostReview: every review of the product
// after the write, and the recomputed rating.
type ReviewResult struct {
	Reviews []models.Review
	Rating  float64
}

// RatingService keeps Product.Rating equal to the mean of the product's
// review ratings. Writes and recomputes for one product are serialized
// within the process; across processes the last write wins.
type RatingService struct {
	products ProductStore
	reviews  ReviewStore
	locks    *keyedMutex
	logger   *slog.Logger
	now      func() time.Time
}

// NewRatingService creates a RatingService.
func NewRatingService(products ProductStore, reviews ReviewStore, logger *slog.Logger) *RatingService {
	return &RatingService{
		products: products,
		reviews:  reviews,
		locks:    newKeyedMutex(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RecomputeRating sets the product's rating to the mean rating of its
// reviews, or 0 when it has none. found is false when the product does not
// exist, in which case nothing is written.
func (s *RatingService) RecomputeRating(ctx context.Context, productID primitive.ObjectID) (rating float64, found bool, err error) {
	unlock := s.locks.Lock(productID.Hex())
	defer unlock()

	rating, found, _, err = s.recompute(ctx, productID)
	return rating, found, err
}

func (s *RatingService) recompute(ctx context.Context, productID primitive.ObjectID) (float64, bool, []models.Review, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if apperrors.IsNotFound(err) {
			return 0, false, nil, nil
		}
		return 0, false, nil, err
	}

	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return 0, false, nil, err
	}
	rating := meanRating(reviews)

	if err := s.products.SetRating(ctx, productID, rating); err != nil {
		if apperrors.IsNotFound(err) {
			// deleted between read and write
			return 0, false, reviews, nil
		}
		return 0, false, nil, err
	}
	return rating, true, reviews, nil
}

func meanRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}

// PostReview creates the caller's review of a product, or overwrites the
// comment and rating of the one they already wrote, then recomputes the
// product rating.
func (s *RatingService) PostReview(ctx context.Context, input PostReviewInput) (*ReviewResult, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	productID, err := parseID(input.ProductID, "product")
	if err != nil {
		return nil, err
	}
	userID, err := parseID(input.UserID, "user")
	if err != nil {
		return nil, err
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(productID.Hex())
	defer unlock()

	outcome, err := s.upsert(ctx, productID, userID, input)
	if err != nil {
		return nil, err
	}
	reviewsProcessed.WithLabelValues(outcome).Inc()

	rating, found, reviews, err := s.recompute(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("product not found")
	}

	s.logger.InfoContext(ctx, "review processed",
		slog.String("product_id", productID.Hex()),
		slog.String("user_id", userID.Hex()),
		slog.String("outcome", outcome),
		slog.Float64("rating", rating),
		slog.Int("review_count", len(reviews)),
	)
	return &ReviewResult{Reviews: reviews, Rating: rating}, nil
}

func (s *RatingService) upsert(ctx context.Context, productID, userID primitive.ObjectID, input PostReviewInput) (string, error) {
	existing, err := s.reviews.FindByProductAndUser(ctx, productID, userID)
	switch {
	case err == nil:
		return "updated", s.reviews.UpdateContent(ctx, existing.ID, input.Comment, input.Rating)
	case !apperrors.IsNotFound(err):
		return "", err
	}

	now := s.now()
	review := &models.Review{
		Comment:   input.Comment,
		Rating:    input.Rating,
		ProductID: productID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.reviews.Create(ctx, review)
	if err == nil {
		return "created", nil
	}
	if !apperrors.IsConflict(err) {
		return "", err
	}

	// Another process inserted the same pair first.
	existing, err = s.reviews.FindByProductAndUser(ctx, productID, userID)
	if err != nil {
		return "", err
	}
	return "updated", s.reviews.UpdateContent(ctx, existing.ID, input.Comment, input.Rating)
}

// ReviewsByUser returns a user's reviews, newest first.
func (s *RatingService) ReviewsByUser(ctx context.Context, userIDHex string) ([]models.Review, error) {
	userID, err := parseID(userIDHex, "user")
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, apperrors.NotFound("No review found")
	}
	return reviews, nil
}

// TotalReviews returns the number of stored reviews.
func (s *RatingService) TotalReviews(ctx context.Context) (int64, error) {
	return s.reviews.Count(ctx)
}
