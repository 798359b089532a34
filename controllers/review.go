package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/apperrors"
	"go-storefront/middleware"
	"go-storefront/services"
)

// ReviewController handles review requests
type ReviewController struct {
	ratings *services.RatingService
	logger  *slog.Logger
}

// NewReviewController creates a new ReviewController
func NewReviewController(ratings *services.RatingService, logger *slog.Logger) *ReviewController {
	return &ReviewController{ratings: ratings, logger: logger}
}

// PostReview creates or replaces the caller's review of a product.
func (rc *ReviewController) PostReview(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, rc.logger, apperrors.Unauthorized("No token provided!"))
		return
	}

	var input services.PostReviewInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, rc.logger, err)
		return
	}
	input.UserID = claims.UserID

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := rc.ratings.PostReview(ctx, input)
	if err != nil {
		writeError(w, r, rc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Review processed",
		"reviews": res.Reviews,
	})
}

// TotalReviews returns the number of reviews in the store.
func (rc *ReviewController) TotalReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	total, err := rc.ratings.TotalReviews(ctx)
	if err != nil {
		writeError(w, r, rc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"totalReviews": total})
}

// ReviewsByUser returns a user's reviews, newest first.
func (rc *ReviewController) ReviewsByUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	reviews, err := rc.ratings.ReviewsByUser(ctx, mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, rc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
