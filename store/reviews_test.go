package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"go-storefront/apperrors"
	"go-storefront/models"
)

const reviewsNS = "ecommerce.reviews"

func TestReviewRepository_Create(t *testing.T) {
	mt := newMockT(t)

	mt.Run("inserted", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		review := &models.Review{ProductID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Rating: 4}
		require.NoError(t, repo.Create(context.Background(), review))
		assert.False(t, review.ID.IsZero())
	})

	mt.Run("second review by the same user", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error index: productId_1_userId_1",
		}))

		err := repo.Create(context.Background(), &models.Review{Rating: 4})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestReviewRepository_FindByProductAndUser(t *testing.T) {
	mt := newMockT(t)
	productID, userID := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, reviewsNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "productId", Value: productID},
			{Key: "userId", Value: userID},
			{Key: "rating", Value: 3.0},
			{Key: "comment", Value: "fine"},
		}))

		review, err := repo.FindByProductAndUser(context.Background(), productID, userID)
		require.NoError(t, err)
		assert.Equal(t, 3.0, review.Rating)
		assert.Equal(t, "fine", review.Comment)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, reviewsNS, mtest.FirstBatch))

		_, err := repo.FindByProductAndUser(context.Background(), productID, userID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestReviewRepository_UpdateContent(t *testing.T) {
	mt := newMockT(t)

	mt.Run("updated", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(t, repo.UpdateContent(context.Background(), primitive.NewObjectID(), "better", 5))
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.UpdateContent(context.Background(), primitive.NewObjectID(), "better", 5)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestReviewRepository_ListByProduct(t *testing.T) {
	mt := newMockT(t)

	mt.Run("decodes every review", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		productID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, reviewsNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "productId", Value: productID}, {Key: "rating", Value: 4.0}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "productId", Value: productID}, {Key: "rating", Value: 3.0}},
		))

		reviews, err := repo.ListByProduct(context.Background(), productID)
		require.NoError(t, err)
		require.Len(t, reviews, 2)
		assert.Equal(t, 4.0, reviews[0].Rating)
	})

	mt.Run("empty is not nil", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, reviewsNS, mtest.FirstBatch))

		reviews, err := repo.ListByUser(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.NotNil(t, reviews)
		assert.Empty(t, reviews)
	})
}

func TestReviewRepository_DeleteByProduct(t *testing.T) {
	mt := newMockT(t)

	mt.Run("reports deleted count", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		n, err := repo.DeleteByProduct(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestReviewRepository_CountByUser(t *testing.T) {
	mt := newMockT(t)

	mt.Run("counts", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, reviewsNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(2)}},
		))

		n, err := repo.CountByUser(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}
