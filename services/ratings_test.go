package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperrors"
	"go-storefront/models"
)

func newTestRatingService(f *fixture) *RatingService {
	return NewRatingService(f.products, f.reviews, newTestLogger())
}

func productRating(t *testing.T, f *fixture, id primitive.ObjectID) float64 {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Rating
}

func TestPostReview_RatingFollowsMean(t *testing.T) {
	f := newFixture()
	svc := newTestRatingService(f)
	ctx := context.Background()

	p := f.addProduct("P", "dress", 10)
	a, b := f.addUser("a@b.com"), f.addUser("b@b.com")

	res, err := svc.PostReview(ctx, PostReviewInput{ProductID: p.ID.Hex(), UserID: a.ID.Hex(), Rating: 4, Comment: "good"})
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Rating)
	assert.Equal(t, 4.0, productRating(t, f, p.ID))

	_, err = svc.PostReview(ctx, PostReviewInput{ProductID: p.ID.Hex(), UserID: b.ID.Hex(), Rating: 2, Comment: "meh"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, productRating(t, f, p.ID))

	res, err = svc.PostReview(ctx, PostReviewInput{ProductID: p.ID.Hex(), UserID: a.ID.Hex(), Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, 3.5, productRating(t, f, p.ID))
	require.Len(t, res.Reviews, 2)

	mine, err := f.reviews.FindByProductAndUser(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "great", mine.Comment)
	assert.Equal(t, 5.0, mine.Rating)
}

func TestRecomputeRating_NoReviewsIsZero(t *testing.T) {
	f := newFixture()
	svc := newTestRatingService(f)
	p := f.addProduct("P", "dress", 10)
	require.NoError(t, f.products.SetRating(context.Background(), p.ID, 4.2))

	rating, found, err := svc.RecomputeRating(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0.0, rating)
	assert.Equal(t, 0.0, productRating(t, f, p.ID))
}

func TestRecomputeRating_Idempotent(t *testing.T) {
	f := newFixture()
	svc := newTestRatingService(f)
	ctx := context.Background()

	p := f.addProduct("P", "dress", 10)
	for i, r := range []float64{1, 2, 5} {
		require.NoError(t, f.reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: primitive.NewObjectID(), Rating: r, Comment: fmt.Sprint(i)}))
	}

	first, _, err := svc.RecomputeRating(ctx, p.ID)
	require.NoError(t, err)
	second, _, err := svc.RecomputeRating(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.InDelta(t, 8.0/3.0, second, 1e-9)
}

func TestRecomputeRating_MissingProductIsNoop(t *testing.T) {
	f := newFixture()
	svc := newTestRatingService(f)

	rating, found, err := svc.RecomputeRating(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0.0, rating)
}

func TestPostReview_Validation(t *testing.T) {
	f := newFixture()
	svc := newTestRatingService(f)
	p := f.addProduct("P", "dress", 10)
	u := f.addUser("a@b.com")

	cases := map[string]PostReviewInput{
		"rating too low":  {ProductID: p.ID.Hex(), UserID: u.ID.Hex(), Rating: 0, Comment: "x"},
		"rating too high": {ProductID: p.ID.Hex(), UserID: u.ID.Hex(), Rating: 6, Comment: "x"},
		"rating is 5.5":   {ProductID: p.ID.Hex(), UserID: u.ID.Hex(), Rating: 5.5, Comment: "x"},
		"negative rating": {ProductID: p.ID.Hex(), UserID: u.ID.Hex(), Rating: -1, Comment: "x"},
		"no comment":      {ProductID: p.ID.Hex(), UserID: u.ID.Hex(), Rating: 3},
		"no product":      {UserID: u.ID.Hex(), Rating: 3, Comment: "x"},
		"bad product id":  {ProductID: "nope", UserID: u.ID.Hex(), Rating: 3, Comment: "x"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.PostReview(context.Background(), input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	n, err := f.reviews.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostReview_UnknownProduct(t *testing.T) {
	f := newFixture()
	svc := newTestRatingService(f)
	u := f.addUser("a@b.com")

	_, err := svc.PostReview(context.Background(), PostReviewInput{
		ProductID: primitive.NewObjectID().Hex(), UserID: u.ID.Hex(), Rating: 3, Comment: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	n, err := f.reviews.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

// lateReviews hides the first lookup so the insert hits the unique
// constraint, as when another process wrote the same pair concurrently.
type lateReviews struct {
	ReviewStore
	once sync.Once
}

func (l *lateReviews) FindByProductAndUser(ctx context.Context, productID, userID primitive.ObjectID) (*models.Review, error) {
	hidden := false
	l.once.Do(func() { hidden = true })
	if hidden {
		return nil, apperrors.NotFound("review not found")
	}
	return l.ReviewStore.FindByProductAndUser(ctx, productID, userID)
}

func TestPostReview_InsertConflictUpdatesExisting(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct("P", "dress", 10)
	u := f.addUser("a@b.com")
	require.NoError(t, f.reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: u.ID, Rating: 1, Comment: "bad"}))

	svc := NewRatingService(f.products, &lateReviews{ReviewStore: f.reviews}, newTestLogger())
	res, err := svc.PostReview(ctx, PostReviewInput{ProductID: p.ID.Hex(), UserID: u.ID.Hex(), Rating: 5, Comment: "fixed"})
	require.NoError(t, err)

	require.Len(t, res.Reviews, 1)
	assert.Equal(t, 5.0, res.Reviews[0].Rating)
	assert.Equal(t, 5.0, productRating(t, f, p.ID))
}

func TestPostReview_ConcurrentWritersConverge(t *testing.T) {
	f := newFixture()
	svc := newTestRatingService(f)
	p := f.addProduct("P", "dress", 10)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		u := f.addUser(fmt.Sprintf("u%d@b.com", i))
		rating := float64(i%5 + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PostReview(context.Background(), PostReviewInput{
				ProductID: p.ID.Hex(), UserID: u.ID.Hex(), Rating: rating, Comment: "c",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3.0, productRating(t, f, p.ID))
}

func TestReviewsByUser(t *testing.T) {
	f := newFixture()
	svc := newTestRatingService(f)
	ctx := context.Background()
	p := f.addProduct("P", "dress", 10)
	u := f.addUser("a@b.com")

	_, err := svc.ReviewsByUser(ctx, u.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.PostReview(ctx, PostReviewInput{ProductID: p.ID.Hex(), UserID: u.ID.Hex(), Rating: 4, Comment: "ok"})
	require.NoError(t, err)

	reviews, err := svc.ReviewsByUser(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	total, err := svc.TotalReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	assert.Len(t, k.locks, 1)
	unlock()
	assert.Empty(t, k.locks)
}
