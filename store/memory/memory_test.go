package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperrors"
	"go-storefront/models"
)

func TestUsers_UniqueEmail(t *testing.T) {
	users := New().Users()
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{Email: "a@b.com", Password: "hash"}))
	err := users.Create(ctx, &models.User{Email: "a@b.com"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUsers_FindByIDsStripsPassword(t *testing.T) {
	users := New().Users()
	ctx := context.Background()

	u := &models.User{Email: "a@b.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, u))

	found, err := users.FindByIDs(ctx, []primitive.ObjectID{u.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Empty(t, found[0].Password)
}

func TestProducts_ListPagesNewestFirst(t *testing.T) {
	products := New().Products()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, products.Create(ctx, &models.Product{
			Name: name, Category: "dress", Price: float64(10 * (i + 1)), CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page, total, err := products.List(ctx, models.ProductFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Name)
	assert.Equal(t, "b", page[1].Name)

	page, _, err = products.List(ctx, models.ProductFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a", page[0].Name)

	minPrice, maxPrice := 15.0, 25.0
	page, total, err = products.List(ctx, models.ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "b", page[0].Name)
}

func TestProducts_Related(t *testing.T) {
	products := New().Products()
	ctx := context.Background()

	self := &models.Product{Name: "Summer Dress", Category: "dress"}
	require.NoError(t, products.Create(ctx, self))
	require.NoError(t, products.Create(ctx, &models.Product{Name: "winter dress", Category: "coat"}))
	require.NoError(t, products.Create(ctx, &models.Product{Name: "Sandals", Category: "dress"}))
	require.NoError(t, products.Create(ctx, &models.Product{Name: "Hat", Category: "accessories"}))

	related, err := products.Related(ctx, models.RelatedQuery{
		ExcludeID: self.ID, NamePattern: "Summer|Dress", Category: "dress", Limit: 10,
	})
	require.NoError(t, err)

	var names []string
	for _, p := range related {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"winter dress", "Sandals"}, names)
}

func TestReviews_UniquePerProductAndUser(t *testing.T) {
	reviews := New().Reviews()
	ctx := context.Background()
	productID, userID := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, reviews.Create(ctx, &models.Review{ProductID: productID, UserID: userID, Rating: 4}))
	err := reviews.Create(ctx, &models.Review{ProductID: productID, UserID: userID, Rating: 2})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	n, err := reviews.DeleteByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOrders_Aggregates(t *testing.T) {
	orders := New().Orders()
	ctx := context.Background()

	seed := []models.Order{
		{OrderID: "pi_1", Email: "a@b.com", Amount: 10, CreatedAt: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			Products: []models.OrderItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}}},
		{OrderID: "pi_2", Email: "a@b.com", Amount: 20, CreatedAt: time.Date(2024, 12, 9, 0, 0, 0, 0, time.UTC),
			Products: []models.OrderItem{{ProductID: "p1", Quantity: 3}}},
		{OrderID: "pi_3", Email: "c@d.com", Amount: 5.5, CreatedAt: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)},
	}
	for i := range seed {
		require.NoError(t, orders.Create(ctx, &seed[i]))
	}

	err := orders.Create(ctx, &models.Order{OrderID: "pi_1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	total, err := orders.SumAmount(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 30.0, total)

	total, err = orders.SumAmount(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 35.5, total)

	ids, err := orders.DistinctProductIDs(ctx, "a@b.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)

	monthly, err := orders.MonthlyEarnings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.MonthlyEarning{
		{Year: 2024, Month: 12, Total: 20},
		{Year: 2025, Month: 2, Total: 15.5},
	}, monthly)

	list, err := orders.ListByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "pi_1", list[0].OrderID)
}

// Run with -race: readers copy rows while writers mutate them.
func TestConcurrentReadsAndWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	product := &models.Product{Name: "Shirt", Price: 10, CreatedAt: time.Now()}
	require.NoError(t, s.Products().Create(ctx, product))
	review := &models.Review{ProductID: product.ID, UserID: primitive.NewObjectID(), Rating: 1, Comment: "meh"}
	require.NoError(t, s.Reviews().Create(ctx, review))
	order := &models.Order{OrderID: "pi_1", Email: "a@b.com", Status: models.OrderStatusPending, CreatedAt: time.Now()}
	require.NoError(t, s.Orders().Create(ctx, order))
	user := &models.User{Email: "a@b.com", Role: models.RoleUser}
	require.NoError(t, s.Users().Create(ctx, user))

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = s.Reviews().UpdateContent(ctx, review.ID, "better", float64(i%5+1))
			_ = s.Products().SetRating(ctx, product.ID, float64(i%5+1))
			_, _ = s.Orders().UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
			_, _ = s.Users().UpdateRole(ctx, user.ID, models.RoleAdmin)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			reviews, err := s.Reviews().ListByProduct(ctx, product.ID)
			assert.NoError(t, err)
			assert.Len(t, reviews, 1)
			_, _ = s.Reviews().ListByUser(ctx, review.UserID)
			_, _, _ = s.Products().List(ctx, models.ProductFilter{Page: 1, Limit: 10})
			_, _ = s.Orders().List(ctx)
			_, _ = s.Users().List(ctx)
		}
	}()
	wg.Wait()

	reviews, err := s.Reviews().ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "better", reviews[0].Comment)
}
