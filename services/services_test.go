package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"go-storefront/events"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/store/memory"
	"go-storefront/utils"
)

var (
	_ UserStore    = (*store.UserRepository)(nil)
	_ ProductStore = (*store.ProductRepository)(nil)
	_ ReviewStore  = (*store.ReviewRepository)(nil)
	_ OrderStore   = (*store.OrderRepository)(nil)
	_ TxRunner     = (*store.Mongo)(nil)

	_ UserStore    = (*memory.Users)(nil)
	_ ProductStore = (*memory.Products)(nil)
	_ ReviewStore  = (*memory.Reviews)(nil)
	_ OrderStore   = (*memory.Orders)(nil)
	_ TxRunner     = (*memory.Store)(nil)

	_ SessionRevoker = (*store.RevocationList)(nil)
	_ Publisher      = (*events.KafkaPublisher)(nil)
	_ Publisher      = events.NopPublisher{}
	_ OrderMailer    = (*utils.EmailService)(nil)
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mocks ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *events.Event) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendOrderConfirmationEmail(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type mockRevoker struct {
	mock.Mock
}

func (m *mockRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func eventOfType(eventType string) any {
	return mock.MatchedBy(func(e *events.Event) bool { return e.EventType == eventType })
}

// --- Fixtures ---

type fixture struct {
	db       *memory.Store
	users    *memory.Users
	products *memory.Products
	reviews  *memory.Reviews
	orders   *memory.Orders
}

func newFixture() *fixture {
	db := memory.New()
	return &fixture{
		db:       db,
		users:    db.Users(),
		products: db.Products(),
		reviews:  db.Reviews(),
		orders:   db.Orders(),
	}
}

func (f *fixture) addUser(email string) *models.User {
	u := &models.User{Username: email, Email: email, Role: models.RoleUser, CreatedAt: time.Now().UTC()}
	if err := f.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (f *fixture) addProduct(name, category string, price float64) *models.Product {
	p := &models.Product{Name: name, Category: category, Price: price, CreatedAt: time.Now().UTC()}
	if err := f.products.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}
